package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/laa-platform/laa-core/laa"
	"github.com/laa-platform/laa-core/laa/metrics"
)

var (
	// ski-rental / adaptive-ski-rental flags
	skiBuyCost      float64  // Cost of buying skis
	skiTrust        float64  // Trust in the prediction
	skiPrediction   float64  // Predicted season length in days
	skiDay          int      // Current 1-indexed day
	skiRandomized   bool     // Use the randomized engine
	adaptiveTrust   float64  // Initial trust of the adaptive engine
	adaptiveRate    float64  // Trust learning rate
	adaptiveHistory []string // Past prediction:actual pairs fed back before deciding

	// caching flags
	cacheSize        int      // Cache capacity
	cachePredictions []string // item=next_access pairs
	cacheContents    []uint   // Initial cache contents, in order
	cacheRequests    []uint   // Items accessed, in order
	cacheInsertIsHit bool     // Report cold inserts as hits

	// trading flags
	tradeBuyPrice   float64 // Reference price
	tradeTrust      float64 // Trust in the prediction
	tradePrediction float64 // Predicted best price
	tradePrice      float64 // Current market price

	// scheduling flags
	schedMachines    int   // Number of identical machines
	schedJobs        []int // True job lengths
	schedPredictions []int // Predicted job lengths

	// search flags
	searchValues     []int // Values to search
	searchPrediction int   // Predicted index of the maximum
)

// decideCmd groups the single-decision subcommands
var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Run one decision of an engine and print the result as YAML",
}

// SkiRentalDecision is the output of `decide ski-rental`.
type SkiRentalDecision struct {
	Engine         string   `yaml:"engine"`
	Day            int      `yaml:"day"`
	Prediction     float64  `yaml:"prediction"`
	Trust          float64  `yaml:"trust"`
	Threshold      float64  `yaml:"threshold"`
	BuyProbability *float64 `yaml:"buy_probability,omitempty"`
	Buy            bool     `yaml:"buy"`
}

// decideSkiRental runs the deterministic or randomized ski-rental engine.
func decideSkiRental(buyCost, prediction, trust float64, day int, randomized bool, rngSeed int64, rec *metrics.Recorder) (*SkiRentalDecision, error) {
	engineName := "ski-rental"
	if randomized {
		engineName = "randomized-ski-rental"
	}
	out := &SkiRentalDecision{Engine: engineName, Day: day, Prediction: prediction, Trust: trust}

	if randomized {
		sampler := laa.NewPartitionedRNG(rngSeed).ForSubsystem(laa.SubsystemSkiRental)
		engine, err := laa.NewRandomizedSkiRental(buyCost, sampler)
		if err != nil {
			rec.RecordError(engineName, err)
			return nil, err
		}
		p := engine.BuyProbability(day, prediction, trust)
		out.BuyProbability = &p
		out.Threshold = engine.Threshold(prediction, trust)
		out.Buy = engine.Decide(day, prediction, trust)
	} else {
		engine, err := laa.NewSkiRental(buyCost)
		if err != nil {
			rec.RecordError(engineName, err)
			return nil, err
		}
		out.Threshold = engine.Threshold(prediction, trust)
		out.Buy = engine.Decide(day, prediction, trust)
	}
	rec.RecordDecision(engineName, buyLabel(out.Buy))
	return out, nil
}

// AdaptiveDecision is the output of `decide adaptive-ski-rental`.
type AdaptiveDecision struct {
	Engine     string    `yaml:"engine"`
	Day        int       `yaml:"day"`
	Prediction float64   `yaml:"prediction"`
	TrustPath  []float64 `yaml:"trust_path"`
	Trust      float64   `yaml:"trust"`
	Threshold  float64   `yaml:"threshold"`
	Buy        bool      `yaml:"buy"`
}

// decideAdaptive replays feedback history, then decides with the learned trust.
func decideAdaptive(buyCost float64, cfg laa.AdaptiveConfig, history []feedbackPair, prediction float64, day int, rec *metrics.Recorder) (*AdaptiveDecision, error) {
	const engineName = "adaptive-ski-rental"
	engine, err := laa.NewAdaptiveSkiRental(buyCost, cfg)
	if err != nil {
		rec.RecordError(engineName, err)
		return nil, err
	}
	path := []float64{engine.Trust()}
	for _, fb := range history {
		engine.Feedback(fb.Prediction, fb.Actual)
		path = append(path, engine.Trust())
	}
	rec.SetTrust(engine.Trust())

	out := &AdaptiveDecision{
		Engine:     engineName,
		Day:        day,
		Prediction: prediction,
		TrustPath:  path,
		Trust:      engine.Trust(),
		Threshold:  engine.Threshold(prediction),
		Buy:        engine.Decide(day, prediction),
	}
	rec.RecordDecision(engineName, buyLabel(out.Buy))
	return out, nil
}

// CacheStep is one access in the output of `decide caching`.
type CacheStep struct {
	Item    laa.ItemID   `yaml:"item"`
	Outcome string       `yaml:"outcome"`
	Hit     bool         `yaml:"hit"`
	Evicted *laa.ItemID  `yaml:"evicted,omitempty"`
	Cache   []laa.ItemID `yaml:"cache"`
}

// CachingRun is the output of `decide caching`.
type CachingRun struct {
	Engine string       `yaml:"engine"`
	Steps  []CacheStep  `yaml:"steps"`
	Hits   int          `yaml:"hits"`
	Misses int          `yaml:"misses"`
	Cache  []laa.ItemID `yaml:"cache"`
}

// runCaching feeds requests through the caching engine starting from initial.
func runCaching(cfg laa.CachingConfig, initial, requests []laa.ItemID, rec *metrics.Recorder) (*CachingRun, error) {
	const engineName = "caching"
	engine, err := laa.NewCaching(cfg)
	if err != nil {
		rec.RecordError(engineName, err)
		return nil, err
	}
	if len(initial) > cfg.Capacity {
		err := fmt.Errorf("initial cache holds %d items but capacity is %d: %w",
			len(initial), cfg.Capacity, laa.ErrInvalidConfiguration)
		rec.RecordError(engineName, err)
		return nil, err
	}

	out := &CachingRun{Engine: engineName, Steps: make([]CacheStep, 0, len(requests))}
	cache := append([]laa.ItemID{}, initial...)
	for _, item := range requests {
		res := engine.Access(item, cache)
		hit, _ := engine.Decide(item, cache)
		step := CacheStep{Item: item, Outcome: res.Outcome.String(), Hit: hit, Cache: res.Cache}
		if res.Outcome == laa.OutcomeEvict {
			evicted := res.Evicted
			step.Evicted = &evicted
		}
		if hit {
			out.Hits++
		} else {
			out.Misses++
		}
		rec.RecordDecision(engineName, step.Outcome)
		out.Steps = append(out.Steps, step)
		cache = res.Cache
	}
	out.Cache = cache
	return out, nil
}

// TradingDecision is the output of `decide trading`.
type TradingDecision struct {
	Engine     string  `yaml:"engine"`
	Price      float64 `yaml:"price"`
	Prediction float64 `yaml:"prediction"`
	Trust      float64 `yaml:"trust"`
	Threshold  float64 `yaml:"threshold"`
	Trade      bool    `yaml:"trade"`
}

func decideTrading(buyPrice, price, prediction, trust float64, rec *metrics.Recorder) (*TradingDecision, error) {
	const engineName = "oneway-trading"
	engine, err := laa.NewOneWayTrading(buyPrice)
	if err != nil {
		rec.RecordError(engineName, err)
		return nil, err
	}
	out := &TradingDecision{
		Engine:     engineName,
		Price:      price,
		Prediction: prediction,
		Trust:      trust,
		Threshold:  engine.Threshold(prediction, trust),
		Trade:      engine.Decide(price, prediction, trust),
	}
	label := "wait"
	if out.Trade {
		label = "trade"
	}
	rec.RecordDecision(engineName, label)
	return out, nil
}

// ScheduleResult is the output of `decide scheduling`.
type ScheduleResult struct {
	Engine      string `yaml:"engine"`
	Assignments []int  `yaml:"assignments"`
	Loads       []int  `yaml:"loads"`
	Makespan    int    `yaml:"makespan"`
}

func runScheduling(machines int, jobs, predictions []int, rec *metrics.Recorder) (*ScheduleResult, error) {
	const engineName = "scheduling"
	engine, err := laa.NewScheduling(machines)
	if err != nil {
		rec.RecordError(engineName, err)
		return nil, err
	}
	assignments, err := engine.Decide(jobs, predictions)
	if err != nil {
		rec.RecordError(engineName, err)
		return nil, err
	}
	loads, err := engine.Loads(jobs, assignments)
	if err != nil {
		rec.RecordError(engineName, err)
		return nil, err
	}
	makespan := 0
	for _, l := range loads {
		makespan = max(makespan, l)
	}
	for range assignments {
		rec.RecordDecision(engineName, "assign")
	}
	return &ScheduleResult{Engine: engineName, Assignments: assignments, Loads: loads, Makespan: makespan}, nil
}

// SearchDecision is the output of `decide search`.
type SearchDecision struct {
	Engine     string `yaml:"engine"`
	Prediction int    `yaml:"prediction"`
	Index      int    `yaml:"index"`
	Value      int    `yaml:"value"`
	Probes     int    `yaml:"probes"`
}

func runSearch(values []int, prediction int, rec *metrics.Recorder) (*SearchDecision, error) {
	const engineName = "search"
	res, err := laa.NewSearch().Find(values, prediction)
	if err != nil {
		rec.RecordError(engineName, err)
		return nil, err
	}
	label := "probed"
	if res.Probes == 1 {
		label = "exact"
	}
	rec.RecordDecision(engineName, label)
	return &SearchDecision{
		Engine:     engineName,
		Prediction: prediction,
		Index:      res.Index,
		Value:      values[res.Index],
		Probes:     res.Probes,
	}, nil
}

func buyLabel(buy bool) string {
	if buy {
		return "buy"
	}
	return "rent"
}

var decideSkiRentalCmd = &cobra.Command{
	Use:   "ski-rental",
	Short: "Decide whether to buy skis on a given day",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		out, err := decideSkiRental(
			floatSetting(flags, "buy-cost", skiBuyCost, bundle.SkiRental.BuyCost),
			skiPrediction,
			floatSetting(flags, "trust", skiTrust, bundle.SkiRental.Trust),
			skiDay,
			boolSetting(flags, "randomized", skiRandomized, bundle.SkiRental.Randomized),
			seed,
			recorder,
		)
		if err != nil {
			return err
		}
		return writeYAML(cmd.OutOrStdout(), out)
	},
}

var decideAdaptiveCmd = &cobra.Command{
	Use:   "adaptive-ski-rental",
	Short: "Replay prediction feedback, then decide with the learned trust",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		history, err := parseFeedbackPairs(adaptiveHistory)
		if err != nil {
			return err
		}
		cfg := bundle.AdaptiveConfig()
		if flags.Changed("initial-trust") {
			cfg.InitialTrust = adaptiveTrust
		}
		if flags.Changed("learning-rate") {
			cfg.LearningRate = adaptiveRate
		}
		out, err := decideAdaptive(
			floatSetting(flags, "buy-cost", skiBuyCost, bundle.Adaptive.BuyCost),
			cfg, history, skiPrediction, skiDay, recorder,
		)
		if err != nil {
			return err
		}
		return writeYAML(cmd.OutOrStdout(), out)
	},
}

var decideCachingCmd = &cobra.Command{
	Use:   "caching",
	Short: "Feed a request sequence through the predictive cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		predictions := bundle.Caching.Predictions
		if flags.Changed("predictions") || predictions == nil {
			parsed, err := parseItemPredictions(cachePredictions)
			if err != nil {
				return err
			}
			predictions = parsed
		}
		cfg := laa.CachingConfig{
			Capacity:         intSetting(flags, "cache-size", cacheSize, bundle.Caching.CacheSize),
			Predictions:      predictions,
			CountInsertAsHit: boolSetting(flags, "count-insert-as-hit", cacheInsertIsHit, bundle.Caching.CountInsertAsHit),
		}
		initial, err := toItemIDs(cacheContents)
		if err != nil {
			return err
		}
		requests, err := toItemIDs(cacheRequests)
		if err != nil {
			return err
		}
		out, err := runCaching(cfg, initial, requests, recorder)
		if err != nil {
			return err
		}
		return writeYAML(cmd.OutOrStdout(), out)
	},
}

var decideTradingCmd = &cobra.Command{
	Use:   "trading",
	Short: "Decide whether to execute a one-way trade at the current price",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		out, err := decideTrading(
			floatSetting(flags, "buy-price", tradeBuyPrice, bundle.Trading.BuyPrice),
			tradePrice,
			tradePrediction,
			floatSetting(flags, "trust", tradeTrust, bundle.Trading.Trust),
			recorder,
		)
		if err != nil {
			return err
		}
		return writeYAML(cmd.OutOrStdout(), out)
	},
}

var decideSchedulingCmd = &cobra.Command{
	Use:   "scheduling",
	Short: "Assign jobs to machines by predicted length",
	RunE: func(cmd *cobra.Command, args []string) error {
		machines := intSetting(cmd.Flags(), "machines", schedMachines, bundle.Scheduling.NumMachines)
		out, err := runScheduling(machines, schedJobs, schedPredictions, recorder)
		if err != nil {
			return err
		}
		return writeYAML(cmd.OutOrStdout(), out)
	},
}

var decideSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find the index of the maximum value starting from a predicted index",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := runSearch(searchValues, searchPrediction, recorder)
		if err != nil {
			return err
		}
		return writeYAML(cmd.OutOrStdout(), out)
	},
}

func init() {
	for _, c := range []*cobra.Command{decideSkiRentalCmd, decideAdaptiveCmd} {
		c.Flags().Float64Var(&skiBuyCost, "buy-cost", 100, "Cost of buying skis, in days of rent")
		c.Flags().Float64Var(&skiPrediction, "prediction", 0, "Predicted season length in days")
		c.Flags().IntVar(&skiDay, "day", 1, "Current day (1-indexed)")
	}
	decideSkiRentalCmd.Flags().Float64Var(&skiTrust, "trust", 0.5, "Trust in the prediction, in [0,1]")
	decideSkiRentalCmd.Flags().BoolVar(&skiRandomized, "randomized", false, "Use the randomized engine (coin flips seeded by --seed)")

	decideAdaptiveCmd.Flags().Float64Var(&adaptiveTrust, "initial-trust", 0.5, "Initial trust, in [0,1]")
	decideAdaptiveCmd.Flags().Float64Var(&adaptiveRate, "learning-rate", 0.05, "Trust step per feedback")
	decideAdaptiveCmd.Flags().StringSliceVar(&adaptiveHistory, "history", nil, "Comma-separated prediction:actual pairs fed back in order")

	decideCachingCmd.Flags().IntVar(&cacheSize, "cache-size", 3, "Cache capacity")
	decideCachingCmd.Flags().StringSliceVar(&cachePredictions, "predictions", nil, "Comma-separated item=next_access pairs")
	decideCachingCmd.Flags().UintSliceVar(&cacheContents, "cache", nil, "Initial cache contents")
	decideCachingCmd.Flags().UintSliceVar(&cacheRequests, "requests", nil, "Items accessed, in order")
	decideCachingCmd.Flags().BoolVar(&cacheInsertIsHit, "count-insert-as-hit", false, "Report misses served from spare capacity as hits")

	decideTradingCmd.Flags().Float64Var(&tradeBuyPrice, "buy-price", 100, "Reference price")
	decideTradingCmd.Flags().Float64Var(&tradeTrust, "trust", 0.5, "Trust in the prediction, in [0,1]")
	decideTradingCmd.Flags().Float64Var(&tradePrediction, "prediction", 0, "Predicted best price")
	decideTradingCmd.Flags().Float64Var(&tradePrice, "price", 0, "Current market price")

	decideSchedulingCmd.Flags().IntVar(&schedMachines, "machines", 2, "Number of identical machines")
	decideSchedulingCmd.Flags().IntSliceVar(&schedJobs, "jobs", nil, "True job lengths")
	decideSchedulingCmd.Flags().IntSliceVar(&schedPredictions, "predictions", nil, "Predicted job lengths")

	decideSearchCmd.Flags().IntSliceVar(&searchValues, "values", nil, "Values to search")
	decideSearchCmd.Flags().IntVar(&searchPrediction, "prediction", 0, "Predicted index of the maximum")

	decideCmd.AddCommand(decideSkiRentalCmd, decideAdaptiveCmd, decideCachingCmd,
		decideTradingCmd, decideSchedulingCmd, decideSearchCmd)
}
