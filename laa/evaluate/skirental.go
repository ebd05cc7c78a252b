// Package evaluate measures learning-augmented engines against the offline
// optimum: Monte-Carlo competitive ratios, robustness/consistency checks and
// brittleness under small prediction noise.
package evaluate

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/laa-platform/laa-core/laa"
	"github.com/laa-platform/laa-core/laa/metrics"
	"github.com/laa-platform/laa-core/laa/trace"
)

// EngineSkiRental is the engine label used in traces and metrics.
const EngineSkiRental = "ski-rental"

// BuyPolicy decides on a 1-indexed day whether to buy.
type BuyPolicy func(day int) bool

// SkiSeason is the outcome of playing one ski season against a BuyPolicy.
type SkiSeason struct {
	// BuyDay is the day the policy bought, or 0 if it rented every day.
	BuyDay int
	Cost   float64
}

// PlaySkiSeason runs decide for days 1..seasonDays until it buys.
// Buying on day d costs (d-1) rent plus buyCost; never buying costs seasonDays.
func PlaySkiSeason(decide BuyPolicy, seasonDays int, buyCost float64) SkiSeason {
	for day := 1; day <= seasonDays; day++ {
		if decide(day) {
			return SkiSeason{BuyDay: day, Cost: float64(day-1) + buyCost}
		}
	}
	return SkiSeason{Cost: float64(max(seasonDays, 0))}
}

// OptimalSkiCost is the offline optimum: rent throughout or buy on day 1.
func OptimalSkiCost(seasonDays int, buyCost float64) float64 {
	return math.Min(float64(max(seasonDays, 0)), buyCost)
}

// Ratio returns algCost/optCost, or 1 when both are zero.
func Ratio(algCost, optCost float64) float64 {
	if optCost == 0 {
		if algCost == 0 {
			return 1
		}
		return math.Inf(1)
	}
	return algCost / optCost
}

// SkiSimulationConfig configures a Monte-Carlo ski-rental evaluation.
type SkiSimulationConfig struct {
	BuyCost float64
	Trust   float64
	Trials  int

	// Season lengths are drawn uniformly from [MinSeason, MaxSeason).
	MinSeason int
	MaxSeason int

	// Predictions are season*noise with noise uniform in [NoiseLow, NoiseHigh),
	// floored at 1 day.
	NoiseLow  float64
	NoiseHigh float64

	// Randomized selects RandomizedSkiRental instead of the deterministic engine.
	Randomized bool

	Seed int64
}

// DefaultSkiSimulationConfig returns the standard evaluation setup: B=100,
// trust 0.8, seasons in [1,150), +-30% multiplicative noise.
func DefaultSkiSimulationConfig() SkiSimulationConfig {
	return SkiSimulationConfig{
		BuyCost:   100,
		Trust:     0.8,
		Trials:    10000,
		MinSeason: 1,
		MaxSeason: 150,
		NoiseLow:  0.7,
		NoiseHigh: 1.3,
		Seed:      42,
	}
}

// Validate checks the simulation parameters.
func (c SkiSimulationConfig) Validate() error {
	switch {
	case c.Trials <= 0:
		return fmt.Errorf("trials must be positive, got %d: %w", c.Trials, laa.ErrInvalidConfiguration)
	case c.MinSeason < 1 || c.MaxSeason <= c.MinSeason:
		return fmt.Errorf("season range [%d,%d) is empty or starts below 1: %w", c.MinSeason, c.MaxSeason, laa.ErrInvalidConfiguration)
	case c.NoiseHigh < c.NoiseLow || math.IsNaN(c.NoiseLow) || math.IsNaN(c.NoiseHigh):
		return fmt.Errorf("noise range [%v,%v) is invalid: %w", c.NoiseLow, c.NoiseHigh, laa.ErrInvalidConfiguration)
	}
	return nil
}

// SkiSimulationResult summarizes competitive ratios over all trials.
type SkiSimulationResult struct {
	Trials      int     `yaml:"trials"`
	MeanRatio   float64 `yaml:"mean_ratio"`
	StdDevRatio float64 `yaml:"stddev_ratio"`
	MaxRatio    float64 `yaml:"max_ratio"`
	BuyRate     float64 `yaml:"buy_rate"`
}

// SimulateSkiRental plays cfg.Trials random seasons with noisy predictions
// and reports the competitive-ratio distribution. tr and rec may be nil.
func SimulateSkiRental(cfg SkiSimulationConfig, tr *trace.DecisionTrace, rec *metrics.Recorder) (*SkiSimulationResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := laa.NewPartitionedRNG(cfg.Seed)
	workload := rng.ForSubsystem(laa.SubsystemWorkload)
	noise := rng.ForSubsystem(laa.SubsystemNoise)

	decide, err := skiDecider(cfg, rng)
	if err != nil {
		return nil, err
	}

	ratios := make([]float64, cfg.Trials)
	bought := 0
	for i := range ratios {
		days := cfg.MinSeason + workload.Intn(cfg.MaxSeason-cfg.MinSeason)
		factor := cfg.NoiseLow + noise.Float64()*(cfg.NoiseHigh-cfg.NoiseLow)
		prediction := math.Max(float64(days)*factor, 1)

		season := PlaySkiSeason(func(day int) bool { return decide(day, prediction) }, days, cfg.BuyCost)
		ratios[i] = Ratio(season.Cost, OptimalSkiCost(days, cfg.BuyCost))

		outcome, step := "rent", days
		if season.BuyDay > 0 {
			outcome, step = "buy", season.BuyDay
			bought++
		}
		tr.RecordDecision(trace.DecisionRecord{
			Engine:     EngineSkiRental,
			Step:       step,
			Decision:   outcome,
			Prediction: prediction,
			Trust:      cfg.Trust,
			Detail:     fmt.Sprintf("season=%d ratio=%.3f", days, ratios[i]),
		})
		rec.RecordDecision(EngineSkiRental, outcome)
		rec.ObserveRatio(EngineSkiRental, ratios[i])
	}

	mean, std := stat.MeanStdDev(ratios, nil)
	if cfg.Trials == 1 {
		std = 0
	}
	result := &SkiSimulationResult{
		Trials:      cfg.Trials,
		MeanRatio:   mean,
		StdDevRatio: std,
		MaxRatio:    maxOf(ratios),
		BuyRate:     float64(bought) / float64(cfg.Trials),
	}
	logrus.Debugf("ski rental simulation: trials=%d trust=%.2f randomized=%v mean ratio=%.4f",
		cfg.Trials, cfg.Trust, cfg.Randomized, result.MeanRatio)
	return result, nil
}

// skiDecider builds the per-day decision function for the configured variant.
func skiDecider(cfg SkiSimulationConfig, rng *laa.PartitionedRNG) (func(day int, prediction float64) bool, error) {
	if cfg.Randomized {
		engine, err := laa.NewRandomizedSkiRental(cfg.BuyCost, rng.ForSubsystem(laa.SubsystemSkiRental))
		if err != nil {
			return nil, err
		}
		return func(day int, prediction float64) bool {
			return engine.Decide(day, prediction, cfg.Trust)
		}, nil
	}
	engine, err := laa.NewSkiRental(cfg.BuyCost)
	if err != nil {
		return nil, err
	}
	return func(day int, prediction float64) bool {
		return engine.Decide(day, prediction, cfg.Trust)
	}, nil
}

func maxOf(xs []float64) float64 {
	m := math.Inf(-1)
	for _, x := range xs {
		m = math.Max(m, x)
	}
	return m
}
