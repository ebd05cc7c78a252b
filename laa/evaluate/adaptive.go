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

// EngineAdaptiveSkiRental is the engine label used in traces and metrics.
const EngineAdaptiveSkiRental = "adaptive-ski-rental"

// AdaptiveSessionConfig drives a sequence of seasons through one adaptive
// engine, feeding back each season's true length.
type AdaptiveSessionConfig struct {
	BuyCost  float64
	Adaptive laa.AdaptiveConfig
	Seasons  int

	// Season lengths are drawn uniformly from [MinSeason, MaxSeason).
	MinSeason int
	MaxSeason int

	// Predictions are season*Bias*(1+u) with u uniform in [-NoiseLevel, NoiseLevel),
	// floored at 1 day.
	Bias       float64
	NoiseLevel float64

	Seed int64
}

// DefaultAdaptiveSessionConfig returns 50 seasons with unbiased +-10% noise.
func DefaultAdaptiveSessionConfig() AdaptiveSessionConfig {
	return AdaptiveSessionConfig{
		BuyCost:    100,
		Adaptive:   laa.DefaultAdaptiveConfig(),
		Seasons:    50,
		MinSeason:  1,
		MaxSeason:  150,
		Bias:       1,
		NoiseLevel: 0.1,
		Seed:       42,
	}
}

// AdaptiveSessionResult reports how trust evolved over the sessions.
type AdaptiveSessionResult struct {
	Seasons    int       `yaml:"seasons"`
	MeanRatio  float64   `yaml:"mean_ratio"`
	FinalTrust float64   `yaml:"final_trust"`
	TrustPath  []float64 `yaml:"trust_path"`
}

// RunAdaptiveSessions plays cfg.Seasons seasons, calling Feedback after each.
// TrustPath[i] is the trust used for season i; FinalTrust is the trust after
// the last feedback. tr and rec may be nil.
func RunAdaptiveSessions(cfg AdaptiveSessionConfig, tr *trace.DecisionTrace, rec *metrics.Recorder) (*AdaptiveSessionResult, error) {
	switch {
	case cfg.Seasons <= 0:
		return nil, fmt.Errorf("seasons must be positive, got %d: %w", cfg.Seasons, laa.ErrInvalidConfiguration)
	case cfg.MinSeason < 1 || cfg.MaxSeason <= cfg.MinSeason:
		return nil, fmt.Errorf("season range [%d,%d) is empty or starts below 1: %w", cfg.MinSeason, cfg.MaxSeason, laa.ErrInvalidConfiguration)
	case cfg.NoiseLevel < 0 || math.IsNaN(cfg.NoiseLevel) || math.IsNaN(cfg.Bias):
		return nil, fmt.Errorf("noise level %v and bias %v must be valid: %w", cfg.NoiseLevel, cfg.Bias, laa.ErrInvalidConfiguration)
	}
	engine, err := laa.NewAdaptiveSkiRental(cfg.BuyCost, cfg.Adaptive)
	if err != nil {
		return nil, err
	}

	rng := laa.NewPartitionedRNG(cfg.Seed)
	workload := rng.ForSubsystem(laa.SubsystemWorkload)
	noise := rng.ForSubsystem(laa.SubsystemNoise)

	result := &AdaptiveSessionResult{Seasons: cfg.Seasons, TrustPath: make([]float64, cfg.Seasons)}
	ratios := make([]float64, cfg.Seasons)
	for i := 0; i < cfg.Seasons; i++ {
		days := cfg.MinSeason + workload.Intn(cfg.MaxSeason-cfg.MinSeason)
		u := (2*noise.Float64() - 1) * cfg.NoiseLevel
		prediction := math.Max(float64(days)*cfg.Bias*(1+u), 1)

		trust := engine.Trust()
		result.TrustPath[i] = trust
		season := PlaySkiSeason(func(day int) bool { return engine.Decide(day, prediction) }, days, cfg.BuyCost)
		ratios[i] = Ratio(season.Cost, OptimalSkiCost(days, cfg.BuyCost))

		outcome, step := "rent", days
		if season.BuyDay > 0 {
			outcome, step = "buy", season.BuyDay
		}
		tr.RecordDecision(trace.DecisionRecord{
			Engine:     EngineAdaptiveSkiRental,
			Step:       step,
			Decision:   outcome,
			Prediction: prediction,
			Trust:      trust,
			Detail:     fmt.Sprintf("session=%d season=%d", i, days),
		})
		rec.RecordDecision(EngineAdaptiveSkiRental, outcome)
		rec.ObserveRatio(EngineAdaptiveSkiRental, ratios[i])

		engine.Feedback(prediction, float64(days))
		tr.RecordFeedback(trace.FeedbackRecord{
			Engine:      EngineAdaptiveSkiRental,
			Prediction:  prediction,
			Actual:      float64(days),
			TrustBefore: trust,
			TrustAfter:  engine.Trust(),
		})
		rec.SetTrust(engine.Trust())
	}

	result.MeanRatio = stat.Mean(ratios, nil)
	result.FinalTrust = engine.Trust()
	logrus.Debugf("adaptive sessions: seasons=%d final trust=%.3f mean ratio=%.4f",
		cfg.Seasons, result.FinalTrust, result.MeanRatio)
	return result, nil
}
