package evaluate

import (
	"fmt"
	"math"

	"github.com/laa-platform/laa-core/laa"
)

// GuaranteeConfig sets the scenarios and bounds for CheckSkiGuarantees.
type GuaranteeConfig struct {
	// ConsistencySeason is the season length played with a perfect prediction
	// at trust 1. ConsistencyBound is the largest acceptable ratio.
	ConsistencySeason int
	ConsistencyBound  float64

	// RobustnessBound caps the worst ratio at trust 0 over every season in
	// [1, RobustnessHorizon] with an adversarial prediction of 1 day.
	RobustnessHorizon int
	RobustnessBound   float64

	// Smoothness plays SmoothnessSeason at SmoothnessTrust with predictions
	// inflated by each relative error. Ratios must not decrease with error and
	// consecutive steps must stay below SmoothnessMaxJump.
	SmoothnessSeason  int
	SmoothnessTrust   float64
	SmoothnessErrors  []float64
	SmoothnessMaxJump float64
}

// DefaultGuaranteeConfig returns bounds for an engine with the given buy cost.
func DefaultGuaranteeConfig(buyCost float64) GuaranteeConfig {
	season := int(math.Ceil(1.2 * buyCost))
	return GuaranteeConfig{
		ConsistencySeason: season,
		ConsistencyBound:  2.2,
		RobustnessHorizon: int(math.Ceil(3 * buyCost)),
		RobustnessBound:   2.0,
		SmoothnessSeason:  season,
		SmoothnessTrust:   0.7,
		SmoothnessErrors:  []float64{0, 0.1, 0.2, 0.5},
		SmoothnessMaxJump: 0.5,
	}
}

// GuaranteeReport records the measured ratios and whether each bound held.
type GuaranteeReport struct {
	ConsistencyRatio float64   `yaml:"consistency_ratio"`
	Consistent       bool      `yaml:"consistent"`
	RobustnessRatio  float64   `yaml:"robustness_ratio"`
	RobustnessSeason int       `yaml:"robustness_worst_season"`
	Robust           bool      `yaml:"robust"`
	SmoothnessRatios []float64 `yaml:"smoothness_ratios"`
	Smooth           bool      `yaml:"smooth"`
}

// Passed reports whether every guarantee held.
func (r *GuaranteeReport) Passed() bool {
	return r.Consistent && r.Robust && r.Smooth
}

// CheckSkiGuarantees measures consistency, robustness and smoothness of a
// deterministic ski-rental engine.
func CheckSkiGuarantees(engine *laa.SkiRental, cfg GuaranteeConfig) (*GuaranteeReport, error) {
	if cfg.ConsistencySeason < 1 || cfg.RobustnessHorizon < 1 || cfg.SmoothnessSeason < 1 {
		return nil, fmt.Errorf("guarantee seasons must be positive: %w", laa.ErrInvalidConfiguration)
	}
	buyCost := engine.BuyCost()
	ratio := func(days int, prediction, trust float64) float64 {
		season := PlaySkiSeason(func(day int) bool {
			return engine.Decide(day, prediction, trust)
		}, days, buyCost)
		return Ratio(season.Cost, OptimalSkiCost(days, buyCost))
	}

	report := &GuaranteeReport{}

	report.ConsistencyRatio = ratio(cfg.ConsistencySeason, float64(cfg.ConsistencySeason), 1)
	report.Consistent = report.ConsistencyRatio <= cfg.ConsistencyBound

	for days := 1; days <= cfg.RobustnessHorizon; days++ {
		if r := ratio(days, 1, 0); r > report.RobustnessRatio {
			report.RobustnessRatio, report.RobustnessSeason = r, days
		}
	}
	report.Robust = report.RobustnessRatio <= cfg.RobustnessBound

	report.Smooth = true
	for i, e := range cfg.SmoothnessErrors {
		prediction := float64(cfg.SmoothnessSeason) * (1 + e)
		r := ratio(cfg.SmoothnessSeason, prediction, cfg.SmoothnessTrust)
		report.SmoothnessRatios = append(report.SmoothnessRatios, r)
		if i == 0 {
			continue
		}
		prev := report.SmoothnessRatios[i-1]
		if r < prev || r-prev >= cfg.SmoothnessMaxJump {
			report.Smooth = false
		}
	}
	return report, nil
}
