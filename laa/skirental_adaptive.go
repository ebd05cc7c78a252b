package laa

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Feedback error bands, as a fraction of buyCost.
const (
	// accurateErrorBand: errors below this raise trust.
	accurateErrorBand = 0.1
	// inaccurateErrorBand: errors above this lower trust.
	inaccurateErrorBand = 0.3
)

// AdaptiveConfig configures the online trust update of AdaptiveSkiRental.
type AdaptiveConfig struct {
	// InitialTrust is the starting trust. Clamped to [0, 1]. Default: 0.5.
	InitialTrust float64

	// LearningRate is the trust step applied per feedback call that falls
	// outside the dead zone. Range: [0, inf). Default: 0.05.
	LearningRate float64
}

// DefaultAdaptiveConfig returns the default trust-learning parameters.
func DefaultAdaptiveConfig() AdaptiveConfig {
	return AdaptiveConfig{
		InitialTrust: 0.5,
		LearningRate: 0.05,
	}
}

// ValidateAdaptiveConfig returns an error if the config is invalid.
func ValidateAdaptiveConfig(cfg AdaptiveConfig) error {
	if math.IsNaN(cfg.InitialTrust) {
		return fmt.Errorf("initial_trust must be a number: %w", ErrInvalidConfiguration)
	}
	if cfg.LearningRate < 0 || math.IsNaN(cfg.LearningRate) || math.IsInf(cfg.LearningRate, 0) {
		return fmt.Errorf("learning_rate must be non-negative and finite, got %v: %w", cfg.LearningRate, ErrInvalidConfiguration)
	}
	return nil
}

// AdaptiveSkiRental is the deterministic ski-rental policy driven by an
// engine-owned trust that is learned from feedback.
//
// Each Feedback call compares a past prediction with the realized season:
//
//	error = |prediction - actual| / buyCost
//
// error < 0.1 raises trust by LearningRate, error > 0.3 lowers it, and errors
// in between leave it unchanged so marginal errors do not cause oscillation.
// Trust stays in [0, 1].
//
// Not safe for concurrent use: Decide and Feedback on one instance must be
// serialized by the caller.
type AdaptiveSkiRental struct {
	buyCost      float64
	trust        float64
	learningRate float64
}

// NewAdaptiveSkiRental creates an adaptive ski-rental engine.
func NewAdaptiveSkiRental(buyCost float64, cfg AdaptiveConfig) (*AdaptiveSkiRental, error) {
	if err := validatePositive("buy_cost", buyCost); err != nil {
		return nil, err
	}
	if err := ValidateAdaptiveConfig(cfg); err != nil {
		return nil, err
	}
	return &AdaptiveSkiRental{
		buyCost:      buyCost,
		trust:        clamp01(cfg.InitialTrust),
		learningRate: cfg.LearningRate,
	}, nil
}

// BuyCost returns the configured cost of buying.
func (a *AdaptiveSkiRental) BuyCost() float64 {
	return a.buyCost
}

// Trust returns the current learned trust.
func (a *AdaptiveSkiRental) Trust() float64 {
	return a.trust
}

// Threshold returns the buy day under the current trust.
func (a *AdaptiveSkiRental) Threshold(prediction float64) float64 {
	return skiThreshold(a.buyCost, prediction, a.trust)
}

// Decide reports whether to buy on the given 1-indexed day using the current trust.
func (a *AdaptiveSkiRental) Decide(day int, prediction float64) bool {
	return float64(day) >= a.Threshold(prediction)
}

// Feedback updates trust from the error between prediction and the actual
// outcome. A NaN error leaves trust unchanged.
func (a *AdaptiveSkiRental) Feedback(prediction, actual float64) {
	relErr := math.Abs(prediction-actual) / a.buyCost
	prev := a.trust
	switch {
	case relErr < accurateErrorBand:
		a.trust = clamp01(a.trust + a.learningRate)
	case relErr > inaccurateErrorBand:
		a.trust = clamp01(a.trust - a.learningRate)
	}
	if a.trust != prev {
		logrus.Debugf("adaptive ski rental: error=%.3f trust %.3f -> %.3f", relErr, prev, a.trust)
	}
}
