package laa

import (
	"fmt"
	"math"
)

// SkiRental decides once per day whether to buy skis or keep renting.
//
// The buy threshold blends the classical break-even day with the predicted
// season length:
//
//	threshold = (1-trust)*buyCost + trust*min(prediction, buyCost)
//
// and the engine buys on the first day with day >= threshold. At trust=0 this
// is the 2-competitive break-even algorithm; at trust=1 with a perfect
// prediction it buys on the optimal day. Predictions above buyCost are clamped
// because buying is never worse than renting for buyCost days.
//
// Trust is used as given. Keeping it in [0,1] is the caller's responsibility;
// values outside that range extrapolate the threshold linearly.
type SkiRental struct {
	buyCost float64
}

// NewSkiRental creates a deterministic ski-rental engine.
// Returns ErrInvalidConfiguration if buyCost is not a positive finite number.
func NewSkiRental(buyCost float64) (*SkiRental, error) {
	if err := validatePositive("buy_cost", buyCost); err != nil {
		return nil, err
	}
	return &SkiRental{buyCost: buyCost}, nil
}

// BuyCost returns the configured cost of buying.
func (s *SkiRental) BuyCost() float64 {
	return s.buyCost
}

// Threshold returns the blended buy day for the given prediction and trust.
func (s *SkiRental) Threshold(prediction, trust float64) float64 {
	return skiThreshold(s.buyCost, prediction, trust)
}

// Decide reports whether to buy on the given 1-indexed day.
func (s *SkiRental) Decide(day int, prediction, trust float64) bool {
	return float64(day) >= s.Threshold(prediction, trust)
}

// skiThreshold is shared by every ski-rental variant.
// A NaN prediction carries no information and is treated as buyCost.
func skiThreshold(buyCost, prediction, trust float64) float64 {
	effective := buyCost
	if !math.IsNaN(prediction) {
		effective = math.Min(prediction, buyCost)
	}
	return blend(buyCost, effective, trust)
}

// blend returns (1-trust)*base + trust*prediction. At trust 0 the result is
// exactly base even for infinite predictions.
func blend(base, prediction, trust float64) float64 {
	if trust == 0 {
		return base
	}
	return (1-trust)*base + trust*prediction
}

// RandomizedSkiRental buys with a probability that grows with the day and the
// blended threshold:
//
//	p = clamp(day*threshold / (buyCost^2 * e), 0, 1)
//
// p is non-decreasing in day for a fixed threshold and is 0 at day 0. Low
// thresholds (low trusted predictions) keep p small, which makes the policy
// robust to underestimated seasons.
type RandomizedSkiRental struct {
	buyCost float64
	sampler Sampler
}

// NewRandomizedSkiRental creates a randomized ski-rental engine drawing coin
// flips from sampler. A nil sampler gets a private time-seeded generator.
func NewRandomizedSkiRental(buyCost float64, sampler Sampler) (*RandomizedSkiRental, error) {
	if err := validatePositive("buy_cost", buyCost); err != nil {
		return nil, err
	}
	if sampler == nil {
		sampler = newTimeSeededSampler()
	}
	return &RandomizedSkiRental{buyCost: buyCost, sampler: sampler}, nil
}

// BuyCost returns the configured cost of buying.
func (r *RandomizedSkiRental) BuyCost() float64 {
	return r.buyCost
}

// Threshold returns the blended threshold that scales the buy probability.
func (r *RandomizedSkiRental) Threshold(prediction, trust float64) float64 {
	return skiThreshold(r.buyCost, prediction, trust)
}

// BuyProbability returns the probability of buying on day.
func (r *RandomizedSkiRental) BuyProbability(day int, prediction, trust float64) float64 {
	p := float64(day) * r.Threshold(prediction, trust) / (r.buyCost * r.buyCost * math.E)
	return clamp01(p)
}

// Decide flips a coin weighted by BuyProbability. One sample is drawn per call.
func (r *RandomizedSkiRental) Decide(day int, prediction, trust float64) bool {
	p := r.BuyProbability(day, prediction, trust)
	return r.sampler.Float64() < p
}

// validatePositive rejects non-positive, NaN and infinite parameters.
func validatePositive(name string, v float64) error {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be a positive finite number, got %v: %w", name, v, ErrInvalidConfiguration)
	}
	return nil
}

// clamp01 limits v to [0,1]. NaN maps to 0.
func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
