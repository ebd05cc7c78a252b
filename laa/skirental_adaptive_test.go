package laa

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAdaptive(t *testing.T, buyCost float64, cfg AdaptiveConfig) *AdaptiveSkiRental {
	t.Helper()
	a, err := NewAdaptiveSkiRental(buyCost, cfg)
	require.NoError(t, err)
	return a
}

func TestNewAdaptiveSkiRental_Validation(t *testing.T) {
	tests := []struct {
		name    string
		buyCost float64
		cfg     AdaptiveConfig
	}{
		{"zero buy cost", 0, DefaultAdaptiveConfig()},
		{"negative learning rate", 100, AdaptiveConfig{InitialTrust: 0.5, LearningRate: -0.1}},
		{"NaN learning rate", 100, AdaptiveConfig{InitialTrust: 0.5, LearningRate: math.NaN()}},
		{"infinite learning rate", 100, AdaptiveConfig{InitialTrust: 0.5, LearningRate: math.Inf(1)}},
		{"NaN initial trust", 100, AdaptiveConfig{InitialTrust: math.NaN(), LearningRate: 0.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAdaptiveSkiRental(tt.buyCost, tt.cfg)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration), "got %v", err)
		})
	}
}

func TestNewAdaptiveSkiRental_ClampsInitialTrust(t *testing.T) {
	assert.Equal(t, 1.0, mustAdaptive(t, 100, AdaptiveConfig{InitialTrust: 1.7, LearningRate: 0.1}).Trust())
	assert.Equal(t, 0.0, mustAdaptive(t, 100, AdaptiveConfig{InitialTrust: -2, LearningRate: 0.1}).Trust())
	assert.Equal(t, 0.5, mustAdaptive(t, 100, DefaultAdaptiveConfig()).Trust())
}

func TestAdaptiveSkiRental_DecideMatchesDeterministic(t *testing.T) {
	// GIVEN an adaptive engine at trust 0.4 and a deterministic engine
	a := mustAdaptive(t, 100, AdaptiveConfig{InitialTrust: 0.4, LearningRate: 0.1})
	s := mustSkiRental(t, 100)

	// THEN decisions agree with the deterministic engine at the same trust
	for day := 1; day <= 110; day++ {
		assert.Equal(t, s.Decide(day, 30, 0.4), a.Decide(day, 30), "day %d", day)
	}
}

func TestAdaptiveSkiRental_Feedback(t *testing.T) {
	tests := []struct {
		name       string
		prediction float64
		actual     float64
		wantTrust  float64
	}{
		{"accurate raises trust", 100, 105, 0.6},
		{"inaccurate lowers trust", 100, 140, 0.4},
		{"dead zone keeps trust", 100, 120, 0.5},
		{"dead zone lower edge", 100, 110, 0.5},
		{"dead zone upper edge", 100, 130, 0.5},
		{"NaN keeps trust", math.NaN(), 100, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustAdaptive(t, 100, AdaptiveConfig{InitialTrust: 0.5, LearningRate: 0.1})
			a.Feedback(tt.prediction, tt.actual)
			assert.InDelta(t, tt.wantTrust, a.Trust(), 1e-12)
		})
	}
}

func TestAdaptiveSkiRental_TrustStaysInUnitInterval(t *testing.T) {
	a := mustAdaptive(t, 100, AdaptiveConfig{InitialTrust: 0.5, LearningRate: 0.3})
	for i := 0; i < 10; i++ {
		a.Feedback(50, 50)
	}
	assert.Equal(t, 1.0, a.Trust())
	for i := 0; i < 10; i++ {
		a.Feedback(0, 1000)
	}
	assert.Equal(t, 0.0, a.Trust())
}

func TestAdaptiveSkiRental_FeedbackChangesLaterDecisions(t *testing.T) {
	// GIVEN trust 0 the engine ignores a prediction of 20 days
	a := mustAdaptive(t, 100, AdaptiveConfig{InitialTrust: 0, LearningRate: 1})
	require.False(t, a.Decide(20, 20))

	// WHEN an accurate prediction is reported
	a.Feedback(20, 21)

	// THEN the engine now fully trusts the prediction
	assert.Equal(t, 1.0, a.Trust())
	assert.True(t, a.Decide(20, 20))
	assert.InDelta(t, 20.0, a.Threshold(20), 1e-12)
}

func TestAdaptiveSkiRental_DecideHasNoSideEffects(t *testing.T) {
	a := mustAdaptive(t, 100, DefaultAdaptiveConfig())
	before := a.Trust()
	for day := 1; day <= 200; day++ {
		a.Decide(day, 60)
	}
	assert.Equal(t, before, a.Trust())
	assert.Equal(t, 100.0, a.BuyCost())
}
