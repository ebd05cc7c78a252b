package laa

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSampler always returns the same sample.
type fixedSampler float64

func (f fixedSampler) Float64() float64 { return float64(f) }

// countingSampler records how many samples were drawn.
type countingSampler struct {
	value float64
	calls int
}

func (c *countingSampler) Float64() float64 {
	c.calls++
	return c.value
}

func mustSkiRental(t *testing.T, buyCost float64) *SkiRental {
	t.Helper()
	s, err := NewSkiRental(buyCost)
	require.NoError(t, err)
	return s
}

func TestNewSkiRental_RejectsInvalidBuyCost(t *testing.T) {
	for _, buyCost := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := NewSkiRental(buyCost)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration), "buy_cost=%v: got %v", buyCost, err)

		_, err = NewRandomizedSkiRental(buyCost, fixedSampler(0))
		assert.True(t, errors.Is(err, ErrInvalidConfiguration), "randomized buy_cost=%v: got %v", buyCost, err)
	}
}

func TestSkiRental_NoTrust_BreakEven(t *testing.T) {
	// GIVEN buy_cost=100 and trust=0
	s := mustSkiRental(t, 100)

	// THEN the engine buys exactly on day 100, whatever the prediction
	for _, prediction := range []float64{10, 100, 500, -3, math.Inf(1), math.Inf(-1), math.NaN()} {
		assert.False(t, s.Decide(99, prediction, 0), "day 99, prediction %v", prediction)
		assert.True(t, s.Decide(100, prediction, 0), "day 100, prediction %v", prediction)
	}
}

func TestSkiRental_FullTrust_GoodPrediction(t *testing.T) {
	s := mustSkiRental(t, 100)
	assert.False(t, s.Decide(24, 25, 1))
	assert.True(t, s.Decide(25, 25, 1))
}

func TestSkiRental_PredictionAboveBuyCostIsClamped(t *testing.T) {
	s := mustSkiRental(t, 100)
	for _, trust := range []float64{0, 0.3, 0.7, 1} {
		assert.Equal(t, s.Threshold(100, trust), s.Threshold(120, trust), "trust %v", trust)
		for day := 95; day <= 105; day++ {
			assert.Equal(t, s.Decide(day, 100, trust), s.Decide(day, 120, trust), "day %d trust %v", day, trust)
		}
	}
	assert.False(t, s.Decide(99, 120, 1))
	assert.True(t, s.Decide(100, 120, 1))
}

func TestSkiRental_ThresholdNeverExceedsBuyCost(t *testing.T) {
	s := mustSkiRental(t, 50)
	for _, prediction := range []float64{0, 10, 49, 50, 51, 1e9} {
		for _, trust := range []float64{0, 0.25, 0.5, 1} {
			assert.LessOrEqual(t, s.Threshold(prediction, trust), 50.0)
		}
	}
}

func TestSkiRental_IsIdempotent(t *testing.T) {
	s := mustSkiRental(t, 100)
	for day := 1; day <= 120; day++ {
		assert.Equal(t, s.Decide(day, 42, 0.6), s.Decide(day, 42, 0.6))
	}
	assert.Equal(t, 100.0, s.BuyCost())
}

func TestRandomizedSkiRental_BuyProbability(t *testing.T) {
	r, err := NewRandomizedSkiRental(100, fixedSampler(0))
	require.NoError(t, err)

	// Day 0 never buys.
	assert.Equal(t, 0.0, r.BuyProbability(0, 30, 0.5))

	// At trust 0 on the break-even day, p = 1/e.
	assert.InDelta(t, 1/math.E, r.BuyProbability(100, 30, 0), 1e-12)

	// Clamped to 1 for late days.
	assert.Equal(t, 1.0, r.BuyProbability(10000, 30, 0))

	// Negative thresholds clamp to 0.
	assert.Equal(t, 0.0, r.BuyProbability(10, -1000, 1))
}

func TestRandomizedSkiRental_ProbabilityMonotoneInDay(t *testing.T) {
	r, err := NewRandomizedSkiRental(100, fixedSampler(0))
	require.NoError(t, err)

	for _, trust := range []float64{0, 0.5, 1} {
		prev := -1.0
		for day := 0; day <= 400; day++ {
			p := r.BuyProbability(day, 40, trust)
			require.GreaterOrEqual(t, p, prev, "day %d trust %v", day, trust)
			require.GreaterOrEqual(t, p, 0.0)
			require.LessOrEqual(t, p, 1.0)
			prev = p
		}
	}
}

func TestRandomizedSkiRental_DecideUsesInjectedSampler(t *testing.T) {
	// GIVEN a sampler that returns 0.5 and a day whose probability is 1/e (< 0.5)
	low := &countingSampler{value: 0.5}
	r, err := NewRandomizedSkiRental(100, low)
	require.NoError(t, err)

	// THEN the coin says rent, and exactly one sample was drawn
	assert.False(t, r.Decide(100, 100, 0))
	assert.Equal(t, 1, low.calls)

	// GIVEN a sampler that returns 0.1 (< 1/e)
	r2, err := NewRandomizedSkiRental(100, fixedSampler(0.1))
	require.NoError(t, err)
	assert.True(t, r2.Decide(100, 100, 0))
}

func TestRandomizedSkiRental_ZeroProbabilityNeverBuys(t *testing.T) {
	r, err := NewRandomizedSkiRental(100, fixedSampler(0))
	require.NoError(t, err)
	assert.False(t, r.Decide(0, 100, 0.5))
}

func TestRandomizedSkiRental_SeededRunsAreReproducible(t *testing.T) {
	run := func() []bool {
		r, err := NewRandomizedSkiRental(100, rand.New(rand.NewSource(9)))
		require.NoError(t, err)
		out := make([]bool, 0, 200)
		for day := 1; day <= 200; day++ {
			out = append(out, r.Decide(day, 80, 0.8))
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestRandomizedSkiRental_NilSamplerGetsPrivateSource(t *testing.T) {
	r, err := NewRandomizedSkiRental(100, nil)
	require.NoError(t, err)
	assert.NotNil(t, r.sampler)
	assert.True(t, r.Decide(1000, 100, 0), "p=1 must always buy")
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 0.0, clamp01(math.NaN()))
	assert.Equal(t, 0.25, clamp01(0.25))
	assert.Equal(t, 1.0, clamp01(3))
}
