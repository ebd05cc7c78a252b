package evaluate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laa-platform/laa-core/laa"
)

func TestCheckSkiGuarantees_DefaultEngineHolds(t *testing.T) {
	// GIVEN the deterministic engine with buy_cost=100
	engine, err := laa.NewSkiRental(100)
	require.NoError(t, err)

	// WHEN the default guarantee scenarios are played
	report, err := CheckSkiGuarantees(engine, DefaultGuaranteeConfig(100))
	require.NoError(t, err)

	// THEN consistency holds: a perfect 120-day prediction buys on day 100
	assert.InDelta(t, 1.99, report.ConsistencyRatio, 1e-9)
	assert.True(t, report.Consistent)

	// AND robustness holds: the worst trust-0 ratio is (2B-1)/B
	assert.InDelta(t, 1.99, report.RobustnessRatio, 1e-9)
	assert.Equal(t, 100, report.RobustnessSeason)
	assert.True(t, report.Robust)

	// AND ratios never fall as prediction error grows
	require.Len(t, report.SmoothnessRatios, 4)
	assert.True(t, report.Smooth)
	assert.True(t, report.Passed())
}

func TestCheckSkiGuarantees_TightBoundFails(t *testing.T) {
	engine, err := laa.NewSkiRental(100)
	require.NoError(t, err)
	cfg := DefaultGuaranteeConfig(100)
	cfg.RobustnessBound = 1.5

	report, err := CheckSkiGuarantees(engine, cfg)
	require.NoError(t, err)
	assert.False(t, report.Robust)
	assert.False(t, report.Passed())
}

func TestCheckSkiGuarantees_RejectsEmptySeasons(t *testing.T) {
	engine, err := laa.NewSkiRental(100)
	require.NoError(t, err)
	cfg := DefaultGuaranteeConfig(100)
	cfg.ConsistencySeason = 0

	_, err = CheckSkiGuarantees(engine, cfg)
	assert.True(t, errors.Is(err, laa.ErrInvalidConfiguration))
}
