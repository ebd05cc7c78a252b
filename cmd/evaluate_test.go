package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/laa-platform/laa-core/laa"
)

func TestFloatSetting_FlagOverridesBundle(t *testing.T) {
	fromBundle := 50.0
	tests := []struct {
		name    string
		args    []string
		bundled *float64
		want    float64
	}{
		{"default without bundle", nil, nil, 100},
		{"bundle beats default", nil, &fromBundle, 50},
		{"explicit flag beats bundle", []string{"--buy-cost=70"}, &fromBundle, 70},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var v float64
			flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
			flags.Float64Var(&v, "buy-cost", 100, "")
			require.NoError(t, flags.Parse(tc.args))
			assert.Equal(t, tc.want, floatSetting(flags, "buy-cost", v, tc.bundled))
		})
	}
}

func TestIntAndBoolSetting(t *testing.T) {
	var n int
	var on bool
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.IntVar(&n, "machines", 2, "")
	flags.BoolVar(&on, "randomized", false, "")
	require.NoError(t, flags.Parse(nil))

	four := 4
	assert.Equal(t, 4, intSetting(flags, "machines", n, &four))
	assert.True(t, boolSetting(flags, "randomized", on, true))

	require.NoError(t, flags.Parse([]string{"--randomized=false", "--machines=3"}))
	assert.Equal(t, 3, intSetting(flags, "machines", n, &four))
	assert.False(t, boolSetting(flags, "randomized", on, true))
}

func TestNewTrace(t *testing.T) {
	tr, err := newTrace("none")
	require.NoError(t, err)
	assert.Nil(t, tr)

	tr, err = newTrace("decisions")
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.NotEmpty(t, tr.RunID)

	_, err = newTrace("verbose")
	assert.True(t, errors.Is(err, laa.ErrInvalidConfiguration))
}

func TestEvaluateSkiRentalCommand_TracesDecisions(t *testing.T) {
	// GIVEN a small traced evaluation
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"evaluate", "ski-rental", "--trials", "50", "--trace-level", "decisions", "--seed", "7"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		traceLevel, seed = "none", 42
	})

	// WHEN the command runs
	require.NoError(t, rootCmd.Execute())

	// THEN the YAML carries the result and per-outcome counts summing to the trials
	var out SkiEvaluation
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &out))
	require.NotNil(t, out.Result)
	assert.Equal(t, 50, out.Result.Trials)
	assert.NotEmpty(t, out.RunID)
	total := 0
	for _, n := range out.Decisions["ski-rental"] {
		total += n
	}
	assert.Equal(t, 50, total)
}

func TestCalibrate_SuggestsTrust(t *testing.T) {
	xs := make([]float64, 50)
	ys := make([]float64, 50)
	for i := range xs {
		xs[i] = float64(i)
		ys[i] = 3*xs[i] + 2
	}

	out, err := calibrate(xs, ys, 0.1, 10, 100, 42)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, out.Slope, 1e-9)
	assert.InDelta(t, 32.0, out.Interval.Point, 1e-6)
	assert.InDelta(t, 1.0, out.SuggestedTrust, 1e-6)
}

func TestCalibrate_Errors(t *testing.T) {
	_, err := calibrate([]float64{1, 2, 3}, []float64{1, 2}, 0.1, 0, 10, 42)
	assert.True(t, errors.Is(err, laa.ErrLengthMismatch))

	_, err = calibrate(nil, nil, 2, 0, 10, 42)
	assert.True(t, errors.Is(err, laa.ErrInvalidConfiguration))
}
