package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/laa-platform/laa-core/laa"
	"github.com/laa-platform/laa-core/laa/predict"
)

var (
	// calibrate flags
	calibX     []float64 // Feature values
	calibY     []float64 // Observed targets
	calibAlpha float64   // Miscoverage rate
	calibAt    float64   // Feature value to predict at
	calibScale float64   // Interval width that maps to zero trust
)

// Calibration is the output of `calibrate`.
type Calibration struct {
	Intercept      float64          `yaml:"intercept"`
	Slope          float64          `yaml:"slope"`
	HalfWidth      float64          `yaml:"half_width"`
	Coverage       float64          `yaml:"holdout_coverage"`
	Interval       predict.Interval `yaml:"interval"`
	SuggestedTrust float64          `yaml:"suggested_trust"`
}

// calibrate fits the conformal regressor and converts the interval at x into a trust.
func calibrate(xs, ys []float64, alpha, x, scale float64, rngSeed int64) (*Calibration, error) {
	cfg := predict.DefaultConformalConfig()
	cfg.Alpha = alpha
	reg, err := predict.NewConformalRegressor(cfg)
	if err != nil {
		return nil, err
	}
	rng := laa.NewPartitionedRNG(rngSeed).ForSubsystem(laa.SubsystemCalibration)
	if err := reg.Fit(xs, ys, rng); err != nil {
		return nil, err
	}
	iv, err := reg.Predict(x)
	if err != nil {
		return nil, err
	}
	intercept, slope := reg.Coefficients()
	return &Calibration{
		Intercept:      intercept,
		Slope:          slope,
		HalfWidth:      reg.HalfWidth(),
		Coverage:       reg.Coverage(),
		Interval:       iv,
		SuggestedTrust: predict.TrustFromInterval(iv, scale),
	}, nil
}

// calibrateCmd fits an interval predictor and suggests a trust value
var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Fit a conformal interval predictor and suggest an engine trust",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := calibrate(calibX, calibY, calibAlpha, calibAt, calibScale, seed)
		if err != nil {
			return err
		}
		logrus.Infof("Calibrated on %d samples: interval [%.3f, %.3f]", len(calibX), out.Interval.Lower, out.Interval.Upper)
		return writeYAML(cmd.OutOrStdout(), out)
	},
}

func init() {
	calibrateCmd.Flags().Float64SliceVar(&calibX, "x", nil, "Comma-separated feature values")
	calibrateCmd.Flags().Float64SliceVar(&calibY, "y", nil, "Comma-separated observed targets, one per feature value")
	calibrateCmd.Flags().Float64Var(&calibAlpha, "alpha", 0.05, "Miscoverage rate; intervals target 1-alpha coverage")
	calibrateCmd.Flags().Float64Var(&calibAt, "at", 0, "Feature value to predict at")
	calibrateCmd.Flags().Float64Var(&calibScale, "scale", 100, "Interval width that maps to zero trust (e.g. the buy cost)")
}
