// Package predict turns point predictors into interval predictors so callers
// can derive an engine trust from prediction uncertainty.
package predict

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/laa-platform/laa-core/laa"
)

// ErrNotFitted is returned by Predict before a successful Fit.
var ErrNotFitted = errors.New("conformal regressor is not fitted")

// ConformalConfig configures split conformal calibration.
type ConformalConfig struct {
	// Alpha is the miscoverage rate; intervals target 1-Alpha coverage. Range: (0, 1).
	Alpha float64
	// TrainFraction and CalibrationFraction split the shuffled data; the
	// remainder is held out for Coverage.
	TrainFraction       float64
	CalibrationFraction float64
}

// DefaultConformalConfig returns 95% intervals over a 60/20/20 split.
func DefaultConformalConfig() ConformalConfig {
	return ConformalConfig{
		Alpha:               0.05,
		TrainFraction:       0.6,
		CalibrationFraction: 0.2,
	}
}

// Interval is a point prediction with its conformal bounds.
type Interval struct {
	Point float64 `yaml:"point"`
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// Width returns Upper-Lower.
func (iv Interval) Width() float64 {
	return iv.Upper - iv.Lower
}

// Contains reports whether v lies in [Lower, Upper].
func (iv Interval) Contains(v float64) bool {
	return v >= iv.Lower && v <= iv.Upper
}

// ConformalRegressor wraps a one-dimensional least-squares fit with split
// conformal prediction intervals.
type ConformalRegressor struct {
	cfg       ConformalConfig
	intercept float64
	slope     float64
	halfWidth float64
	coverage  float64
	fitted    bool
}

// NewConformalRegressor validates cfg and returns an unfitted regressor.
func NewConformalRegressor(cfg ConformalConfig) (*ConformalRegressor, error) {
	switch {
	case !(cfg.Alpha > 0 && cfg.Alpha < 1):
		return nil, fmt.Errorf("alpha must be in (0,1), got %v: %w", cfg.Alpha, laa.ErrInvalidConfiguration)
	case !(cfg.TrainFraction > 0) || !(cfg.CalibrationFraction > 0) ||
		cfg.TrainFraction+cfg.CalibrationFraction > 1:
		return nil, fmt.Errorf("train %v and calibration %v fractions must be positive and sum to at most 1: %w",
			cfg.TrainFraction, cfg.CalibrationFraction, laa.ErrInvalidConfiguration)
	}
	return &ConformalRegressor{cfg: cfg}, nil
}

// Fit shuffles the samples with rng, fits the line on the training split and
// calibrates the interval half-width on the calibration split. A nil rng
// uses a fixed seed so repeated fits agree.
func (c *ConformalRegressor) Fit(x, y []float64, rng *rand.Rand) error {
	if len(x) != len(y) {
		return fmt.Errorf("%d inputs but %d targets: %w", len(x), len(y), laa.ErrLengthMismatch)
	}
	n := len(x)
	nTrain := int(math.Round(c.cfg.TrainFraction * float64(n)))
	nCal := int(math.Round(c.cfg.CalibrationFraction * float64(n)))
	if nTrain < 2 || nCal < 1 || nTrain+nCal > n {
		return fmt.Errorf("%d samples are too few to split: %w", n, laa.ErrEmptyInput)
	}
	if rng == nil {
		rng = laa.NewPartitionedRNG(42).ForSubsystem(laa.SubsystemCalibration)
	}

	perm := rng.Perm(n)
	pick := func(idx []int, src []float64) []float64 {
		out := make([]float64, len(idx))
		for i, j := range idx {
			out[i] = src[j]
		}
		return out
	}
	trainIdx, calIdx, holdIdx := perm[:nTrain], perm[nTrain:nTrain+nCal], perm[nTrain+nCal:]

	xTrain, yTrain := pick(trainIdx, x), pick(trainIdx, y)
	if stat.Variance(xTrain, nil) == 0 {
		c.intercept, c.slope = stat.Mean(yTrain, nil), 0
	} else {
		c.intercept, c.slope = stat.LinearRegression(xTrain, yTrain, nil, false)
	}

	residuals := make([]float64, nCal)
	for i, j := range calIdx {
		residuals[i] = math.Abs(y[j] - c.point(x[j]))
	}
	sort.Float64s(residuals)
	level := math.Ceil(float64(nCal+1)*(1-c.cfg.Alpha)) / float64(nCal)
	if level > 1 {
		c.halfWidth = math.Inf(1)
	} else {
		c.halfWidth = stat.Quantile(level, stat.Empirical, residuals, nil)
	}
	c.fitted = true

	c.coverage = math.NaN()
	if len(holdIdx) > 0 {
		covered := 0
		for _, j := range holdIdx {
			if c.interval(x[j]).Contains(y[j]) {
				covered++
			}
		}
		c.coverage = float64(covered) / float64(len(holdIdx))
	}
	logrus.Debugf("conformal fit: n=%d slope=%.4f intercept=%.4f half-width=%.4f holdout coverage=%.3f",
		n, c.slope, c.intercept, c.halfWidth, c.coverage)
	return nil
}

// Predict returns the interval for x.
func (c *ConformalRegressor) Predict(x float64) (Interval, error) {
	if !c.fitted {
		return Interval{}, ErrNotFitted
	}
	return c.interval(x), nil
}

// Coefficients returns the fitted intercept and slope.
func (c *ConformalRegressor) Coefficients() (intercept, slope float64) {
	return c.intercept, c.slope
}

// HalfWidth returns the calibrated interval half-width. It is +Inf when the
// calibration split is too small for the requested coverage.
func (c *ConformalRegressor) HalfWidth() float64 {
	return c.halfWidth
}

// Coverage returns the fraction of held-out samples inside their interval,
// or NaN if nothing was held out.
func (c *ConformalRegressor) Coverage() float64 {
	return c.coverage
}

func (c *ConformalRegressor) point(x float64) float64 {
	return c.intercept + c.slope*x
}

func (c *ConformalRegressor) interval(x float64) Interval {
	p := c.point(x)
	return Interval{Point: p, Lower: p - c.halfWidth, Upper: p + c.halfWidth}
}

// TrustFromInterval maps interval width to a trust in [0,1]: a zero-width
// interval earns full trust and a width of scale or more earns none.
func TrustFromInterval(iv Interval, scale float64) float64 {
	if !(scale > 0) {
		return 0
	}
	t := 1 - iv.Width()/scale
	switch {
	case math.IsNaN(t) || t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
