package evaluate

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/laa-platform/laa-core/laa"
)

// Problem is one instance an Algorithm can be scored on.
type Problem interface {
	// PerfectPrediction is the prediction an oracle would give.
	PerfectPrediction() float64
	// OptimalCost is the offline optimum for the instance.
	OptimalCost() float64
}

// ProblemGenerator draws random problem instances.
type ProblemGenerator interface {
	Generate(rng *rand.Rand) Problem
}

// Algorithm returns its cost on a problem given a prediction.
type Algorithm interface {
	Run(p Problem, prediction float64) (float64, error)
}

// BrittlenessConfig controls the perturbation sweep.
type BrittlenessConfig struct {
	Trials int
	// Epsilons are relative prediction errors; each trial perturbs the
	// perfect prediction by a factor of (1+eps).
	Epsilons []float64
	// Threshold is the ratio-per-unit-error gradient above which the
	// algorithm is reported brittle.
	Threshold float64
	Seed      int64
}

// DefaultBrittlenessConfig sweeps six log-spaced errors from 1e-6 to 1e-1.
func DefaultBrittlenessConfig() BrittlenessConfig {
	return BrittlenessConfig{
		Trials:    100,
		Epsilons:  floats.LogSpan(make([]float64, 6), 1e-6, 1e-1),
		Threshold: 0.5,
		Seed:      42,
	}
}

// ProfilePoint is the mean competitive ratio at one error level.
type ProfilePoint struct {
	Epsilon   float64 `yaml:"epsilon"`
	MeanRatio float64 `yaml:"mean_ratio"`
}

// BrittlenessReport is the outcome of AnalyzeBrittleness.
type BrittlenessReport struct {
	IsBrittle bool           `yaml:"brittle"`
	Severity  float64        `yaml:"severity"`
	Profile   []ProfilePoint `yaml:"profile"`
}

// AnalyzeBrittleness measures how fast an algorithm's competitive ratio
// degrades as the prediction error grows from the smallest epsilon.
// Severity is the ratio increase between the two smallest epsilons divided by
// the second epsilon; the algorithm is brittle when it exceeds the threshold.
func AnalyzeBrittleness(alg Algorithm, gen ProblemGenerator, cfg BrittlenessConfig) (*BrittlenessReport, error) {
	if cfg.Trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d: %w", cfg.Trials, laa.ErrInvalidConfiguration)
	}
	epsilons := append([]float64(nil), cfg.Epsilons...)
	sort.Float64s(epsilons)

	rng := laa.NewPartitionedRNG(cfg.Seed).ForSubsystem(laa.SubsystemWorkload)
	ratios := make([][]float64, len(epsilons))
	for t := 0; t < cfg.Trials; t++ {
		problem := gen.Generate(rng)
		perfect := problem.PerfectPrediction()
		opt := problem.OptimalCost()
		for i, eps := range epsilons {
			cost, err := alg.Run(problem, perfect*(1+eps))
			if err != nil {
				return nil, fmt.Errorf("trial %d eps %g: %w", t, eps, err)
			}
			ratios[i] = append(ratios[i], Ratio(cost, opt))
		}
	}

	report := &BrittlenessReport{Profile: make([]ProfilePoint, len(epsilons))}
	for i, eps := range epsilons {
		report.Profile[i] = ProfilePoint{Epsilon: eps, MeanRatio: stat.Mean(ratios[i], nil)}
	}
	if len(epsilons) < 2 || epsilons[1] == 0 {
		return report, nil
	}

	severity := (report.Profile[1].MeanRatio - report.Profile[0].MeanRatio) / epsilons[1]
	if math.IsNaN(severity) {
		severity = 0
	}
	report.Severity = severity
	report.IsBrittle = severity > cfg.Threshold
	logrus.Debugf("brittleness: severity=%.4f threshold=%.4f brittle=%v", severity, cfg.Threshold, report.IsBrittle)
	return report, nil
}

// SkiRentalProblem is a single ski season.
type SkiRentalProblem struct {
	Days    int
	BuyCost float64
}

// PerfectPrediction returns the true season length.
func (p *SkiRentalProblem) PerfectPrediction() float64 { return float64(p.Days) }

// OptimalCost returns min(days, buyCost).
func (p *SkiRentalProblem) OptimalCost() float64 { return OptimalSkiCost(p.Days, p.BuyCost) }

// SkiRentalGenerator draws seasons uniformly from [1, MaxSeason).
type SkiRentalGenerator struct {
	BuyCost   float64
	MaxSeason int
}

// Generate draws one season.
func (g SkiRentalGenerator) Generate(rng *rand.Rand) Problem {
	return &SkiRentalProblem{Days: 1 + rng.Intn(max(g.MaxSeason-1, 1)), BuyCost: g.BuyCost}
}

// SkiRentalAlgorithm scores a deterministic ski-rental engine at fixed trust.
type SkiRentalAlgorithm struct {
	Engine *laa.SkiRental
	Trust  float64
}

// Run plays the season and returns the total cost.
func (a SkiRentalAlgorithm) Run(p Problem, prediction float64) (float64, error) {
	season, ok := p.(*SkiRentalProblem)
	if !ok {
		return 0, fmt.Errorf("ski rental cannot run %T", p)
	}
	played := PlaySkiSeason(func(day int) bool {
		return a.Engine.Decide(day, prediction, a.Trust)
	}, season.Days, a.Engine.BuyCost())
	return played.Cost, nil
}
