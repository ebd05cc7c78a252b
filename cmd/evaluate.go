package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/laa-platform/laa-core/laa"
	"github.com/laa-platform/laa-core/laa/evaluate"
	"github.com/laa-platform/laa-core/laa/trace"
)

var (
	// evaluate flags
	evalBuyCost    float64 // Cost of buying skis
	evalTrust      float64 // Trust in predictions
	evalTrials     int     // Monte-Carlo trials
	evalMaxSeason  int     // Exclusive upper bound on season length
	evalNoiseLow   float64 // Lower multiplicative prediction noise
	evalNoiseHigh  float64 // Upper multiplicative prediction noise
	evalRandomized bool    // Evaluate the randomized engine
	traceLevel     string  // Decision trace level

	brittleThreshold float64 // Gradient above which the engine is brittle

	sessionSeasons   int     // Number of adaptive seasons
	sessionMinSeason int     // Shortest adaptive season
	sessionBias      float64 // Multiplicative prediction bias
	sessionNoise     float64 // Relative prediction noise
	sessionTrust     float64 // Initial trust of the adaptive engine
	sessionRate      float64 // Trust learning rate
)

// evaluateCmd groups the offline evaluation subcommands
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure engines against the offline optimum",
}

// SkiEvaluation is the output of `evaluate ski-rental`.
type SkiEvaluation struct {
	RunID     string                        `yaml:"run_id,omitempty"`
	Result    *evaluate.SkiSimulationResult `yaml:"result"`
	Decisions map[string]map[string]int     `yaml:"decisions,omitempty"`
}

// AdaptiveEvaluation is the output of `evaluate adaptive`.
type AdaptiveEvaluation struct {
	RunID        string                          `yaml:"run_id,omitempty"`
	Result       *evaluate.AdaptiveSessionResult `yaml:"result"`
	TrustRaised  int                             `yaml:"trust_raised,omitempty"`
	TrustLowered int                             `yaml:"trust_lowered,omitempty"`
}

// newTrace returns nil when tracing is off so engines skip recording.
func newTrace(level string) (*trace.DecisionTrace, error) {
	if !trace.IsValidTraceLevel(level) {
		return nil, fmt.Errorf("unknown trace level %q (want none or decisions): %w", level, laa.ErrInvalidConfiguration)
	}
	if trace.TraceLevel(level) != trace.TraceLevelDecisions {
		return nil, nil
	}
	return trace.NewDecisionTrace(trace.TraceLevelDecisions), nil
}

var evaluateSkiRentalCmd = &cobra.Command{
	Use:   "ski-rental",
	Short: "Monte-Carlo competitive ratio of ski rental under noisy predictions",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		tr, err := newTrace(traceLevel)
		if err != nil {
			return err
		}
		cfg := evaluate.DefaultSkiSimulationConfig()
		cfg.BuyCost = floatSetting(flags, "buy-cost", evalBuyCost, bundle.SkiRental.BuyCost)
		cfg.Trust = floatSetting(flags, "trust", evalTrust, bundle.SkiRental.Trust)
		cfg.Trials = evalTrials
		cfg.MaxSeason = evalMaxSeason
		cfg.NoiseLow, cfg.NoiseHigh = evalNoiseLow, evalNoiseHigh
		cfg.Randomized = boolSetting(flags, "randomized", evalRandomized, bundle.SkiRental.Randomized)
		cfg.Seed = seed

		logrus.Infof("Simulating %d ski seasons (buy cost %.0f, trust %.2f, randomized=%v)",
			cfg.Trials, cfg.BuyCost, cfg.Trust, cfg.Randomized)
		result, err := evaluate.SimulateSkiRental(cfg, tr, recorder)
		if err != nil {
			return err
		}
		out := SkiEvaluation{Result: result}
		if tr != nil {
			out.RunID = tr.RunID
			out.Decisions = trace.Summarize(tr).Outcomes
		}
		return writeYAML(cmd.OutOrStdout(), out)
	},
}

var evaluateGuaranteesCmd = &cobra.Command{
	Use:   "guarantees",
	Short: "Check consistency, robustness and smoothness of deterministic ski rental",
	RunE: func(cmd *cobra.Command, args []string) error {
		buyCost := floatSetting(cmd.Flags(), "buy-cost", evalBuyCost, bundle.SkiRental.BuyCost)
		engine, err := laa.NewSkiRental(buyCost)
		if err != nil {
			return err
		}
		report, err := evaluate.CheckSkiGuarantees(engine, evaluate.DefaultGuaranteeConfig(buyCost))
		if err != nil {
			return err
		}
		if !report.Passed() {
			logrus.Warnf("Ski rental guarantees violated: consistent=%v robust=%v smooth=%v",
				report.Consistent, report.Robust, report.Smooth)
		}
		return writeYAML(cmd.OutOrStdout(), report)
	},
}

var evaluateBrittlenessCmd = &cobra.Command{
	Use:   "brittleness",
	Short: "Measure how fast ski rental degrades under tiny prediction errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		buyCost := floatSetting(flags, "buy-cost", evalBuyCost, bundle.SkiRental.BuyCost)
		engine, err := laa.NewSkiRental(buyCost)
		if err != nil {
			return err
		}
		cfg := evaluate.DefaultBrittlenessConfig()
		cfg.Trials = evalTrials
		cfg.Threshold = brittleThreshold
		cfg.Seed = seed

		report, err := evaluate.AnalyzeBrittleness(
			evaluate.SkiRentalAlgorithm{Engine: engine, Trust: floatSetting(flags, "trust", evalTrust, bundle.SkiRental.Trust)},
			evaluate.SkiRentalGenerator{BuyCost: buyCost, MaxSeason: evalMaxSeason},
			cfg,
		)
		if err != nil {
			return err
		}
		if report.IsBrittle {
			logrus.Warnf("Ski rental is brittle: severity %.3f exceeds %.3f", report.Severity, cfg.Threshold)
		}
		return writeYAML(cmd.OutOrStdout(), report)
	},
}

var evaluateAdaptiveCmd = &cobra.Command{
	Use:   "adaptive",
	Short: "Run adaptive ski rental over many seasons with outcome feedback",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		tr, err := newTrace(traceLevel)
		if err != nil {
			return err
		}
		cfg := evaluate.DefaultAdaptiveSessionConfig()
		cfg.BuyCost = floatSetting(flags, "buy-cost", evalBuyCost, bundle.Adaptive.BuyCost)
		cfg.Adaptive = bundle.AdaptiveConfig()
		if flags.Changed("initial-trust") {
			cfg.Adaptive.InitialTrust = sessionTrust
		}
		if flags.Changed("learning-rate") {
			cfg.Adaptive.LearningRate = sessionRate
		}
		cfg.Seasons = sessionSeasons
		cfg.MinSeason = sessionMinSeason
		cfg.MaxSeason = evalMaxSeason
		cfg.Bias = sessionBias
		cfg.NoiseLevel = sessionNoise
		cfg.Seed = seed

		result, err := evaluate.RunAdaptiveSessions(cfg, tr, recorder)
		if err != nil {
			return err
		}
		out := AdaptiveEvaluation{Result: result}
		if tr != nil {
			summary := trace.Summarize(tr)
			out.RunID = tr.RunID
			out.TrustRaised, out.TrustLowered = summary.TrustRaised, summary.TrustLowered
		}
		return writeYAML(cmd.OutOrStdout(), out)
	},
}

func init() {
	for _, c := range []*cobra.Command{evaluateSkiRentalCmd, evaluateGuaranteesCmd, evaluateBrittlenessCmd, evaluateAdaptiveCmd} {
		c.Flags().Float64Var(&evalBuyCost, "buy-cost", 100, "Cost of buying skis, in days of rent")
	}
	for _, c := range []*cobra.Command{evaluateSkiRentalCmd, evaluateBrittlenessCmd} {
		c.Flags().Float64Var(&evalTrust, "trust", 0.8, "Trust in predictions, in [0,1]")
		c.Flags().IntVar(&evalTrials, "trials", 1000, "Number of random seasons")
	}
	for _, c := range []*cobra.Command{evaluateSkiRentalCmd, evaluateBrittlenessCmd, evaluateAdaptiveCmd} {
		c.Flags().IntVar(&evalMaxSeason, "max-season", 150, "Exclusive upper bound on season length")
	}
	for _, c := range []*cobra.Command{evaluateSkiRentalCmd, evaluateAdaptiveCmd} {
		c.Flags().StringVar(&traceLevel, "trace-level", "none", "Decision trace level (none, decisions)")
	}

	evaluateSkiRentalCmd.Flags().Float64Var(&evalNoiseLow, "noise-low", 0.7, "Lower bound of multiplicative prediction noise")
	evaluateSkiRentalCmd.Flags().Float64Var(&evalNoiseHigh, "noise-high", 1.3, "Upper bound of multiplicative prediction noise")
	evaluateSkiRentalCmd.Flags().BoolVar(&evalRandomized, "randomized", false, "Evaluate the randomized engine")

	evaluateBrittlenessCmd.Flags().Float64Var(&brittleThreshold, "threshold", 0.5, "Ratio gradient above which the engine is brittle")

	evaluateAdaptiveCmd.Flags().IntVar(&sessionSeasons, "seasons", 50, "Number of seasons")
	evaluateAdaptiveCmd.Flags().IntVar(&sessionMinSeason, "min-season", 1, "Shortest season length")
	evaluateAdaptiveCmd.Flags().Float64Var(&sessionBias, "bias", 1, "Multiplicative bias of predictions")
	evaluateAdaptiveCmd.Flags().Float64Var(&sessionNoise, "noise", 0.1, "Relative prediction noise")
	evaluateAdaptiveCmd.Flags().Float64Var(&sessionTrust, "initial-trust", 0.5, "Initial trust, in [0,1]")
	evaluateAdaptiveCmd.Flags().Float64Var(&sessionRate, "learning-rate", 0.05, "Trust step per feedback")

	evaluateCmd.AddCommand(evaluateSkiRentalCmd, evaluateGuaranteesCmd, evaluateBrittlenessCmd, evaluateAdaptiveCmd)
}
