package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/laa-platform/laa-core/laa"
	"github.com/laa-platform/laa-core/laa/metrics"
)

var (
	// Persistent CLI flags
	logLevel   string // Log verbosity level
	configPath string // Path to an EngineBundle YAML file
	metricsOut string // Prometheus textfile written after the command
	seed       int64  // Master seed for every randomized component

	// Set up by PersistentPreRunE
	bundle   = &laa.EngineBundle{} // engine parameters from --config; empty when unset
	recorder *metrics.Recorder     // nil unless --metrics-out is set
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:           "laa",
	Short:         "Learning-augmented online decision engines",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logrus.SetLevel(level)

		bundle = &laa.EngineBundle{}
		if configPath != "" {
			b, err := laa.LoadEngineBundle(configPath)
			if err != nil {
				return err
			}
			if err := b.Validate(); err != nil {
				return err
			}
			bundle = b
			logrus.Infof("Loaded engine config from %s", configPath)
		}

		recorder = nil
		if metricsOut != "" {
			recorder = metrics.NewRecorder()
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if recorder == nil {
			return nil
		}
		if err := recorder.WriteTextfile(metricsOut); err != nil {
			return err
		}
		logrus.Infof("Metrics written to %s", metricsOut)
		return nil
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

// writeYAML renders a command result on w.
func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return enc.Close()
}

// floatSetting resolves a parameter: an explicitly set flag wins over the
// config bundle, which wins over the flag default.
func floatSetting(flags *pflag.FlagSet, name string, flagValue float64, fromBundle *float64) float64 {
	if flags.Changed(name) || fromBundle == nil {
		return flagValue
	}
	return *fromBundle
}

// intSetting is floatSetting for integer parameters.
func intSetting(flags *pflag.FlagSet, name string, flagValue int, fromBundle *int) int {
	if flags.Changed(name) || fromBundle == nil {
		return flagValue
	}
	return *fromBundle
}

// boolSetting lets either the flag or the bundle switch a feature on.
func boolSetting(flags *pflag.FlagSet, name string, flagValue, fromBundle bool) bool {
	if flags.Changed(name) {
		return flagValue
	}
	return flagValue || fromBundle
}

// init sets up persistent flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to engine config YAML (flags override its values)")
	rootCmd.PersistentFlags().StringVar(&metricsOut, "metrics-out", "", "Write Prometheus metrics in textfile format to this path")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Seed for randomized engines and evaluations")

	rootCmd.AddCommand(decideCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(calibrateCmd)
}
