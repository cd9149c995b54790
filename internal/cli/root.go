// Package cli implements the cobra commands: extract, baseline, fit.
// Each command runs a prefix of the analysis pipeline and writes
// interchange CSV, so the stages can be chained or rerun individually.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fringe-analysis/internal/config"
	"fringe-analysis/internal/logger"
	"fringe-analysis/internal/pipeline"
)

var (
	configPath string
	plotPath   string
	verbose    bool
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fringe-analysis",
		Short: "Ring-fringe spectrum extraction and Gaussian peak fitting",
		Long: `fringe-analysis turns etalon ring-fringe images into calibrated spectra:
radial profile extraction around the refined pattern center, polynomial
baseline removal, and multi-Gaussian peak fitting with uncertainties.`,

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Instrument profile YAML (default: built-in bench profile)")
	rootCmd.PersistentFlags().StringVar(&plotPath, "plot", "", "Write a diagnostic plot PNG to this path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(NewExtractCommand())
	rootCmd.AddCommand(NewBaselineCommand())
	rootCmd.AddCommand(NewFitCommand())

	return rootCmd
}

// newCoordinator builds the shared pipeline for a command invocation.
func newCoordinator() (*pipeline.Coordinator, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}

	level := logger.LevelFromEnv(zerolog.InfoLevel)
	if verbose {
		level = zerolog.DebugLevel
	}
	log := logger.NewConsoleLogger(level)

	return pipeline.NewCoordinator(cfg, log), nil
}
