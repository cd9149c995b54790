package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"fringe-analysis/internal/fitting"
)

type baselineFlags struct {
	degree     int
	exclude    []string
	anchors    []float64
	auto       bool
	maxY       float64
	prominence float64
	out        string
}

func NewBaselineCommand() *cobra.Command {
	flags := &baselineFlags{}

	cmd := &cobra.Command{
		Use:   "baseline <spectrum.csv>",
		Short: "Fit and subtract a polynomial baseline",
		Long: `Baseline fits a polynomial through the spectrum, skipping excluded
regions, and writes the baseline-subtracted spectrum.

Exclusion windows can be given explicitly with --exclude, or detected
automatically with --auto, which brackets every prominent trough.

Examples:
  fringe-analysis baseline spectrum.csv --degree 3 --exclude 12.5:14 --out corrected.csv
  fringe-analysis baseline spectrum.csv --degree 3 --auto --max-y 5000 --out corrected.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBaseline(args[0], flags)
		},
	}

	cmd.Flags().IntVar(&flags.degree, "degree", 3, "Polynomial degree")
	cmd.Flags().StringArrayVar(&flags.exclude, "exclude", nil, "Exclusion window lo:hi (repeatable)")
	cmd.Flags().Float64SliceVar(&flags.anchors, "anchor", nil, "Fit only the points nearest these x positions")
	cmd.Flags().BoolVar(&flags.auto, "auto", false, "Detect troughs and exclude them automatically")
	cmd.Flags().Float64Var(&flags.maxY, "max-y", math.Inf(1), "Trough depth ceiling for --auto (default: no ceiling)")
	cmd.Flags().Float64Var(&flags.prominence, "prominence", 0.8, "Minimum trough prominence for --auto")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "Output spectrum CSV path")
	cmd.MarkFlagRequired("out")

	return cmd
}

func runBaseline(spectrumPath string, flags *baselineFlags) error {
	coord, err := newCoordinator()
	if err != nil {
		return err
	}
	if err := coord.LoadSpectrum(spectrumPath); err != nil {
		return err
	}

	windows, err := parseWindows(flags.exclude)
	if err != nil {
		return err
	}
	if flags.auto {
		auto, err := coord.AutoWindows(fitting.TroughOptions{
			MaxY:          flags.maxY,
			MinProminence: flags.prominence,
		})
		if err != nil {
			return err
		}
		windows = append(windows, auto...)
	}

	model, err := coord.RemoveBaseline(flags.degree, fitting.BaselineOptions{
		Exclusions: windows,
		Anchors:    flags.anchors,
	})
	if err != nil {
		return err
	}

	if err := coord.SaveSpectrum(flags.out); err != nil {
		return err
	}
	if plotPath != "" {
		if err := coord.RenderSpectrum(plotPath, "x"); err != nil {
			return err
		}
	}

	fmt.Printf("baseline: degree %d, reduced chi-square %.4g -> %s\n",
		model.Degree, model.ReducedChiSquare, flags.out)
	return nil
}
