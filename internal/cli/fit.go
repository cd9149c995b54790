package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fringe-analysis/internal/fitting"
)

type fitFlags struct {
	guesses       []string
	bounds        []string
	roi           string
	maxIterations int
	out           string
}

func NewFitCommand() *cobra.Command {
	flags := &fitFlags{}

	cmd := &cobra.Command{
		Use:   "fit <spectrum.csv>",
		Short: "Fit a sum of Gaussians to a baseline-corrected spectrum",
		Long: `Fit solves a multi-Gaussian model by Levenberg-Marquardt. One --guess
per peak gives the starting point as amplitude,center,fwhm; dips take a
negative amplitude. Optional --bounds constrain each component as three
lo:hi pairs on amplitude, center, and fwhm, and --roi restricts the fit
to an x interval.

Examples:
  fringe-analysis fit corrected.csv --guess -120,13.2,0.8 --out fit.csv
  fringe-analysis fit corrected.csv --guess -120,13.2,0.8 --guess -60,14.1,0.6 \
      --bounds -500:0,12:14,0.1:2 --bounds -500:0,13.5:15,0.1:2 --out fit.csv
  fringe-analysis fit corrected.csv --guess -120,13.2,0.8 --roi 11:16 --out fit.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFit(args[0], flags)
		},
	}

	cmd.Flags().StringArrayVar(&flags.guesses, "guess", nil, "Initial guess amplitude,center,fwhm (repeatable)")
	cmd.Flags().StringArrayVar(&flags.bounds, "bounds", nil, "Per-component bounds aLo:aHi,cLo:cHi,fwhmLo:fwhmHi (repeatable)")
	cmd.Flags().StringVar(&flags.roi, "roi", "", "Region of interest lo:hi on the x axis")
	cmd.Flags().IntVar(&flags.maxIterations, "max-iterations", 100, "Solver iteration cap")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "Output fit CSV path")
	cmd.MarkFlagRequired("guess")
	cmd.MarkFlagRequired("out")

	return cmd
}

func runFit(spectrumPath string, flags *fitFlags) error {
	coord, err := newCoordinator()
	if err != nil {
		return err
	}
	if err := coord.LoadSpectrum(spectrumPath); err != nil {
		return err
	}

	guesses, err := parseGuesses(flags.guesses)
	if err != nil {
		return err
	}
	bounds, err := parseBounds(flags.bounds)
	if err != nil {
		return err
	}

	var roi *fitting.Window
	if flags.roi != "" {
		w, err := parseWindow(flags.roi)
		if err != nil {
			return err
		}
		roi = &w
	}

	res, err := coord.Fit(roi, guesses, fitting.FitOptions{
		MaxIterations: flags.maxIterations,
		Bounds:        bounds,
	})
	if err != nil && res == nil {
		return err
	}

	if err := coord.SaveFit(flags.out); err != nil {
		return err
	}
	if plotPath != "" {
		if err := coord.RenderFit(plotPath, "x"); err != nil {
			return err
		}
	}

	for i, c := range res.Components {
		e := res.StdErrs[i]
		fmt.Printf("peak %d: height %.4g ± %.2g  center %.6g ± %.2g  fwhm %.4g ± %.2g\n",
			i+1, c.Amplitude, e.Amplitude,
			c.Center, e.Center,
			c.FWHM(), e.FWHM())
	}
	fmt.Printf("chi-square %.6g  reduced %.6g  converged %v\n",
		res.ChiSquare, res.ReducedChiSquare, res.Converged)
	return nil
}
