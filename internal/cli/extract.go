package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fringe-analysis/internal/profile"
)

type extractFlags struct {
	background   string
	center       string
	searchRadius float64
	binWidth     float64
	sum          bool
	maxRadius    float64
	normalize    float64
	frequency    bool
	square       bool
	out          string
}

func NewExtractCommand() *cobra.Command {
	flags := &extractFlags{}

	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract a radial spectrum from a ring-fringe image",
		Long: `Extract locates the ring center, bins the image radially, and writes
the profile as a spectrum CSV with x in millimeters (or GHz with
--frequency). A background exposure given with --background is binned
the same way and becomes the per-point y uncertainty, which makes later
fits weighted.

Examples:
  fringe-analysis extract rings.tif --out spectrum.csv
  fringe-analysis extract rings.tif --background dark.tif --out spectrum.csv
  fringe-analysis extract rings.tif --center 3360,2240 --bin-width 0.5 --out spectrum.csv
  fringe-analysis extract rings.tif --frequency --plot spectrum.png --out spectrum.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.background, "background", "", "Background image; its radial profile sets y uncertainties")
	cmd.Flags().StringVar(&flags.center, "center", "", "Center seed as x,y pixels (default: intensity centroid)")
	cmd.Flags().Float64Var(&flags.searchRadius, "search-radius", 6, "Center search radius in pixels")
	cmd.Flags().Float64Var(&flags.binWidth, "bin-width", 1, "Radial bin width in pixels")
	cmd.Flags().BoolVar(&flags.sum, "sum", false, "Accumulate bin intensities instead of averaging")
	cmd.Flags().Float64Var(&flags.maxRadius, "max-radius", 0, "Maximum radius in pixels (0 = full image)")
	cmd.Flags().Float64Var(&flags.normalize, "normalize", 0, "Rescale the profile peak to this value (0 = off)")
	cmd.Flags().BoolVar(&flags.frequency, "frequency", false, "Convert the x axis to GHz via the etalon relation")
	cmd.Flags().BoolVar(&flags.square, "square", false, "Square the x axis (radius squared in mm²)")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "Output spectrum CSV path")
	cmd.MarkFlagRequired("out")

	return cmd
}

func runExtract(imagePath string, flags *extractFlags) error {
	coord, err := newCoordinator()
	if err != nil {
		return err
	}

	if err := coord.LoadImage(imagePath); err != nil {
		return err
	}
	if flags.background != "" {
		if err := coord.LoadBackground(flags.background); err != nil {
			return err
		}
	}

	var seed *profile.Center
	if flags.center != "" {
		c, err := parseCenter(flags.center)
		if err != nil {
			return err
		}
		seed = &c
	}
	refineOpts := profile.DefaultRefineOptions()
	refineOpts.SearchRadius = flags.searchRadius
	center, err := coord.RefineCenter(seed, refineOpts)
	if err != nil {
		return err
	}

	mode := profile.Mean
	if flags.sum {
		mode = profile.Sum
	}
	extractOpts := profile.ExtractOptions{
		BinWidth:  flags.binWidth,
		Mode:      mode,
		MaxRadius: flags.maxRadius,
	}
	if err := coord.ExtractProfile(extractOpts, flags.normalize); err != nil {
		return err
	}

	xlabel := "radius (mm)"
	switch {
	case flags.frequency && flags.square:
		return fmt.Errorf("--frequency and --square are mutually exclusive")
	case flags.frequency:
		if err := coord.ConvertToFrequency(); err != nil {
			return err
		}
		xlabel = "frequency (GHz)"
	case flags.square:
		if err := coord.SquareAxis(); err != nil {
			return err
		}
		xlabel = "radius² (mm²)"
	}

	if err := coord.SaveSpectrum(flags.out); err != nil {
		return err
	}
	if plotPath != "" {
		if err := coord.RenderSpectrum(plotPath, xlabel); err != nil {
			return err
		}
	}

	fmt.Printf("center: (%.2f, %.2f) px\n", center.X, center.Y)
	fmt.Printf("spectrum: %d points -> %s\n", len(coord.Spectrum()), flags.out)
	return nil
}
