package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fringe-analysis/internal/fitting"
	"fringe-analysis/internal/profile"
	"fringe-analysis/internal/spectrum"
)

// parseGuess parses one "amplitude,center,fwhm" triple. Widths are
// given as FWHM on the command line, matching how peaks are read off a
// plot, and converted to standard deviations internally.
func parseGuess(arg string) (spectrum.GaussianComponent, error) {
	parts := strings.Split(arg, ",")
	if len(parts) != 3 {
		return spectrum.GaussianComponent{}, fmt.Errorf("invalid guess %q: want amplitude,center,fwhm", arg)
	}

	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return spectrum.GaussianComponent{}, fmt.Errorf("invalid guess %q: %w", arg, err)
		}
		vals[i] = v
	}
	if vals[2] <= 0 {
		return spectrum.GaussianComponent{}, fmt.Errorf("invalid guess %q: fwhm must be positive", arg)
	}

	return spectrum.GaussianComponent{
		Amplitude: vals[0],
		Center:    vals[1],
		Width:     spectrum.WidthFromFWHM(vals[2]),
	}, nil
}

func parseGuesses(args []string) ([]spectrum.GaussianComponent, error) {
	out := make([]spectrum.GaussianComponent, 0, len(args))
	for _, a := range args {
		g, err := parseGuess(a)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// parseWindow parses "lo:hi". Either side may be empty, meaning open.
func parseWindow(arg string) (fitting.Window, error) {
	parts := strings.SplitN(arg, ":", 2)
	if len(parts) != 2 {
		return fitting.Window{}, fmt.Errorf("invalid window %q: want lo:hi", arg)
	}

	w := fitting.Window{Lo: math.Inf(-1), Hi: math.Inf(1)}
	if s := strings.TrimSpace(parts[0]); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fitting.Window{}, fmt.Errorf("invalid window %q: %w", arg, err)
		}
		w.Lo = v
	}
	if s := strings.TrimSpace(parts[1]); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fitting.Window{}, fmt.Errorf("invalid window %q: %w", arg, err)
		}
		w.Hi = v
	}
	if !(w.Lo < w.Hi) {
		return fitting.Window{}, fmt.Errorf("invalid window %q: lower bound not below upper bound", arg)
	}
	return w, nil
}

func parseWindows(args []string) ([]fitting.Window, error) {
	out := make([]fitting.Window, 0, len(args))
	for _, a := range args {
		w, err := parseWindow(a)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// parseBounds parses one "aLo:aHi,cLo:cHi,fwhmLo:fwhmHi" triple per
// component into per-parameter bounds. The width pair is given as FWHM
// like the guesses and converted to the standard-deviation parameter.
func parseBounds(args []string) ([]fitting.Bound, error) {
	if len(args) == 0 {
		return nil, nil
	}

	out := make([]fitting.Bound, 0, 3*len(args))
	for _, a := range args {
		parts := strings.Split(a, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid bounds %q: want three lo:hi pairs", a)
		}
		for j, p := range parts {
			w, err := parseWindow(p)
			if err != nil {
				return nil, fmt.Errorf("invalid bounds %q: %w", a, err)
			}
			if j == 2 {
				w.Lo = spectrum.WidthFromFWHM(w.Lo)
				w.Hi = spectrum.WidthFromFWHM(w.Hi)
			}
			out = append(out, fitting.Bound{Lo: w.Lo, Hi: w.Hi})
		}
	}
	return out, nil
}

// parseCenter parses an "x,y" pixel position.
func parseCenter(arg string) (profile.Center, error) {
	parts := strings.Split(arg, ",")
	if len(parts) != 2 {
		return profile.Center{}, fmt.Errorf("invalid center %q: want x,y", arg)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return profile.Center{}, fmt.Errorf("invalid center %q: %w", arg, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return profile.Center{}, fmt.Errorf("invalid center %q: %w", arg, err)
	}
	return profile.Center{X: x, Y: y}, nil
}
