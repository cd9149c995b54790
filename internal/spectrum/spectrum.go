// Package spectrum holds the data model shared by the analysis stages:
// the four-column (x, x_err, y, y_err) spectrum, the Gaussian fit types,
// the CSV interchange format, and the domain error kinds.
package spectrum

import (
	"math"
	"sort"
)

// Point is one sample of a spectrum. An error of 0 means "unknown";
// stages that support weighting fall back to equal weights in that case.
type Point struct {
	X    float64
	XErr float64
	Y    float64
	YErr float64
}

// Spectrum is an ordered sequence of points. After Sort, X must be
// strictly increasing for the spectrum to be valid.
type Spectrum []Point

// Sort orders the spectrum by ascending X. Ties are kept stable so
// Validate can report them as duplicates.
func (s Spectrum) Sort() {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].X < s[j].X
	})
}

// Validate checks the spectrum invariants: non-empty, finite values,
// non-negative errors, and strictly increasing X.
func (s Spectrum) Validate() error {
	if len(s) == 0 {
		return &InputError{Field: "spectrum", Index: -1, Reason: "no data points"}
	}

	for i, p := range s {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return &InputError{Field: "spectrum", Index: i, Reason: "non-finite value"}
		}
		if p.XErr < 0 || p.YErr < 0 {
			return &InputError{Field: "spectrum", Index: i, Reason: "negative error"}
		}
		if i > 0 && p.X <= s[i-1].X {
			return &InputError{Field: "spectrum", Index: i, Reason: "x values not strictly increasing"}
		}
	}

	return nil
}

// Clone returns an independent copy. Stages that transform a spectrum
// operate on a clone so the caller's data is never mutated.
func (s Spectrum) Clone() Spectrum {
	out := make(Spectrum, len(s))
	copy(out, s)
	return out
}

// Crop returns the points with lo < x < hi, preserving order. Used for
// region-of-interest selection before fitting.
func (s Spectrum) Crop(lo, hi float64) Spectrum {
	out := make(Spectrum, 0, len(s))
	for _, p := range s {
		if p.X > lo && p.X < hi {
			out = append(out, p)
		}
	}
	return out
}

// Weighted reports whether every point carries a y uncertainty. Mixed
// spectra (some zero errors) are treated as unweighted.
func (s Spectrum) Weighted() bool {
	if len(s) == 0 {
		return false
	}
	for _, p := range s {
		if p.YErr <= 0 {
			return false
		}
	}
	return true
}

// Xs returns the x column as a slice.
func (s Spectrum) Xs() []float64 {
	xs := make([]float64, len(s))
	for i, p := range s {
		xs[i] = p.X
	}
	return xs
}

// Ys returns the y column as a slice.
func (s Spectrum) Ys() []float64 {
	ys := make([]float64, len(s))
	for i, p := range s {
		ys[i] = p.Y
	}
	return ys
}
