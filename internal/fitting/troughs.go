package fitting

import (
	"math"

	"fringe-analysis/internal/spectrum"
)

// Trough is a local minimum of a spectrum. LeftBase and RightBase are
// the indices of the enclosing high points, so [x[LeftBase], x[RightBase]]
// brackets the dip.
type Trough struct {
	Index      int
	X          float64
	Depth      float64
	Prominence float64
	LeftBase   int
	RightBase  int
}

// TroughOptions filters the detected minima.
type TroughOptions struct {
	// MaxY keeps only minima with y at or below this level.
	MaxY float64
	// MinProminence keeps only minima that rise at least this much on
	// both sides before a deeper minimum is reached.
	MinProminence float64
}

// FindTroughs locates the local minima of y that pass the depth and
// prominence filters, ordered by x. Used to pick baseline exclusion
// windows and initial guesses for the dips automatically.
func FindTroughs(s spectrum.Spectrum, opts TroughOptions) []Trough {
	var out []Trough
	for i := 1; i < len(s)-1; i++ {
		if !(s[i].Y < s[i-1].Y && s[i].Y <= s[i+1].Y) {
			continue
		}
		if s[i].Y > opts.MaxY {
			continue
		}

		leftMax, leftBase := walkBase(s, i, -1)
		rightMax, rightBase := walkBase(s, i, +1)
		prominence := math.Min(leftMax, rightMax) - s[i].Y
		if prominence < opts.MinProminence {
			continue
		}

		out = append(out, Trough{
			Index:      i,
			X:          s[i].X,
			Depth:      s[i].Y,
			Prominence: prominence,
			LeftBase:   leftBase,
			RightBase:  rightBase,
		})
	}
	return out
}

// walkBase scans away from the minimum at i until a deeper point or the
// spectrum edge, returning the highest y seen and its index.
func walkBase(s spectrum.Spectrum, i, dir int) (float64, int) {
	maxY := s[i].Y
	base := i
	for j := i + dir; j >= 0 && j < len(s); j += dir {
		if s[j].Y < s[i].Y {
			break
		}
		if s[j].Y > maxY {
			maxY = s[j].Y
			base = j
		}
	}
	return maxY, base
}

// Windows converts troughs into baseline exclusion windows spanning
// each dip between its bases.
func Windows(troughs []Trough, s spectrum.Spectrum) []Window {
	out := make([]Window, len(troughs))
	for i, tr := range troughs {
		out[i] = Window{Lo: s[tr.LeftBase].X, Hi: s[tr.RightBase].X}
	}
	return out
}
