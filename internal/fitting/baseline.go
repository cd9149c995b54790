// Package fitting removes the polynomial baseline from a spectrum and
// fits a sum of Gaussians to what remains.
package fitting

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"fringe-analysis/internal/spectrum"
)

// Window is a closed x interval, used to exclude peak regions from the
// baseline fit.
type Window struct {
	Lo float64
	Hi float64
}

func (w Window) contains(x float64) bool {
	return x >= w.Lo && x <= w.Hi
}

// BaselineOptions selects which points the baseline is fitted through.
type BaselineOptions struct {
	// Exclusions removes points inside any window from the fit.
	Exclusions []Window
	// Anchors, when non-empty, restricts the fit to the points nearest
	// each anchor x, overriding Exclusions.
	Anchors []float64
}

// BaselineModel is a fitted polynomial baseline. Coeffs are in
// ascending power order.
type BaselineModel struct {
	Degree           int
	Coeffs           []float64
	StdErrs          []float64
	ReducedChiSquare float64
}

// Eval evaluates the polynomial at x.
func (m *BaselineModel) Eval(x float64) float64 {
	y := 0.0
	for i := len(m.Coeffs) - 1; i >= 0; i-- {
		y = y*x + m.Coeffs[i]
	}
	return y
}

// FitBaseline fits a polynomial of the given degree through the
// selected points by weighted linear least squares. Weights are 1/yerr
// when every selected point carries a y uncertainty, equal otherwise.
func FitBaseline(s spectrum.Spectrum, degree int, opts BaselineOptions) (*BaselineModel, error) {
	if degree < 0 {
		return nil, &spectrum.InputError{Field: "baseline degree", Index: -1, Reason: "must be non-negative"}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	pts := selectBaselinePoints(s, opts)
	params := degree + 1
	if len(pts) < params {
		return nil, &spectrum.UnderdeterminedError{Points: len(pts), Params: params}
	}

	weighted := pts.Weighted()
	design := mat.NewDense(len(pts), params, nil)
	rhs := mat.NewVecDense(len(pts), nil)
	for i, p := range pts {
		w := 1.0
		if weighted {
			w = 1 / p.YErr
		}
		pow := 1.0
		for j := 0; j < params; j++ {
			design.Set(i, j, pow*w)
			pow *= p.X
		}
		rhs.SetVec(i, p.Y*w)
	}

	var qr mat.QR
	qr.Factorize(design)
	coef := mat.NewVecDense(params, nil)
	if err := qr.SolveVecTo(coef, false, rhs); err != nil {
		return nil, &spectrum.UnderdeterminedError{Points: len(pts), Params: params}
	}

	model := &BaselineModel{Degree: degree, Coeffs: coef.RawVector().Data}

	chi2 := 0.0
	for _, p := range pts {
		w := 1.0
		if weighted {
			w = 1 / p.YErr
		}
		d := (model.Eval(p.X) - p.Y) * w
		chi2 += d * d
	}
	dof := len(pts) - params
	if dof > 0 {
		model.ReducedChiSquare = chi2 / float64(dof)
	} else {
		model.ReducedChiSquare = math.NaN()
	}

	scale := 1.0
	if !weighted {
		scale = model.ReducedChiSquare
	}
	model.StdErrs, _ = standardErrors(design, scale)

	return model, nil
}

// SubtractBaseline returns a new spectrum with the baseline removed
// from y. x and the uncertainties pass through unchanged.
func SubtractBaseline(s spectrum.Spectrum, model *BaselineModel) spectrum.Spectrum {
	out := s.Clone()
	for i := range out {
		out[i].Y -= model.Eval(out[i].X)
	}
	return out
}

func selectBaselinePoints(s spectrum.Spectrum, opts BaselineOptions) spectrum.Spectrum {
	if len(opts.Anchors) > 0 {
		seen := make(map[int]bool, len(opts.Anchors))
		out := make(spectrum.Spectrum, 0, len(opts.Anchors))
		for _, a := range opts.Anchors {
			idx := nearestIndex(s, a)
			if !seen[idx] {
				seen[idx] = true
				out = append(out, s[idx])
			}
		}
		out.Sort()
		return out
	}

	out := make(spectrum.Spectrum, 0, len(s))
	for _, p := range s {
		excluded := false
		for _, w := range opts.Exclusions {
			if w.contains(p.X) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, p)
		}
	}
	return out
}

func nearestIndex(s spectrum.Spectrum, x float64) int {
	best := 0
	bestDist := math.Abs(s[0].X - x)
	for i, p := range s[1:] {
		if d := math.Abs(p.X - x); d < bestDist {
			best, bestDist = i+1, d
		}
	}
	return best
}
