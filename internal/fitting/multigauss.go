package fitting

import (
	"math"

	"github.com/maorshutman/lm"

	"fringe-analysis/internal/spectrum"
)

// Bound constrains one fit parameter. Use ±Inf for an open side.
type Bound struct {
	Lo float64
	Hi float64
}

// boundPenalty scales constraint violations into residual rows that
// dominate the data residuals.
const boundPenalty = 1e6

// FitOptions controls the multi-Gaussian solve.
type FitOptions struct {
	// MaxIterations caps the solver; 0 means 100.
	MaxIterations int
	// GradientTol declares convergence when the gradient sup-norm at
	// the solution drops below this fraction of the initial gradient
	// (floored at the absolute value itself); 0 means 1e-6.
	GradientTol float64
	// Bounds holds one entry per parameter in component order
	// (amplitude, center, width), or is empty for an unbounded fit.
	Bounds []Bound
}

// FitGaussians fits a sum of Gaussian components to the spectrum by
// Levenberg-Marquardt, starting from the given guesses. Residuals are
// weighted by 1/yerr when every point carries a y uncertainty.
//
// Hitting the iteration cap is not an error: the best parameters found
// are returned with Converged=false. A *spectrum.DegenerateFitError is
// returned alongside a usable result when some standard errors are
// undefined.
func FitGaussians(s spectrum.Spectrum, guesses []spectrum.GaussianComponent, opts FitOptions) (*spectrum.FitResult, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(guesses) == 0 {
		return nil, &spectrum.InputError{Field: "guesses", Index: -1, Reason: "no components"}
	}
	for i, g := range guesses {
		if g.Width <= 0 {
			return nil, &spectrum.InputError{Field: "guesses", Index: i, Reason: "non-positive width"}
		}
	}

	nParams := 3 * len(guesses)
	if len(s) < nParams {
		return nil, &spectrum.UnderdeterminedError{Points: len(s), Params: nParams}
	}

	init := flattenComponents(guesses)
	if err := checkBounds(opts.Bounds, init); err != nil {
		return nil, err
	}

	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 100
	}
	if opts.GradientTol <= 0 {
		opts.GradientTol = 1e-6
	}

	weights := make([]float64, len(s))
	for i := range weights {
		weights[i] = 1
	}
	if s.Weighted() {
		for i, p := range s {
			weights[i] = 1 / p.YErr
		}
	}

	dataResiduals := func(dst, x []float64) {
		for i, p := range s {
			dst[i] = (sumGaussians(x, p.X) - p.Y) * weights[i]
		}
	}

	size := len(s)
	f := dataResiduals
	if len(opts.Bounds) > 0 {
		size += nParams
		bounds := opts.Bounds
		n := len(s)
		f = func(dst, x []float64) {
			dataResiduals(dst[:n], x)
			for j, b := range bounds {
				v := 0.0
				if x[j] < b.Lo {
					v = b.Lo - x[j]
				} else if x[j] > b.Hi {
					v = x[j] - b.Hi
				}
				dst[n+j] = boundPenalty * v * v
			}
		}
	}

	jacobian := lm.NumJac{Func: f}
	problem := lm.LMProblem{
		Dim:        nParams,
		Size:       size,
		Func:       f,
		Jac:        jacobian.Jac,
		InitParams: init,
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}

	params := append([]float64(nil), init...)
	results, err := lm.LM(problem, &lm.Settings{Iterations: opts.MaxIterations, ObjectiveTol: 1e-16})
	if err == nil {
		copy(params, results.X)
	}

	// The model is symmetric in the width sign; report it positive.
	for j := 2; j < nParams; j += 3 {
		params[j] = math.Abs(params[j])
	}

	gradInit := gradientSupNorm(f, size, init)
	gradFinal := gradientSupNorm(f, size, params)
	converged := err == nil && gradFinal <= opts.GradientTol*math.Max(1, gradInit)

	res := &spectrum.FitResult{
		Components:   unflattenComponents(params),
		Converged:    converged,
		GradientNorm: gradFinal,
	}

	chi2 := 0.0
	r := make([]float64, len(s))
	dataResiduals(r, params)
	for _, v := range r {
		chi2 += v * v
	}
	res.ChiSquare = chi2
	res.DegreesOfFreedom = len(s) - nParams
	if res.DegreesOfFreedom > 0 {
		res.ReducedChiSquare = chi2 / float64(res.DegreesOfFreedom)
	} else {
		res.ReducedChiSquare = math.NaN()
	}

	scale := 1.0
	if !s.Weighted() {
		scale = res.ReducedChiSquare
	}
	jac := numericJacobian(dataResiduals, len(s), params)
	stderrs, degenerate := standardErrors(jac, scale)
	res.StdErrs = unflattenComponents(stderrs)

	if len(degenerate) > 0 {
		return res, &spectrum.DegenerateFitError{Params: degenerate}
	}
	return res, nil
}

func sumGaussians(params []float64, x float64) float64 {
	y := 0.0
	for j := 0; j+2 < len(params); j += 3 {
		d := x - params[j+1]
		w := params[j+2]
		y += params[j] * math.Exp(-d*d/(2*w*w))
	}
	return y
}

func flattenComponents(cs []spectrum.GaussianComponent) []float64 {
	out := make([]float64, 0, 3*len(cs))
	for _, c := range cs {
		out = append(out, c.Amplitude, c.Center, c.Width)
	}
	return out
}

func unflattenComponents(params []float64) []spectrum.GaussianComponent {
	out := make([]spectrum.GaussianComponent, 0, len(params)/3)
	for j := 0; j+2 < len(params); j += 3 {
		out = append(out, spectrum.GaussianComponent{
			Amplitude: params[j],
			Center:    params[j+1],
			Width:     params[j+2],
		})
	}
	return out
}

func checkBounds(bounds []Bound, init []float64) error {
	if len(bounds) == 0 {
		return nil
	}
	if len(bounds) != len(init) {
		return &spectrum.InputError{Field: "bounds", Index: -1, Reason: "need one bound per parameter"}
	}
	for j, b := range bounds {
		if !(b.Lo < b.Hi) {
			return &spectrum.InputError{Field: "bounds", Index: j, Reason: "lower bound not below upper bound"}
		}
		if init[j] < b.Lo || init[j] > b.Hi {
			return &spectrum.InputError{Field: "bounds", Index: j, Reason: "initial guess outside bounds"}
		}
	}
	return nil
}
