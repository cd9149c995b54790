package spectrum

import "math"

// gaussianFWHMFactor converts a standard deviation width into a full
// width at half maximum: 2*sqrt(2*ln 2).
var gaussianFWHMFactor = 2 * math.Sqrt(2*math.Ln2)

// GaussianComponent is one peak of a multi-Gaussian model. Width is the
// standard deviation and must be positive; a negative amplitude models
// a dip instead of a peak.
type GaussianComponent struct {
	Amplitude float64
	Center    float64
	Width     float64
}

// Eval returns the component's contribution at x.
func (c GaussianComponent) Eval(x float64) float64 {
	d := x - c.Center
	return c.Amplitude * math.Exp(-d*d/(2*c.Width*c.Width))
}

// FWHM returns the full width at half maximum of the component.
func (c GaussianComponent) FWHM() float64 {
	return gaussianFWHMFactor * c.Width
}

// WidthFromFWHM converts a full width at half maximum into the standard
// deviation used by GaussianComponent.
func WidthFromFWHM(fwhm float64) float64 {
	return fwhm / gaussianFWHMFactor
}

// FitResult holds the outcome of one multi-Gaussian fit. It is created
// once per fit invocation and not modified afterwards. StdErrs mirrors
// Components field by field; NaN entries mean the uncertainty is
// undefined (degenerate fit).
type FitResult struct {
	Components []GaussianComponent
	StdErrs    []GaussianComponent

	ChiSquare        float64
	ReducedChiSquare float64
	DegreesOfFreedom int

	// Converged is false when the iteration cap was reached before the
	// gradient tolerance; the parameters are still the best found.
	Converged    bool
	GradientNorm float64
}

// Model evaluates the full sum of components at x.
func (r *FitResult) Model(x float64) float64 {
	y := 0.0
	for _, c := range r.Components {
		y += c.Eval(x)
	}
	return y
}

// Degenerate reports whether any standard error is undefined.
func (r *FitResult) Degenerate() bool {
	for _, e := range r.StdErrs {
		if math.IsNaN(e.Amplitude) || math.IsNaN(e.Center) || math.IsNaN(e.Width) {
			return true
		}
	}
	return false
}
