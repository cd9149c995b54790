package profile

import (
	"math"

	"fringe-analysis/internal/spectrum"
)

// speedOfLight in m/s.
const speedOfLight = 299792458.0

// Etalon describes the Fabry-Perot interferometer and the imaging lens.
// Lengths are in millimeters.
type Etalon struct {
	Spacing        float64
	SpacingErr     float64
	FocalLength    float64
	FocalLengthErr float64
	// Order is the interference order at the pattern center.
	Order int
}

func (e Etalon) Validate() error {
	switch {
	case e.Spacing <= 0:
		return &spectrum.InputError{Field: "etalon spacing", Index: -1, Reason: "must be positive"}
	case e.FocalLength <= 0:
		return &spectrum.InputError{Field: "focal length", Index: -1, Reason: "must be positive"}
	case e.Order <= 0:
		return &spectrum.InputError{Field: "interference order", Index: -1, Reason: "must be positive"}
	case e.SpacingErr < 0 || e.FocalLengthErr < 0:
		return &spectrum.InputError{Field: "etalon", Index: -1, Reason: "negative error"}
	}
	return nil
}

// Frequency returns the resonance frequency in Hz for a ring of radius
// r millimeters on the detector: f = n*c / (2*d*cos(r/F)).
func (e Etalon) Frequency(r float64) float64 {
	theta := r / e.FocalLength
	return float64(e.Order) * speedOfLight / (2 * e.Spacing * 1e-3 * math.Cos(theta))
}

// ConvertToFrequency maps a radius-axis spectrum (x in mm) onto a
// frequency axis in GHz relative to the pattern center. The x errors
// are propagated through the etalon relation together with the spacing
// and focal length uncertainties; y values pass through untouched.
func ConvertToFrequency(s spectrum.Spectrum, e Etalon) (spectrum.Spectrum, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if last := s[len(s)-1].X; last/e.FocalLength >= math.Pi/2 {
		return nil, &spectrum.InputError{Field: "spectrum", Index: -1, Reason: "radius exceeds the lens field of view"}
	}

	f0 := e.Frequency(0)
	out := s.Clone()
	for i, p := range s {
		f := e.Frequency(p.X)
		delta := f - f0

		theta := p.X / e.FocalLength
		tan := math.Tan(theta)
		dT := -delta / e.Spacing * e.SpacingErr
		dr := f * tan / e.FocalLength * p.XErr
		dF := -f * tan * p.X / (e.FocalLength * e.FocalLength) * e.FocalLengthErr

		out[i].X = delta / 1e9
		out[i].XErr = math.Sqrt(dT*dT+dr*dr+dF*dF) / 1e9
	}

	// The relation is strictly increasing over the field of view, so
	// the x ordering survives the transform.
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
