package profile

import (
	"math"

	"fringe-analysis/internal/spectrum"
)

// Mode selects how pixel intensities within a radial bin are combined.
type Mode int

const (
	// Mean reports the average intensity per bin. The default.
	Mean Mode = iota
	// Sum reports the accumulated intensity per bin.
	Sum
)

// ExtractOptions controls the radial binning.
type ExtractOptions struct {
	// BinWidth in pixels; 0 means 1.
	BinWidth float64
	Mode     Mode
	// MaxRadius caps the profile; 0 means every pixel contributes.
	MaxRadius float64
}

// Bin is one radial bin. Radius is the bin center.
type Bin struct {
	Radius    float64
	Intensity float64
	Count     int
}

// RadialProfile is the binned profile ordered by increasing radius.
// Bins that received no pixels are absent.
type RadialProfile []Bin

// Extract bins every pixel by its Euclidean distance from the center.
// Bin index is floor(dist/binWidth).
func Extract(im *Image, c Center, opts ExtractOptions) (RadialProfile, error) {
	if !c.inside(im) {
		return nil, &spectrum.InputError{Field: "center", Index: -1, Reason: "outside image bounds"}
	}
	binWidth := opts.BinWidth
	if binWidth < 0 {
		return nil, &spectrum.InputError{Field: "bin width", Index: -1, Reason: "must be positive"}
	}
	if binWidth == 0 {
		binWidth = 1
	}

	corner := math.Hypot(
		math.Max(c.X, float64(im.width-1)-c.X),
		math.Max(c.Y, float64(im.height-1)-c.Y),
	)
	maxR := corner
	if opts.MaxRadius > 0 && opts.MaxRadius < maxR {
		maxR = opts.MaxRadius
	}

	nBins := int(maxR/binWidth) + 1
	sums := make([]float64, nBins)
	counts := make([]int, nBins)

	for y := 0; y < im.height; y++ {
		dy := float64(y) - c.Y
		for x := 0; x < im.width; x++ {
			dx := float64(x) - c.X
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist > maxR {
				continue
			}
			bin := int(dist / binWidth)
			sums[bin] += im.At(x, y)
			counts[bin]++
		}
	}

	out := make(RadialProfile, 0, nBins)
	for i := 0; i < nBins; i++ {
		if counts[i] == 0 {
			continue
		}
		v := sums[i]
		if opts.Mode == Mean {
			v /= float64(counts[i])
		}
		out = append(out, Bin{
			Radius:    (float64(i) + 0.5) * binWidth,
			Intensity: v,
			Count:     counts[i],
		})
	}
	if len(out) == 0 {
		return nil, &spectrum.InputError{Field: "profile", Index: -1, Reason: "no pixels within max radius"}
	}
	return out, nil
}

// Peak returns the bin with the highest intensity.
func (p RadialProfile) Peak() Bin {
	best := p[0]
	for _, b := range p[1:] {
		if b.Intensity > best.Intensity {
			best = b
		}
	}
	return best
}

// Normalize rescales the profile so its peak intensity equals max.
// Applying it twice with the same max is a no-op.
func Normalize(p RadialProfile, max float64) (RadialProfile, error) {
	if len(p) == 0 {
		return nil, &spectrum.InputError{Field: "profile", Index: -1, Reason: "no data points"}
	}
	if max <= 0 {
		return nil, &spectrum.InputError{Field: "normalization maximum", Index: -1, Reason: "must be positive"}
	}
	peak := p.Peak().Intensity
	if peak <= 0 {
		return nil, &spectrum.InputError{Field: "profile", Index: -1, Reason: "peak intensity not positive"}
	}

	scale := max / peak
	out := make(RadialProfile, len(p))
	for i, b := range p {
		b.Intensity *= scale
		out[i] = b
	}
	return out, nil
}

// ToSpectrum converts the profile to the shared spectrum form. The x
// axis stays in bin-radius units; xErr and yErr are applied uniformly,
// 0 meaning unknown.
func (p RadialProfile) ToSpectrum(xErr, yErr float64) spectrum.Spectrum {
	out := make(spectrum.Spectrum, len(p))
	for i, b := range p {
		out[i] = spectrum.Point{X: b.Radius, XErr: xErr, Y: b.Intensity, YErr: yErr}
	}
	return out
}

// Scale multiplies the x axis, converting bin radii in pixels to
// physical units. Errors scale with the values.
func Scale(s spectrum.Spectrum, factor float64) spectrum.Spectrum {
	out := s.Clone()
	for i := range out {
		out[i].X *= factor
		out[i].XErr *= factor
	}
	return out
}

// SquareAxis maps x onto x². The etalon dispersion is nearly linear in
// radius squared, so baselines are often fitted on this axis. Errors
// propagate as 2|x|·x_err.
func SquareAxis(s spectrum.Spectrum) spectrum.Spectrum {
	out := s.Clone()
	for i := range out {
		out[i].XErr = 2 * math.Abs(out[i].X) * out[i].XErr
		out[i].X = out[i].X * out[i].X
	}
	return out
}
