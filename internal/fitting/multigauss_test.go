package fitting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fringe-analysis/internal/spectrum"
)

func gaussianSpectrum(n int, comps ...spectrum.GaussianComponent) spectrum.Spectrum {
	s := make(spectrum.Spectrum, n)
	for i := range s {
		x := float64(i)
		y := 0.0
		for _, c := range comps {
			y += c.Eval(x)
		}
		s[i] = spectrum.Point{X: x, Y: y}
	}
	return s
}

func TestFitGaussiansRecoversNoiselessPeak(t *testing.T) {
	truth := spectrum.GaussianComponent{Amplitude: 100, Center: 25, Width: 3}
	s := gaussianSpectrum(51, truth)

	res, err := FitGaussians(s, []spectrum.GaussianComponent{
		{Amplitude: 90, Center: 24, Width: 3.5},
	}, FitOptions{})
	require.NoError(t, err)
	require.Len(t, res.Components, 1)

	got := res.Components[0]
	assert.InDelta(t, truth.Amplitude, got.Amplitude, 1e-3)
	assert.InDelta(t, truth.Center, got.Center, 1e-3)
	assert.InDelta(t, truth.Width, got.Width, 1e-3)

	assert.True(t, res.Converged)
	assert.InDelta(t, 0, res.ChiSquare, 1e-9)

	// Noise-free data pins the parameters down exactly.
	for _, e := range res.StdErrs {
		assert.InDelta(t, 0, e.Amplitude, 1e-3)
		assert.InDelta(t, 0, e.Center, 1e-3)
		assert.InDelta(t, 0, e.Width, 1e-3)
	}
}

func TestFitGaussiansTwoDips(t *testing.T) {
	// Baseline-corrected fringe dips are negative-amplitude Gaussians.
	a := spectrum.GaussianComponent{Amplitude: -80, Center: 15, Width: 2}
	b := spectrum.GaussianComponent{Amplitude: -40, Center: 35, Width: 3}
	s := gaussianSpectrum(51, a, b)

	res, err := FitGaussians(s, []spectrum.GaussianComponent{
		{Amplitude: -70, Center: 14, Width: 2.5},
		{Amplitude: -30, Center: 36, Width: 2.5},
	}, FitOptions{})
	require.NoError(t, err)
	require.Len(t, res.Components, 2)

	assert.InDelta(t, a.Center, res.Components[0].Center, 1e-2)
	assert.InDelta(t, b.Center, res.Components[1].Center, 1e-2)
	assert.True(t, res.Converged)
	assert.Equal(t, 51-6, res.DegreesOfFreedom)
}

func TestFitGaussiansInputValidation(t *testing.T) {
	s := gaussianSpectrum(20, spectrum.GaussianComponent{Amplitude: 1, Center: 10, Width: 2})

	_, err := FitGaussians(s, nil, FitOptions{})
	var inputErr *spectrum.InputError
	assert.ErrorAs(t, err, &inputErr)

	_, err = FitGaussians(s, []spectrum.GaussianComponent{
		{Amplitude: 1, Center: 10, Width: 0},
	}, FitOptions{})
	assert.ErrorAs(t, err, &inputErr)
}

func TestFitGaussiansUnderdetermined(t *testing.T) {
	s := gaussianSpectrum(5, spectrum.GaussianComponent{Amplitude: 1, Center: 2, Width: 1})

	_, err := FitGaussians(s, []spectrum.GaussianComponent{
		{Amplitude: 1, Center: 1, Width: 1},
		{Amplitude: 1, Center: 3, Width: 1},
	}, FitOptions{})
	var udErr *spectrum.UnderdeterminedError
	require.ErrorAs(t, err, &udErr)
	assert.Equal(t, 5, udErr.Points)
	assert.Equal(t, 6, udErr.Params)
}

func TestFitGaussiansIterationCap(t *testing.T) {
	truth := spectrum.GaussianComponent{Amplitude: 100, Center: 25, Width: 3}
	s := gaussianSpectrum(51, truth)

	res, err := FitGaussians(s, []spectrum.GaussianComponent{
		{Amplitude: 10, Center: 10, Width: 1},
	}, FitOptions{MaxIterations: 1})
	if err != nil {
		var degErr *spectrum.DegenerateFitError
		require.ErrorAs(t, err, &degErr)
	}
	require.NotNil(t, res)

	assert.False(t, res.Converged)
	for _, c := range res.Components {
		assert.False(t, math.IsNaN(c.Amplitude))
		assert.False(t, math.IsNaN(c.Center))
		assert.False(t, math.IsNaN(c.Width))
	}
}

func TestFitGaussiansDuplicateGuesses(t *testing.T) {
	truth := spectrum.GaussianComponent{Amplitude: 100, Center: 25, Width: 3}
	s := gaussianSpectrum(51, truth)

	dup := spectrum.GaussianComponent{Amplitude: 50, Center: 25, Width: 3}
	res, err := FitGaussians(s, []spectrum.GaussianComponent{dup, dup}, FitOptions{})
	require.NotNil(t, res)

	if err != nil {
		var degErr *spectrum.DegenerateFitError
		require.ErrorAs(t, err, &degErr)
		assert.True(t, res.Degenerate())
	} else if res.Degenerate() {
		assert.True(t, res.Degenerate())
	} else {
		// The solver split the duplicates; the components must differ.
		c0, c1 := res.Components[0], res.Components[1]
		distinct := math.Abs(c0.Amplitude-c1.Amplitude) > 1e-9 ||
			math.Abs(c0.Center-c1.Center) > 1e-9 ||
			math.Abs(c0.Width-c1.Width) > 1e-9
		assert.True(t, distinct)
	}
}

func TestFitGaussiansBoundsValidation(t *testing.T) {
	s := gaussianSpectrum(20, spectrum.GaussianComponent{Amplitude: 10, Center: 10, Width: 2})
	guess := []spectrum.GaussianComponent{{Amplitude: 9, Center: 10, Width: 2}}

	_, err := FitGaussians(s, guess, FitOptions{Bounds: []Bound{{Lo: 0, Hi: 1}}})
	assert.Error(t, err, "bound count must match parameter count")

	inf := math.Inf(1)
	_, err = FitGaussians(s, guess, FitOptions{Bounds: []Bound{
		{Lo: 0, Hi: inf}, {Lo: 5, Hi: 5}, {Lo: 0, Hi: inf},
	}})
	assert.Error(t, err, "empty bound interval")

	_, err = FitGaussians(s, guess, FitOptions{Bounds: []Bound{
		{Lo: 20, Hi: inf}, {Lo: -inf, Hi: inf}, {Lo: 0, Hi: inf},
	}})
	assert.Error(t, err, "guess outside bounds")
}

func TestFitGaussiansWithBounds(t *testing.T) {
	truth := spectrum.GaussianComponent{Amplitude: 100, Center: 25, Width: 3}
	s := gaussianSpectrum(51, truth)

	inf := math.Inf(1)
	res, err := FitGaussians(s, []spectrum.GaussianComponent{
		{Amplitude: 80, Center: 23, Width: 2.5},
	}, FitOptions{Bounds: []Bound{
		{Lo: 0, Hi: 200},
		{Lo: 20, Hi: 30},
		{Lo: 0.1, Hi: inf},
	}})
	require.NoError(t, err)

	got := res.Components[0]
	assert.InDelta(t, truth.Amplitude, got.Amplitude, 0.1)
	assert.InDelta(t, truth.Center, got.Center, 0.1)
	assert.InDelta(t, truth.Width, got.Width, 0.1)
}

func TestFitGaussiansWeighted(t *testing.T) {
	truth := spectrum.GaussianComponent{Amplitude: 100, Center: 25, Width: 3}
	s := gaussianSpectrum(51, truth)
	for i := range s {
		s[i].YErr = 0.5
	}

	res, err := FitGaussians(s, []spectrum.GaussianComponent{
		{Amplitude: 90, Center: 24, Width: 3.5},
	}, FitOptions{})
	require.NoError(t, err)

	assert.InDelta(t, truth.Center, res.Components[0].Center, 1e-3)
	for _, e := range res.StdErrs {
		assert.False(t, math.IsNaN(e.Amplitude))
		assert.Positive(t, e.Center)
	}
}
