package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fringe-analysis/internal/spectrum"
)

func sampleSpectrum(withErrors bool) spectrum.Spectrum {
	s := make(spectrum.Spectrum, 20)
	for i := range s {
		s[i] = spectrum.Point{X: float64(i), Y: float64(i * i)}
		if withErrors {
			s[i].YErr = 1.5
		}
	}
	return s
}

func TestSavePNGWritesFile(t *testing.T) {
	pl := NewPlot("spectrum", "radius (px)", "intensity")
	require.NoError(t, pl.AddSpectrum("data", sampleSpectrum(false)))

	path := filepath.Join(t.TempDir(), "spectrum.png")
	require.NoError(t, pl.SavePNG(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestAddSpectrumWithErrorBars(t *testing.T) {
	pl := NewPlot("spectrum", "x", "y")
	require.NoError(t, pl.AddSpectrum("data", sampleSpectrum(true)))

	path := filepath.Join(t.TempDir(), "bars.png")
	assert.NoError(t, pl.SavePNG(path))
}

func TestAddFitOverlays(t *testing.T) {
	s := sampleSpectrum(false)
	res := &spectrum.FitResult{
		Components: []spectrum.GaussianComponent{
			{Amplitude: 50, Center: 8, Width: 2},
			{Amplitude: 20, Center: 14, Width: 1},
		},
	}

	pl := NewPlot("fit", "x", "y")
	require.NoError(t, pl.AddSpectrum("data", s))
	require.NoError(t, pl.AddFit(s, res))

	path := filepath.Join(t.TempDir(), "fit.png")
	assert.NoError(t, pl.SavePNG(path))
}

func TestAddFitRejectsEmptySpectrum(t *testing.T) {
	pl := NewPlot("fit", "x", "y")
	err := pl.AddFit(nil, &spectrum.FitResult{})
	assert.Error(t, err)
}
