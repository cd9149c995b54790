package fitting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fringe-analysis/internal/spectrum"
)

func flatWithDips(n int, level float64, dips map[int]float64) spectrum.Spectrum {
	s := make(spectrum.Spectrum, n)
	for i := range s {
		y := level
		if d, ok := dips[i]; ok {
			y = d
		}
		s[i] = spectrum.Point{X: float64(i), Y: y}
	}
	return s
}

func TestFindTroughsFiltersDepthAndProminence(t *testing.T) {
	s := flatWithDips(31, 10, map[int]float64{
		8:  2,   // deep, prominent
		20: 9.5, // too shallow
	})

	troughs := FindTroughs(s, TroughOptions{MaxY: 9, MinProminence: 2})
	require.Len(t, troughs, 1)

	tr := troughs[0]
	assert.Equal(t, 8, tr.Index)
	assert.Equal(t, 8.0, tr.X)
	assert.Equal(t, 2.0, tr.Depth)
	assert.InDelta(t, 8, tr.Prominence, 1e-9)
	assert.Less(t, tr.LeftBase, tr.Index)
	assert.Greater(t, tr.RightBase, tr.Index)
}

func TestFindTroughsMultipleOrderedByX(t *testing.T) {
	s := flatWithDips(41, 10, map[int]float64{
		10: 3,
		30: 1,
	})

	troughs := FindTroughs(s, TroughOptions{MaxY: 9, MinProminence: 1})
	require.Len(t, troughs, 2)
	assert.Equal(t, 10.0, troughs[0].X)
	assert.Equal(t, 30.0, troughs[1].X)
}

func TestFindTroughsWithoutCeiling(t *testing.T) {
	// An infinite ceiling keeps every prominent minimum, so detection
	// works on raw spectra whose troughs sit far above zero.
	s := flatWithDips(31, 1000, map[int]float64{15: 600})

	troughs := FindTroughs(s, TroughOptions{MaxY: math.Inf(1), MinProminence: 100})
	require.Len(t, troughs, 1)
	assert.Equal(t, 15, troughs[0].Index)
}

func TestFindTroughsIgnoresEdges(t *testing.T) {
	// Monotone data has no interior minimum.
	s := make(spectrum.Spectrum, 10)
	for i := range s {
		s[i] = spectrum.Point{X: float64(i), Y: float64(10 - i)}
	}
	assert.Empty(t, FindTroughs(s, TroughOptions{MaxY: 100, MinProminence: 0}))
}

func TestWindowsBracketDips(t *testing.T) {
	s := flatWithDips(21, 10, map[int]float64{10: 2})

	troughs := FindTroughs(s, TroughOptions{MaxY: 9, MinProminence: 1})
	require.Len(t, troughs, 1)

	windows := Windows(troughs, s)
	require.Len(t, windows, 1)
	assert.Less(t, windows[0].Lo, 10.0)
	assert.Greater(t, windows[0].Hi, 10.0)
}
