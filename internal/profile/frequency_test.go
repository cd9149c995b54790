package profile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fringe-analysis/internal/spectrum"
)

func benchEtalon() Etalon {
	return Etalon{
		Spacing:        4,
		SpacingErr:     0.01,
		FocalLength:    200,
		FocalLengthErr: 0.5,
		Order:          14646,
	}
}

func TestEtalonValidate(t *testing.T) {
	require.NoError(t, benchEtalon().Validate())

	bad := benchEtalon()
	bad.Spacing = 0
	assert.Error(t, bad.Validate())

	bad = benchEtalon()
	bad.Order = -1
	assert.Error(t, bad.Validate())

	bad = benchEtalon()
	bad.FocalLengthErr = -0.5
	assert.Error(t, bad.Validate())
}

func TestFrequencyClosedForm(t *testing.T) {
	e := benchEtalon()

	// At the pattern center the relation reduces to n*c/(2d).
	f0 := float64(e.Order) * 299792458.0 / (2 * 0.004)
	assert.InEpsilon(t, f0, e.Frequency(0), 1e-12)

	// Off axis the frequency picks up the 1/cos(r/F) factor.
	assert.InEpsilon(t, f0/math.Cos(2.0/200.0), e.Frequency(2), 1e-12)
}

func TestConvertToFrequency(t *testing.T) {
	e := benchEtalon()
	s := spectrum.Spectrum{
		{X: 0, Y: 100},
		{X: 1, XErr: 0.003, Y: 90},
		{X: 2, XErr: 0.003, Y: 80},
		{X: 4, XErr: 0.003, Y: 70},
	}

	out, err := ConvertToFrequency(s, e)
	require.NoError(t, err)
	require.Len(t, out, 4)

	// Center maps to zero; off-axis points map to the closed-form
	// frequency offset in GHz, monotone in radius.
	assert.Zero(t, out[0].X)
	f0 := e.Frequency(0)
	for i, p := range s[1:] {
		want := (e.Frequency(p.X) - f0) / 1e9
		assert.InEpsilon(t, want, out[i+1].X, 1e-12)
		assert.Greater(t, out[i+1].X, out[i].X)
	}

	// Propagated uncertainties are positive off axis and the y column
	// is untouched.
	for i, p := range out {
		if i > 0 {
			assert.Positive(t, p.XErr)
		}
		assert.Equal(t, s[i].Y, p.Y)
	}
}

func TestConvertToFrequencyRejectsWideField(t *testing.T) {
	e := benchEtalon()
	s := spectrum.Spectrum{{X: 0, Y: 1}, {X: 400, Y: 1}}

	_, err := ConvertToFrequency(s, e)
	require.Error(t, err)
	var inputErr *spectrum.InputError
	assert.ErrorAs(t, err, &inputErr)
}
