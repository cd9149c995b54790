package spectrum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   Spectrum
		wantErr bool
		reason  string
	}{
		{
			name:  "valid spectrum",
			input: Spectrum{{X: 1, Y: 10}, {X: 2, Y: 20}, {X: 3, Y: 15}},
		},
		{
			name:    "empty spectrum",
			input:   Spectrum{},
			wantErr: true,
			reason:  "no data points",
		},
		{
			name:    "duplicate x",
			input:   Spectrum{{X: 1, Y: 10}, {X: 1, Y: 20}},
			wantErr: true,
			reason:  "x values not strictly increasing",
		},
		{
			name:    "decreasing x",
			input:   Spectrum{{X: 2, Y: 10}, {X: 1, Y: 20}},
			wantErr: true,
			reason:  "x values not strictly increasing",
		},
		{
			name:    "negative y error",
			input:   Spectrum{{X: 1, Y: 10, YErr: -0.5}},
			wantErr: true,
			reason:  "negative error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Equal(t, tt.reason, inputErr.Reason)
		})
	}
}

func TestInputErrorLocation(t *testing.T) {
	// A violation at the first point still names its location.
	err := Spectrum{{X: 1, Y: 10, YErr: -0.5}, {X: 2, Y: 20}}.Validate()
	require.Error(t, err)
	assert.EqualError(t, err, "invalid spectrum at point 0: negative error")

	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, 0, inputErr.Index)

	// Whole-input errors carry no point index.
	err = Spectrum{}.Validate()
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, -1, inputErr.Index)
	assert.EqualError(t, err, "invalid spectrum: no data points")
}

func TestSortThenValidate(t *testing.T) {
	s := Spectrum{{X: 3, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 3}}
	s.Sort()

	require.NoError(t, s.Validate())
	assert.Equal(t, []float64{1, 2, 3}, s.Xs())
	assert.Equal(t, []float64{2, 3, 1}, s.Ys())
}

func TestCrop(t *testing.T) {
	s := Spectrum{{X: 1}, {X: 2}, {X: 3}, {X: 4}, {X: 5}}

	roi := s.Crop(1.5, 4.5)
	require.Len(t, roi, 3)
	assert.Equal(t, []float64{2, 3, 4}, roi.Xs())

	// Bounds are exclusive, matching the original region-of-interest
	// behavior.
	assert.Empty(t, s.Crop(2, 3))
}

func TestWeighted(t *testing.T) {
	assert.True(t, Spectrum{{X: 1, YErr: 0.1}, {X: 2, YErr: 0.2}}.Weighted())
	assert.False(t, Spectrum{{X: 1, YErr: 0.1}, {X: 2, YErr: 0}}.Weighted())
	assert.False(t, Spectrum{}.Weighted())
}

func TestCloneIsIndependent(t *testing.T) {
	s := Spectrum{{X: 1, Y: 10}}
	c := s.Clone()
	c[0].Y = 99

	assert.Equal(t, 10.0, s[0].Y)
}
