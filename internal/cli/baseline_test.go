package cli

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaselineMaxYDefaultsOpen(t *testing.T) {
	// --auto on raw data must see troughs even when y never drops
	// below zero, so the default ceiling is open.
	cmd := NewBaselineCommand()
	v, err := cmd.Flags().GetFloat64("max-y")
	require.NoError(t, err)
	assert.True(t, math.IsInf(v, 1))
}
