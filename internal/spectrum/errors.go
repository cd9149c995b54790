package spectrum

import (
	"fmt"
	"strings"
)

// InputError reports malformed input: a bad image, an out-of-bounds
// center, or a spectrum that violates its invariants. Index locates the
// offending entry, or is -1 when the error concerns the input as a
// whole.
type InputError struct {
	Field  string
	Index  int
	Reason string
}

func (e *InputError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid %s at point %d: %s", e.Field, e.Index, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnderdeterminedError reports a fit with fewer usable data points than
// free parameters. It applies to both the baseline and the Gaussian fit.
type UnderdeterminedError struct {
	Points int
	Params int
}

func (e *UnderdeterminedError) Error() string {
	return fmt.Sprintf("underdetermined fit: %d data points for %d free parameters", e.Points, e.Params)
}

// DegenerateFitError records which parameters have undefined standard
// errors because the Jacobian was rank deficient at the solution. The
// fit result itself is still returned; this error only describes the
// affected uncertainty estimates.
type DegenerateFitError struct {
	Params []int
}

func (e *DegenerateFitError) Error() string {
	names := make([]string, len(e.Params))
	for i, p := range e.Params {
		names[i] = parameterName(p)
	}
	return fmt.Sprintf("singular covariance: standard errors undefined for %s", strings.Join(names, ", "))
}

func parameterName(idx int) string {
	component := idx/3 + 1
	switch idx % 3 {
	case 0:
		return fmt.Sprintf("amplitude %d", component)
	case 1:
		return fmt.Sprintf("center %d", component)
	default:
		return fmt.Sprintf("width %d", component)
	}
}
