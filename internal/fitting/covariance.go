package fitting

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Singular values below this fraction of the largest are treated as
// zero when inverting the normal equations.
const condCutoff = 1e-10

// nullSpaceTol decides whether a parameter participates in a discarded
// singular direction.
const nullSpaceTol = 1e-7

// standardErrors derives per-parameter standard errors from the
// weighted residual Jacobian at the solution, using the SVD
// pseudo-inverse of J to form the diagonal of (JᵀJ)⁻¹. scale multiplies
// the covariance diagonal; unweighted fits pass chi2/dof, weighted fits
// pass 1. Parameters with components in the null space get NaN standard
// errors and their indices are returned.
func standardErrors(jac *mat.Dense, scale float64) ([]float64, []int) {
	_, p := jac.Dims()
	errs := make([]float64, p)

	var svd mat.SVD
	if ok := svd.Factorize(jac, mat.SVDThin); !ok {
		degenerate := make([]int, p)
		for j := range errs {
			errs[j] = math.NaN()
			degenerate[j] = j
		}
		return errs, degenerate
	}

	values := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	cutoff := condCutoff * values[0]
	inNullSpace := make([]bool, p)
	for k, sv := range values {
		if sv > cutoff {
			continue
		}
		for j := 0; j < p; j++ {
			if math.Abs(v.At(j, k)) > nullSpaceTol {
				inNullSpace[j] = true
			}
		}
	}

	var degenerate []int
	for j := 0; j < p; j++ {
		if inNullSpace[j] {
			errs[j] = math.NaN()
			degenerate = append(degenerate, j)
			continue
		}
		sum := 0.0
		for k, sv := range values {
			if sv <= cutoff {
				continue
			}
			r := v.At(j, k) / sv
			sum += r * r
		}
		errs[j] = math.Sqrt(sum * scale)
	}
	return errs, degenerate
}

// numericJacobian evaluates a forward-difference Jacobian of f at
// params. f fills a residual vector of length size.
func numericJacobian(f func(dst, x []float64), size int, params []float64) *mat.Dense {
	p := len(params)
	jac := mat.NewDense(size, p, nil)

	r0 := make([]float64, size)
	f(r0, params)

	shifted := make([]float64, p)
	r1 := make([]float64, size)
	for j := 0; j < p; j++ {
		h := 1e-6 * math.Max(1, math.Abs(params[j]))
		copy(shifted, params)
		shifted[j] += h
		f(r1, shifted)
		for i := 0; i < size; i++ {
			jac.Set(i, j, (r1[i]-r0[i])/h)
		}
	}
	return jac
}

// gradientSupNorm returns the infinity norm of Jᵀr for the residual
// vector of f at params.
func gradientSupNorm(f func(dst, x []float64), size int, params []float64) float64 {
	jac := numericJacobian(f, size, params)
	r := make([]float64, size)
	f(r, params)

	norm := 0.0
	for j := 0; j < len(params); j++ {
		g := 0.0
		for i := 0; i < size; i++ {
			g += jac.At(i, j) * r[i]
		}
		if a := math.Abs(g); a > norm {
			norm = a
		}
	}
	return norm
}
