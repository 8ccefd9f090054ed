// SPDX-License-Identifier: MIT
// Package matrix - public API facades.
//
// Purpose:
//   - Provide thin, well-documented entry points for fixtures and comparisons.
//   - No logic duplication: each facade delegates to the canonical implementation.
//
// AI-Hints:
//   - Prefer passing *Dense to unlock fast-paths in kernels (flat-slice loops).
//   - Use NewIdentity/NewZeros to build matrices with explicit shape and neutral elements.

package matrix

import "math/rand"

// NewZeros returns a new zero-initialized *Dense of size rows×cols.
// It is a thin alias of NewDense with an intention-revealing name.
func NewZeros(rows, cols int) (*Dense, error) {
	return NewDense(rows, cols)
}

// NewIdentity returns I_n (n×n identity; ones on the diagonal, zeros elsewhere).
// Complexity: O(n^2) zeroing (constructor) + O(n) writes on the diagonal.
func NewIdentity(n int) (*Dense, error) {
	I, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ { // fixed i order guarantees reproducibility
		I.data[i*n+i] = 1.0
	}

	return I, nil
}

// NewRandom returns an rows×cols matrix filled with uniform values in [-1, 1)
// drawn from a source seeded with seed. Equal seeds give equal matrices.
// Complexity: O(r*c).
func NewRandom(rows, cols int, seed int64) (*Dense, error) {
	m, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	if err = m.Apply(func(_, _ int, _ float64) float64 { return rng.Float64()*2 - 1 }); err != nil {
		return nil, err
	}

	return m, nil
}

// Product is an intention-revealing alias of Mul (the sequential reference).
func Product(a, b Matrix) (Matrix, error) { return Mul(a, b) }

// AllClose reports |a-b| ≤ atol + rtol*|b| element-wise for identical shapes.
// Errors: ErrNilMatrix, ErrDimensionMismatch, ErrNaNInf (bad tolerance).
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) { return ewAllClose(a, b, rtol, atol) }

// Equal is AllClose with tolerances taken from options
// (DefaultRelTolerance / DefaultEpsilon unless overridden).
func Equal(a, b Matrix, opts ...Option) (bool, error) {
	o := gatherOptions(opts...)

	return ewAllClose(a, b, o.rtol, o.eps)
}

// ToDense returns m itself when it already is a *Dense, otherwise a Dense copy
// read element by element. The copy keeps non-finite values as they are.
// Errors: ErrNilMatrix, plus whatever m.At reports.
func ToDense(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, err
	}

	return asDense(m)
}
