// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers.
//
// Purpose:
//   - Small, deterministic fixtures for kernels and validators.
//   - hide{} masks *Dense so the generic At/Set code paths run.

package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/cannon/matrix"
)

// hide wraps any Matrix to hide its concrete type from type assertions,
// forcing the interface fallback of kernels with a *Dense fast path.
type hide struct{ matrix.Matrix }

// mustDense allocates an r×c zero matrix or aborts the test.
func mustDense(t testing.TB, r, c int) *matrix.Dense {
	t.Helper()

	m, err := matrix.NewDense(r, c)
	require.NoError(t, err)

	return m
}

// fromRows builds a Dense from literal rows.
func fromRows(t testing.TB, rows [][]float64) *matrix.Dense {
	t.Helper()

	flat := make([]float64, 0, len(rows)*len(rows[0]))
	for _, r := range rows {
		flat = append(flat, r...)
	}
	m, err := matrix.NewDenseFrom(len(rows), len(rows[0]), flat)
	require.NoError(t, err)

	return m
}

// mustRandom returns a seeded r×c fixture with values in [-1, 1).
func mustRandom(t testing.TB, r, c int, seed int64) *matrix.Dense {
	t.Helper()

	m, err := matrix.NewRandom(r, c, seed)
	require.NoError(t, err)

	return m
}

// toGonum copies m into a gonum Dense.
func toGonum(m *matrix.Dense) *mat.Dense {
	return mat.NewDense(m.Rows(), m.Cols(), m.Values())
}
