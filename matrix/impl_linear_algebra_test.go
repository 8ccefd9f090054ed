// SPDX-License-Identifier: MIT
// Package matrix_test exercises Mul, LU and Inverse against gonum.
package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/cannon/matrix"
)

func TestMul_Small(t *testing.T) {
	t.Parallel()

	a := fromRows(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	b := fromRows(t, [][]float64{{7, 8}, {9, 10}, {11, 12}})
	got, err := matrix.Mul(a, b)
	require.NoError(t, err)
	require.Equal(t, 2, got.Rows())
	require.Equal(t, 2, got.Cols())
	require.Equal(t, []float64{58, 64, 139, 154}, got.(*matrix.Dense).Values())
}

// TestMul_MatchesGonum compares against gonum's BLAS-backed product.
func TestMul_MatchesGonum(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 4, 9, 17} {
		a := mustRandom(t, n, n, int64(n))
		b := mustRandom(t, n, n, int64(n)+100)
		got, err := matrix.Mul(a, b)
		require.NoError(t, err)

		var want mat.Dense
		want.Mul(toGonum(a), toGonum(b))
		require.InDeltaSlice(t, want.RawMatrix().Data, got.(*matrix.Dense).Values(), 1e-12, "n=%d", n)
	}
}

// TestMul_GenericPathIsBitIdentical hides *Dense so the At-based loop runs.
func TestMul_GenericPathIsBitIdentical(t *testing.T) {
	t.Parallel()

	a := mustRandom(t, 6, 6, 1)
	b := mustRandom(t, 6, 6, 2)
	fast, err := matrix.Mul(a, b)
	require.NoError(t, err)
	slow, err := matrix.Mul(hide{a}, hide{b})
	require.NoError(t, err)
	require.Equal(t, fast.(*matrix.Dense).Values(), slow.(*matrix.Dense).Values())
}

func TestMul_PropagatesNonFinite(t *testing.T) {
	t.Parallel()

	a, err := matrix.NewDenseFrom(1, 2, []float64{0, 1}, matrix.WithNoValidateNaNInf())
	require.NoError(t, err)
	b, err := matrix.NewDenseFrom(2, 1, []float64{math.Inf(1), 2}, matrix.WithNoValidateNaNInf())
	require.NoError(t, err)
	got, err := matrix.Mul(a, b)
	require.NoError(t, err)
	v, err := got.At(0, 0)
	require.NoError(t, err)
	require.True(t, math.IsNaN(v), "0*Inf must not be skipped")
}

func TestMul_Errors(t *testing.T) {
	t.Parallel()

	a := mustDense(t, 2, 3)
	_, err := matrix.Mul(a, mustDense(t, 2, 3))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.Mul(nil, a)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
	var typedNil *matrix.Dense
	_, err = matrix.Mul(a, typedNil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestLU_Reconstructs(t *testing.T) {
	t.Parallel()

	m := fromRows(t, [][]float64{{4, 3, 2}, {2, 5, 1}, {1, 2, 6}})
	L, U, err := matrix.LU(m)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		d, _ := L.At(i, i)
		require.Equal(t, 1.0, d)
		for j := i + 1; j < 3; j++ {
			up, _ := L.At(i, j)
			low, _ := U.At(j, i)
			require.Zero(t, up)
			require.Zero(t, low)
		}
	}
	prod, err := matrix.Mul(L, U)
	require.NoError(t, err)
	ok, err := matrix.AllClose(prod, m, 1e-12, 1e-12)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestInverse(t *testing.T) {
	t.Parallel()

	m := fromRows(t, [][]float64{{4, 7}, {2, 6}})
	inv, err := matrix.Inverse(m)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0.6, -0.7, -0.2, 0.4}, inv.Values(), 1e-12)

	id, err := matrix.NewIdentity(2)
	require.NoError(t, err)
	prod, err := matrix.Mul(m, inv)
	require.NoError(t, err)
	ok, err := matrix.Equal(prod, id)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestInverse_Errors(t *testing.T) {
	t.Parallel()

	_, err := matrix.Inverse(fromRows(t, [][]float64{{0, 1}, {1, 0}}))
	require.ErrorIs(t, err, matrix.ErrSingular, "zero leading pivot")
	_, err = matrix.Inverse(mustDense(t, 2, 3))
	require.ErrorIs(t, err, matrix.ErrNonSquare)
	_, _, err = matrix.LU(nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}
