package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cannon/matrix"
)

func TestNewBlock(t *testing.T) {
	t.Parallel()

	b, err := matrix.NewBlock(3)
	require.NoError(t, err)
	require.Equal(t, 3, b.Size)
	require.Equal(t, make([]float64, 9), b.Data)

	_, err = matrix.NewBlock(0)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

// TestMulAddBlock_Accumulates runs two steps into the same accumulator.
func TestMulAddBlock_Accumulates(t *testing.T) {
	t.Parallel()

	a := matrix.Block{Size: 2, Data: []float64{1, 2, 3, 4}}
	b := matrix.Block{Size: 2, Data: []float64{5, 6, 7, 8}}
	c, err := matrix.NewBlock(2)
	require.NoError(t, err)

	require.NoError(t, matrix.MulAddBlock(c, a, b))
	require.Equal(t, []float64{19, 22, 43, 50}, c.Data)
	require.NoError(t, matrix.MulAddBlock(c, a, b))
	require.Equal(t, []float64{38, 44, 86, 100}, c.Data)
	require.Equal(t, []float64{1, 2, 3, 4}, a.Data, "operands are read-only")
}

// TestMulAddBlock_NoZeroSkip checks that 0 × Inf still poisons the sum.
func TestMulAddBlock_NoZeroSkip(t *testing.T) {
	t.Parallel()

	a := matrix.Block{Size: 1, Data: []float64{0}}
	b := matrix.Block{Size: 1, Data: []float64{math.Inf(1)}}
	c, _ := matrix.NewBlock(1)
	require.NoError(t, matrix.MulAddBlock(c, a, b))
	require.True(t, math.IsNaN(c.Data[0]))
}

func TestMulAddBlock_Errors(t *testing.T) {
	t.Parallel()

	two, _ := matrix.NewBlock(2)
	three, _ := matrix.NewBlock(3)
	bad := matrix.Block{Size: 2, Data: []float64{1}}

	tests := []struct {
		name    string
		c, a, b matrix.Block
	}{
		{"size differs", two, two, three},
		{"malformed accumulator", bad, two, two},
		{"zero block", matrix.Block{}, two, two},
	}
	for _, tc := range tests {
		require.ErrorIs(t, matrix.MulAddBlock(tc.c, tc.a, tc.b), matrix.ErrBlockSize, tc.name)
	}
}

func TestBlock_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	b := matrix.Block{Size: 1, Data: []float64{3}}
	cp := b.Clone()
	cp.Data[0] = 4
	require.Equal(t, 3.0, b.At(0, 0))
	require.Equal(t, 4.0, cp.At(0, 0))
}
