// SPDX-License-Identifier: MIT

package matmul

import (
	"fmt"

	"github.com/katalvlaran/cannon/matrix"
	"github.com/katalvlaran/cannon/task"
)

// shape is the validated view of a descriptor.
type shape struct {
	rowsA, colsA, rowsB, colsB int
	a, b, c                    []float64
}

// validateData checks the descriptor and returns its typed view.
// Errors: matrix.ErrNilMatrix, matrix.ErrDimensionMismatch, matrix.ErrNonSquare,
// task.ErrBufferKind.
func validateData(d *task.Data) (shape, error) {
	if d == nil {
		return shape{}, matrix.ErrNilMatrix
	}
	ins, outs := d.GetInputs(), d.GetOutputs()
	counts, outCounts := d.GetInputCounts(), d.GetOutputCounts()
	if len(ins) != 2 || len(outs) != 1 || len(counts) != 4 || len(outCounts) != 1 {
		return shape{}, fmt.Errorf("descriptor arity: %w", matrix.ErrDimensionMismatch)
	}
	for _, buf := range append(append([]task.Buffer{}, ins...), outs...) {
		if buf.IsNil() {
			return shape{}, matrix.ErrNilMatrix
		}
		if buf.Kind() != task.KindFloat64 {
			return shape{}, fmt.Errorf("buffer of %s: %w", buf.Kind(), task.ErrBufferKind)
		}
	}

	s := shape{rowsA: counts[0], colsA: counts[1], rowsB: counts[2], colsB: counts[3]}
	switch {
	case s.rowsA <= 0 || s.colsA <= 0 || s.rowsB <= 0 || s.colsB <= 0:
		return shape{}, matrix.ErrInvalidDimensions
	case s.colsA != s.rowsB:
		return shape{}, fmt.Errorf("colsA=%d rowsB=%d: %w", s.colsA, s.rowsB, matrix.ErrDimensionMismatch)
	case s.rowsA != s.colsA || s.rowsB != s.colsB:
		return shape{}, matrix.ErrNonSquare
	case outCounts[0] != s.rowsA*s.colsB:
		return shape{}, fmt.Errorf("output count %d: %w", outCounts[0], matrix.ErrDimensionMismatch)
	}

	s.a, _ = ins[0].Float64()
	s.b, _ = ins[1].Float64()
	s.c, _ = outs[0].Float64()
	if len(s.a) != s.rowsA*s.colsA || len(s.b) != s.rowsB*s.colsB || len(s.c) != outCounts[0] {
		return shape{}, fmt.Errorf("buffer lengths: %w", matrix.ErrDimensionMismatch)
	}

	return s, nil
}
