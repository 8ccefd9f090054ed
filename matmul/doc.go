// SPDX-License-Identifier: MIT

// Package matmul exposes square dense matrix multiplication as task.Task
// implementations: Sequential (the triple-loop reference) and Cannon (the
// distributed product on a worker grid, falling back to the reference when no
// grid fits).
//
// Descriptor layout shared by both tasks:
//
//	inputs:        [A, B]                           float64, row-major
//	input counts:  [rowsA, colsA, rowsB, colsB]
//	outputs:       [C]                              float64, row-major, caller-allocated
//	output counts: [rowsA * colsB]
//
// Validation rejects, without reading any buffer contents:
//   - missing or nil buffers, non-float64 buffers;
//   - colsA != rowsB, non-square A or B;
//   - buffer lengths that disagree with the counts.
package matmul
