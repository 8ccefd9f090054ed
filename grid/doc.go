// SPDX-License-Identifier: MIT

// Package grid describes the logical P×P process torus used by the Cannon
// multiplication and the Block Partitioner that chooses P.
//
// Workers are addressed by a linear rank and a (row, col) coordinate with
// rank = row*P + col. Neighbour lookups wrap around in both directions:
//
//	(0,0)─(0,1)─(0,2)─┐
//	  │     │     │   │   Left/Right wrap along a row,
//	(1,0)─(1,1)─(1,2)─┤   Up/Down wrap along a column.
//	  │     │     │   │
//	(2,0)─(2,1)─(2,2)─┘
//
// Partition picks the largest P ≤ floor(sqrt(workers)) with N % P == 0. When
// no P > 1 qualifies the returned Plan carries Fallback=true: the caller is
// expected to run the sequential reference instead. A fallback is a policy
// branch, not an error.
package grid
