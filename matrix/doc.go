// SPDX-License-Identifier: MIT

// Package matrix provides the dense linear-algebra primitives shared by the
// sequential and the distributed (Cannon) multiplication paths.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix with bounds-checked At/Set and a
//     numeric policy (optional NaN/Inf rejection).
//   - Block, a square N/P × N/P tile with extract (Dense.Block), place
//     (Dense.SetBlock) and a multiply-accumulate kernel (MulAddBlock).
//   - Mul, the sequential reference product (direct triple loop, left-to-right
//     summation). It is both the fallback when no process grid can be formed and
//     the ground truth used by tests.
//   - Inverse/LU (Doolittle, no pivoting), NewIdentity, NewRandom and AllClose
//     as fixtures and comparison helpers.
//
// All kernels use fixed loop orders so identical inputs always produce
// identical bits.
package matrix
