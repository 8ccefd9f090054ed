// SPDX-License-Identifier: MIT

// Package cannon multiplies two N×N matrices on a P×P torus of workers with
// Cannon's algorithm.
//
// What it does:
//   - Partition: grid.Partition picks P (largest P ≤ √workers dividing N).
//     When no P > 1 exists the product is computed by matrix.Mul instead,
//     so the fallback result is bit-for-bit the sequential reference.
//   - Skew: worker (r, c) starts with A-block (r, (c+r) mod P) and
//     B-block ((r+c) mod P, c), read locally (Broadcast) or sent by the
//     coordinator (PointToPoint).
//   - Loop: P multiply-accumulate steps; between two steps every A-block moves
//     one position left and every B-block one position up. No shift follows
//     the last step.
//   - Gather: the coordinator (rank 0) places every C-block at
//     (r*N/P, c*N/P) of the output.
//
// Each Worker is an explicit state machine:
//
//	SKEW → MULTIPLY → SHIFT_A → SHIFT_B → MULTIPLY → … → MULTIPLY → DONE
//
// and talks to its peers only through the transport.Transport carried in its
// Topology; there is no package-level communicator.
//
// Drivers:
//   - Multiply: one goroutine per worker over any transport.Network
//     (in-process channels by default, a gRPC mesh on request).
//   - Simulate: a single goroutine advancing all workers phase by phase over a
//     transport.MailboxNetwork; handy for tracing and for tests.
//
// Communication stalls are fatal and are not retried. Callers that need an
// upper bound pass a context with a deadline.
package cannon
