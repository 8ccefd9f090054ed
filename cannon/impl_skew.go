// SPDX-License-Identifier: MIT

// Package cannon - initial alignment.
//
// Worker (r, c) of a P×P grid starts with
//
//	A-block (r, (c+r) mod P)    B-block ((r+c) mod P, c)
//
// i.e. block row r of A rotated left by r and block column c of B rotated
// up by c. After the skew the k-index of both local blocks agrees, which is
// what makes every multiply-accumulate of the loop a valid partial product.
package cannon

import (
	"context"

	"github.com/katalvlaran/cannon/grid"
	"github.com/katalvlaran/cannon/matrix"
	"github.com/katalvlaran/cannon/transport"
)

const (
	opSkewedBlocks = "SkewedBlocks"
	opSkew         = "Skew"
)

// SkewedBlocks cuts the post-skew A- and B-blocks of the worker at `at`.
// Both blocks are fresh copies; the inputs are only read.
//
// Errors:
//   - ErrNilMatrix / ErrNonSquare / ErrDimensionMismatch from validation.
//   - ErrBadTopology if g is invalid, `at` is off the grid or P does not divide N.
//
// Complexity: O((N/P)²).
func SkewedBlocks(a, b *matrix.Dense, g grid.Grid, at grid.Coord) (matrix.Block, matrix.Block, error) {
	if err := matrix.ValidateSquareMul(a, b); err != nil {
		return matrix.Block{}, matrix.Block{}, cannonErrorf(opSkewedBlocks, err)
	}
	n := a.Rows()
	if !g.Valid() || !g.Contains(at) || n%g.P() != 0 {
		return matrix.Block{}, matrix.Block{}, cannonErrorf(opSkewedBlocks, ErrBadTopology)
	}

	bs := n / g.P()
	srcA, srcB := g.SkewSources(at)
	blkA, err := a.Block(srcA.Row*bs, srcA.Col*bs, bs)
	if err != nil {
		return matrix.Block{}, matrix.Block{}, cannonErrorf(opSkewedBlocks, err)
	}
	blkB, err := b.Block(srcB.Row*bs, srcB.Col*bs, bs)
	if err != nil {
		return matrix.Block{}, matrix.Block{}, cannonErrorf(opSkewedBlocks, err)
	}

	return blkA, blkB, nil
}

// Skew loads the worker's initial blocks and moves it to MULTIPLY.
// MAIN DESCRIPTION:
//   - Broadcast: every worker cuts its own blocks from a and b (shared, read-only).
//   - PointToPoint: the coordinator cuts the blocks of every rank and sends
//     them with TagScatterA / TagScatterB; other workers receive theirs and
//     may pass nil matrices.
//
// Behavior highlights:
//   - The coordinator sends in rank order and A before B, so it works over
//     rendezvous channels as well as over queued mailboxes, provided the
//     coordinator's Skew runs before the others collect.
//
// Errors:
//   - ErrBadState unless the worker is in SKEW.
//   - Validation errors of SkewedBlocks; transport errors on PointToPoint.
func (w *Worker) Skew(ctx context.Context, a, b *matrix.Dense, dist Distribution) error {
	if w.state != StateSkew {
		return cannonErrorf(opSkew, ErrBadState)
	}

	var err error
	switch dist {
	case Broadcast:
		w.a, w.b, err = SkewedBlocks(a, b, w.topo.Grid, w.topo.At)
	case PointToPoint:
		if w.rank == Coordinator {
			err = w.scatter(ctx, a, b)
		} else {
			err = w.receiveSkew(ctx)
		}
	default:
		err = ErrBadState
	}
	if err != nil {
		return cannonErrorf(opSkew, err)
	}
	if err = matrix.ValidateBlocksConformable(w.a, w.b, w.c); err != nil {
		return cannonErrorf(opSkew, err)
	}
	w.transition(StateMultiply)

	return nil
}

// scatter sends every other rank its skewed blocks and keeps its own.
func (w *Worker) scatter(ctx context.Context, a, b *matrix.Dense) error {
	g := w.topo.Grid
	for rank := 0; rank < g.Size(); rank++ {
		at, err := g.Coord(rank)
		if err != nil {
			return err
		}
		blkA, blkB, err := SkewedBlocks(a, b, g, at)
		if err != nil {
			return err
		}
		if rank == w.rank {
			w.a, w.b = blkA, blkB
			continue
		}
		if err = w.topo.Link.Send(ctx, rank, transport.TagScatterA, blkA); err != nil {
			return err
		}
		if err = w.topo.Link.Send(ctx, rank, transport.TagScatterB, blkB); err != nil {
			return err
		}
	}

	return nil
}

func (w *Worker) receiveSkew(ctx context.Context) error {
	var err error
	if w.a, err = w.topo.Link.Receive(ctx, Coordinator, transport.TagScatterA); err != nil {
		return err
	}
	if w.b, err = w.topo.Link.Receive(ctx, Coordinator, transport.TagScatterB); err != nil {
		return err
	}

	return nil
}
