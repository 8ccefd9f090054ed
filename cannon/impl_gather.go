// SPDX-License-Identifier: MIT

package cannon

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/katalvlaran/cannon/matrix"
	"github.com/katalvlaran/cannon/transport"
)

const opGather = "Gather"

// Gather collects the finished C-blocks at the coordinator.
// MAIN DESCRIPTION:
//   - Non-coordinators send their C-block to rank 0 with TagGather and return (nil, nil).
//   - The coordinator allocates the n×n output, places its own block, then
//     receives the blocks of ranks 1..P²-1 in rank order and writes block
//     (r, c) at (r*n/P, c*n/P), one contiguous row of the tile at a time.
//
// Behavior highlights:
//   - The output keeps IEEE semantics: overflowed or NaN entries are stored as is.
//   - Only the coordinator's result is populated.
//
// Errors:
//   - ErrNotDone when w has not reached DONE.
//   - ErrBadTopology when n differs from the worker's matrix side.
//   - Transport errors; ErrBlockSize for a tile of the wrong size.
//
// Complexity: O(n²) at the coordinator.
func Gather(ctx context.Context, w *Worker, n int) (*matrix.Dense, error) {
	c, err := w.Result()
	if err != nil {
		return nil, cannonErrorf(opGather, err)
	}
	if n != w.n {
		return nil, cannonErrorf(opGather, ErrBadTopology)
	}

	if w.rank != Coordinator {
		if err = w.topo.Link.Send(ctx, Coordinator, transport.TagGather, c); err != nil {
			return nil, cannonErrorf(opGather, err)
		}

		return nil, nil
	}

	out, err := matrix.NewDenseFrom(n, n, make([]float64, n*n), matrix.WithNoValidateNaNInf())
	if err != nil {
		return nil, cannonErrorf(opGather, err)
	}
	g := w.topo.Grid
	for rank := 0; rank < g.Size(); rank++ {
		at, err := g.Coord(rank)
		if err != nil {
			return nil, cannonErrorf(opGather, err)
		}
		tile := c
		if rank != Coordinator {
			if tile, err = w.topo.Link.Receive(ctx, rank, transport.TagGather); err != nil {
				return nil, cannonErrorf(opGather, err)
			}
		}
		if tile.Size != w.bs {
			return nil, cannonErrorf(opGather, matrix.ErrBlockSize)
		}
		if err = out.SetBlock(at.Row*w.bs, at.Col*w.bs, tile); err != nil {
			return nil, cannonErrorf(opGather, err)
		}
	}
	klog.V(2).InfoS("gather complete", "n", n, "grid", g.String(), "blocks", g.Size())

	return out, nil
}
