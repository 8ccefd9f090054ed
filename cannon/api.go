// SPDX-License-Identifier: MIT

// Package cannon - drivers.
//
// Multiply is the concurrent entry point: one goroutine per worker, blocking
// transport. Simulate runs the same workers in one goroutine over queued
// mailboxes, advancing them phase by phase.
package cannon

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/katalvlaran/cannon/grid"
	"github.com/katalvlaran/cannon/matrix"
	"github.com/katalvlaran/cannon/transport"
)

const (
	opMultiply = "Multiply"
	opSimulate = "Simulate"
)

// Multiply computes a × b for square a and b of equal side N.
// MAIN DESCRIPTION:
//   - Stage 1: validate the operands (nil, square, conformable).
//   - Stage 2: grid.Partition(N, workers). On fallback return matrix.Mul(a, b),
//     which is bit-identical to the sequential reference for any worker count.
//   - Stage 3: build a network of P² ranks and start one goroutine per rank:
//     NewWorker → Skew → Run → Gather.
//   - Stage 4: return the coordinator's assembled result.
//
// Behavior highlights:
//   - Workers beyond P² stay idle.
//   - The first worker error cancels the context shared by the others so the
//     collective unwinds instead of hanging; the error is returned.
//   - There is no built-in timeout; a stalled peer blocks until ctx is done.
//
// Errors:
//   - matrix.ErrNilMatrix, matrix.ErrNonSquare, matrix.ErrDimensionMismatch.
//   - Network factory and transport errors; ctx errors.
//
// Complexity:
//   - Time O(N³/P²) per worker, P shifts of (N/P)² values per worker and matrix.
//   - Space O(N²/P²) per worker plus the N×N output.
func Multiply(ctx context.Context, a, b matrix.Matrix, opts ...Option) (*matrix.Dense, Report, error) {
	start := time.Now()
	o := gatherOptions(opts...)
	if err := matrix.ValidateSquareMul(a, b); err != nil {
		return nil, Report{}, cannonErrorf(opMultiply, err)
	}

	n := a.Rows()
	plan := grid.Partition(n, o.workers)
	report := Report{Plan: plan, Fallback: plan.Fallback, Distribution: o.distribution}
	if plan.Fallback {
		klog.V(2).InfoS("sequential fallback", "n", n, "workers", o.workers, "reason", string(plan.Reason))
		res, err := matrix.Mul(a, b)
		if err != nil {
			return nil, report, cannonErrorf(opMultiply, err)
		}
		report.Elapsed = time.Since(start)

		return res.(*matrix.Dense), report, nil
	}

	da, err := matrix.ToDense(a)
	if err != nil {
		return nil, report, cannonErrorf(opMultiply, err)
	}
	db, err := matrix.ToDense(b)
	if err != nil {
		return nil, report, cannonErrorf(opMultiply, err)
	}

	out, err := runGrid(ctx, da, db, plan, o)
	if err != nil {
		return nil, report, cannonErrorf(opMultiply, err)
	}
	report.Elapsed = time.Since(start)
	klog.V(2).InfoS("cannon multiply done", "n", n, "grid", plan.Grid.String(),
		"idle", plan.Idle(), "distribution", o.distribution.String(), "elapsed", report.Elapsed)

	return out, report, nil
}

// runGrid drives P² workers concurrently over a fresh network.
func runGrid(ctx context.Context, a, b *matrix.Dense, plan grid.Plan, o Options) (*matrix.Dense, error) {
	g := plan.Grid
	network, err := o.network(g.Size())
	if err != nil {
		return nil, err
	}
	if network == nil {
		return nil, cannonErrorf("network factory returned nil", ErrBadTopology)
	}
	defer func() {
		if cerr := network.Close(); cerr != nil {
			klog.ErrorS(cerr, "close network")
		}
	}()
	if network.Size() < g.Size() {
		return nil, ErrBadTopology
	}

	var result *matrix.Dense
	eg, egCtx := errgroup.WithContext(ctx)
	for rank := 0; rank < g.Size(); rank++ {
		rank := rank
		eg.Go(func() error {
			at, err := g.Coord(rank)
			if err != nil {
				return err
			}
			link, err := network.Endpoint(rank)
			if err != nil {
				return err
			}
			w, err := NewWorker(Topology{Grid: g, At: at, Link: link}, plan.N)
			if err != nil {
				return err
			}
			if err = w.Skew(egCtx, a, b, o.distribution); err != nil {
				return fmt.Errorf("rank %d: %w", rank, err)
			}
			if err = w.Run(egCtx); err != nil {
				return fmt.Errorf("rank %d: %w", rank, err)
			}
			out, err := Gather(egCtx, w, plan.N)
			if err != nil {
				return fmt.Errorf("rank %d: %w", rank, err)
			}
			if rank == Coordinator {
				result = out
			}

			return nil
		})
	}
	if err = eg.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

// Simulate runs Cannon on a p×p grid inside the calling goroutine.
// MAIN DESCRIPTION:
//   - Point-to-point skew over a MailboxNetwork: the coordinator posts every
//     block first, then the other workers collect theirs.
//   - Each shift is split into two passes over all workers: every worker
//     posts its outgoing block, then every worker collects its incoming one.
//   - Gather: ranks P²-1..1 post their C-blocks, then the coordinator assembles.
//
// Unlike Multiply, p is chosen by the caller; p == 1 is allowed and performs
// a single accumulate with no shifts.
//
// Errors:
//   - Operand validation errors; ErrBadTopology when p < 1 or p does not divide N.
//   - ErrBadState if blocks are left undelivered at the end.
func Simulate(ctx context.Context, a, b *matrix.Dense, p int) (*matrix.Dense, error) {
	if err := matrix.ValidateSquareMul(a, b); err != nil {
		return nil, cannonErrorf(opSimulate, err)
	}
	n := a.Rows()
	g, err := grid.New(p)
	if err != nil || n%p != 0 {
		return nil, cannonErrorf(opSimulate, ErrBadTopology)
	}

	network, err := transport.NewMailboxNetwork(g.Size())
	if err != nil {
		return nil, cannonErrorf(opSimulate, err)
	}
	defer network.Close()

	workers := make([]*Worker, g.Size())
	for rank := range workers {
		at, err := g.Coord(rank)
		if err != nil {
			return nil, cannonErrorf(opSimulate, err)
		}
		link, err := network.Endpoint(rank)
		if err != nil {
			return nil, cannonErrorf(opSimulate, err)
		}
		if workers[rank], err = NewWorker(Topology{Grid: g, At: at, Link: link}, n); err != nil {
			return nil, cannonErrorf(opSimulate, err)
		}
	}

	// Coordinator is rank 0, so its scatter is queued before anyone collects.
	for _, w := range workers {
		if err = w.Skew(ctx, a, b, PointToPoint); err != nil {
			return nil, cannonErrorf(opSimulate, err)
		}
	}

	for workers[0].State() != StateDone {
		switch workers[0].State() {
		case StateMultiply:
			for _, w := range workers {
				if err = w.Step(ctx); err != nil {
					return nil, cannonErrorf(opSimulate, err)
				}
			}
		case StateShiftA, StateShiftB:
			for _, w := range workers {
				if err = w.post(ctx); err != nil {
					return nil, cannonErrorf(opSimulate, err)
				}
			}
			for _, w := range workers {
				if err = w.collect(ctx); err != nil {
					return nil, cannonErrorf(opSimulate, err)
				}
			}
		default:
			return nil, cannonErrorf(opSimulate, ErrBadState)
		}
	}

	for rank := len(workers) - 1; rank > Coordinator; rank-- {
		if _, err = Gather(ctx, workers[rank], n); err != nil {
			return nil, cannonErrorf(opSimulate, err)
		}
	}
	out, err := Gather(ctx, workers[Coordinator], n)
	if err != nil {
		return nil, cannonErrorf(opSimulate, err)
	}
	if left := network.Pending(); left != 0 {
		return nil, cannonErrorf(opSimulate, fmt.Errorf("%d blocks undelivered: %w", left, ErrBadState))
	}

	return out, nil
}
