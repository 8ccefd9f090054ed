// SPDX-License-Identifier: MIT

// Package cannon - the worker state machine.
//
// Transitions (P = grid side):
//
//	SKEW     --Skew-->                         MULTIPLY
//	MULTIPLY --C += A×B, step < P-->           SHIFT_A
//	MULTIPLY --C += A×B, step == P-->          DONE
//	SHIFT_A  --A to left, A from right-->      SHIFT_B
//	SHIFT_B  --B to up,   B from below-->      MULTIPLY
//
// With P == 1 the first MULTIPLY goes straight to DONE.
package cannon

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/katalvlaran/cannon/grid"
	"github.com/katalvlaran/cannon/matrix"
	"github.com/katalvlaran/cannon/transport"
)

const (
	opNewWorker = "NewWorker"
	opStep      = "Step"
	opRun       = "Run"
	opResult    = "Result"
)

// Worker is one cell of the torus. It is not safe for concurrent use; each
// worker is driven by a single goroutine.
type Worker struct {
	topo Topology
	rank int
	nb   grid.Neighbors
	n    int // matrix side
	bs   int // block side, n / P

	state State
	steps int // completed multiply-accumulates

	a, b matrix.Block // blocks currently held
	c    matrix.Block // partial accumulator, zero at start
}

// NewWorker validates topo and returns a worker in SKEW for an n×n product.
//
// Errors:
//   - ErrBadTopology: invalid grid, `At` off the grid, nil Link, Link of a
//     different rank, a network smaller than the grid, or P not dividing n.
func NewWorker(topo Topology, n int) (*Worker, error) {
	g := topo.Grid
	switch {
	case !g.Valid(), !g.Contains(topo.At), topo.Link == nil:
		return nil, cannonErrorf(opNewWorker, ErrBadTopology)
	case n <= 0 || n%g.P() != 0:
		return nil, cannonErrorf(opNewWorker, ErrBadTopology)
	case topo.Link.Rank() != topo.Rank() || topo.Link.Size() < g.Size():
		return nil, cannonErrorf(opNewWorker, ErrBadTopology)
	}

	nb, err := g.Neighbors(topo.Rank())
	if err != nil {
		return nil, cannonErrorf(opNewWorker, err)
	}
	bs := n / g.P()
	acc, err := matrix.NewBlock(bs)
	if err != nil {
		return nil, cannonErrorf(opNewWorker, err)
	}

	return &Worker{
		topo:  topo,
		rank:  topo.Rank(),
		nb:    nb,
		n:     n,
		bs:    bs,
		state: StateSkew,
		c:     acc,
	}, nil
}

// State returns the current state.
func (w *Worker) State() State { return w.state }

// Rank returns row*P + col.
func (w *Worker) Rank() int { return w.rank }

// Coord returns the grid position.
func (w *Worker) Coord() grid.Coord { return w.topo.At }

// Steps returns the number of completed multiply-accumulates.
func (w *Worker) Steps() int { return w.steps }

// Blocks returns copies of the A- and B-blocks currently held.
// Before Skew both are empty.
func (w *Worker) Blocks() (a, b matrix.Block) {
	if w.a.Data == nil {
		return matrix.Block{}, matrix.Block{}
	}

	return w.a.Clone(), w.b.Clone()
}

// Result returns the finished C-block.
// Errors: ErrNotDone in any state but DONE.
func (w *Worker) Result() (matrix.Block, error) {
	if w.state != StateDone {
		return matrix.Block{}, cannonErrorf(opResult, ErrNotDone)
	}

	return w.c, nil
}

// Step performs the action of the current state and advances to the next.
//
// Errors:
//   - ErrBadState in SKEW (use Skew) and in DONE.
//   - Transport errors from the shifts; the state is left unchanged.
func (w *Worker) Step(ctx context.Context) error {
	switch w.state {
	case StateMultiply:
		return w.multiply()
	case StateShiftA, StateShiftB:
		tag, to, from, out := w.shiftPlan()
		in, err := transport.Exchange(ctx, w.topo.Link, to, from, tag, out)
		if err != nil {
			return cannonErrorf(opStep, err)
		}
		w.accept(in)

		return nil
	default:
		return cannonErrorf(opStep, ErrBadState)
	}
}

// Run steps the worker from MULTIPLY to DONE.
// Errors: ErrBadState if Skew has not run; otherwise the first Step error.
func (w *Worker) Run(ctx context.Context) error {
	if w.state == StateSkew {
		return cannonErrorf(opRun, ErrBadState)
	}
	for w.state != StateDone {
		if err := w.Step(ctx); err != nil {
			return cannonErrorf(opRun, err)
		}
	}

	return nil
}

// multiply runs one accumulate and picks the next state.
func (w *Worker) multiply() error {
	if err := matrix.MulAddBlock(w.c, w.a, w.b); err != nil {
		return cannonErrorf(opStep, err)
	}
	w.steps++
	if w.steps == w.topo.Grid.P() {
		w.transition(StateDone)
	} else {
		w.transition(StateShiftA)
	}

	return nil
}

// shiftPlan returns tag, destination, source and outgoing block of the
// current shift state.
func (w *Worker) shiftPlan() (transport.Tag, int, int, matrix.Block) {
	if w.state == StateShiftA {
		return transport.TagShiftA, w.nb.Left, w.nb.Right, w.a
	}

	return transport.TagShiftB, w.nb.Up, w.nb.Down, w.b
}

// accept stores the block that arrived during the current shift.
func (w *Worker) accept(in matrix.Block) {
	if w.state == StateShiftA {
		w.a = in
		w.transition(StateShiftB)
	} else {
		w.b = in
		w.transition(StateMultiply)
	}
}

// post is the send half of a shift, for drivers that cannot run both halves
// at once. The state does not change until collect.
func (w *Worker) post(ctx context.Context) error {
	if w.state != StateShiftA && w.state != StateShiftB {
		return cannonErrorf(opStep, ErrBadState)
	}
	tag, to, _, out := w.shiftPlan()
	if err := w.topo.Link.Send(ctx, to, tag, out); err != nil {
		return cannonErrorf(opStep, err)
	}

	return nil
}

// collect is the receive half matching post.
func (w *Worker) collect(ctx context.Context) error {
	if w.state != StateShiftA && w.state != StateShiftB {
		return cannonErrorf(opStep, ErrBadState)
	}
	tag, _, from, out := w.shiftPlan()
	in, err := w.topo.Link.Receive(ctx, from, tag)
	if err != nil {
		return cannonErrorf(opStep, err)
	}
	if in.Size != out.Size {
		return cannonErrorf(opStep, transport.ErrBlockMismatch)
	}
	w.accept(in)

	return nil
}

func (w *Worker) transition(next State) {
	klog.V(3).InfoS("worker transition", "rank", w.rank, "row", w.topo.At.Row, "col", w.topo.At.Col,
		"from", w.state, "to", next, "steps", w.steps)
	w.state = next
}
