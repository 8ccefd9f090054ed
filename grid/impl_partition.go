// SPDX-License-Identifier: MIT

package grid

import "fmt"

// Partition chooses the process grid for an N×N product over `workers` workers.
// MAIN DESCRIPTION:
//   - P = the largest integer ≤ floor(sqrt(workers)) with N % P == 0.
//   - If no such P > 1 exists the Plan signals Fallback (sequential path).
//
// Implementation:
//   - Stage 1: reject empty matrices and empty worker pools as fallbacks.
//   - Stage 2: start from isqrt(workers) and walk down to 2 until P divides N.
//
// Behavior highlights:
//   - Never returns an error: an unusable combination is a policy branch.
//   - Workers beyond P² stay idle.
//
// Complexity:
//   - Time O(sqrt(workers)), Space O(1).
func Partition(n, workers int) Plan {
	plan := Plan{N: n, Workers: workers}
	switch {
	case n <= 0:
		return fallback(plan, ReasonEmptyMatrix)
	case workers <= 0:
		return fallback(plan, ReasonNoWorkers)
	}

	p := isqrt(workers)
	if p < 2 {
		return fallback(plan, ReasonSingleWorker)
	}
	for ; p >= 2; p-- {
		if n%p == 0 {
			plan.Grid = Grid{p: p}
			plan.BlockSize = n / p

			return plan
		}
	}

	return fallback(plan, ReasonNoDivisor)
}

// Extents lists the output tile of every participating rank in rank order.
// A fallback plan has no extents.
func (pl Plan) Extents() []Extent {
	if pl.Fallback {
		return nil
	}

	out := make([]Extent, 0, pl.Grid.Size())
	for rank := 0; rank < pl.Grid.Size(); rank++ {
		e, _ := pl.Extent(rank) // rank is in range by construction
		out = append(out, e)
	}

	return out
}

// Extent returns the output tile of one rank.
// Errors: ErrBadRank (also for fallback plans, which have no ranks).
func (pl Plan) Extent(rank int) (Extent, error) {
	if pl.Fallback {
		return Extent{}, gridErrorf(fmt.Sprintf("Extent(%d)", rank), ErrBadRank)
	}
	c, err := pl.Grid.Coord(rank)
	if err != nil {
		return Extent{}, err
	}

	return Extent{
		Rank:     rank,
		At:       c,
		RowStart: c.Row * pl.BlockSize,
		ColStart: c.Col * pl.BlockSize,
		Size:     pl.BlockSize,
	}, nil
}

// Idle returns how many offered workers are excluded from the grid.
func (pl Plan) Idle() int {
	if pl.Fallback {
		if pl.Workers > 1 {
			return pl.Workers - 1 // one worker runs the sequential path
		}

		return 0
	}

	return pl.Workers - pl.Grid.Size()
}

func fallback(pl Plan, why FallbackReason) Plan {
	pl.Fallback = true
	pl.Reason = why

	return pl
}

// isqrt returns floor(sqrt(x)) for x ≥ 0 using integer arithmetic only.
func isqrt(x int) int {
	if x < 2 {
		return x
	}
	lo, hi := 1, x
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if mid <= x/mid {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	return lo
}
