// SPDX-License-Identifier: MIT

package cannon

import (
	"fmt"
	"time"

	"github.com/katalvlaran/cannon/grid"
	"github.com/katalvlaran/cannon/transport"
)

// State is the position of a Worker in its lifecycle.
type State int

// Worker states. The zero value is StateSkew.
const (
	StateSkew     State = iota // waiting for the initial blocks
	StateMultiply              // next: local C += A × B
	StateShiftA                // next: A-block one step left
	StateShiftB                // next: B-block one step up
	StateDone                  // P accumulates done; C is final
)

// String returns the upper-case state name used in logs.
func (s State) String() string {
	switch s {
	case StateSkew:
		return "SKEW"
	case StateMultiply:
		return "MULTIPLY"
	case StateShiftA:
		return "SHIFT_A"
	case StateShiftB:
		return "SHIFT_B"
	case StateDone:
		return "DONE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Distribution selects how the skewed blocks reach the workers.
type Distribution int

const (
	// Broadcast: every worker reads its own blocks from the full matrices.
	Broadcast Distribution = iota
	// PointToPoint: the coordinator cuts all blocks and sends them out.
	PointToPoint
)

// String names the distribution for logs and CLI flags.
func (d Distribution) String() string {
	switch d {
	case Broadcast:
		return "broadcast"
	case PointToPoint:
		return "p2p"
	default:
		return fmt.Sprintf("Distribution(%d)", int(d))
	}
}

// ParseDistribution maps "broadcast" and "p2p" back to a Distribution.
func ParseDistribution(s string) (Distribution, error) {
	switch s {
	case "broadcast":
		return Broadcast, nil
	case "p2p", "point-to-point":
		return PointToPoint, nil
	default:
		return 0, fmt.Errorf("cannon: unknown distribution %q", s)
	}
}

// Coordinator is the rank that scatters in PointToPoint mode and assembles the result.
const Coordinator = 0

// Topology is everything a worker knows about its place in the computation.
type Topology struct {
	Grid grid.Grid           // the P×P torus
	At   grid.Coord          // this worker's position
	Link transport.Transport // endpoint of rank Grid.Rank(At)
}

// Rank returns the worker's rank, row*P + col.
func (t Topology) Rank() int { return t.Grid.Rank(t.At) }

// Report describes how a Multiply call was executed.
type Report struct {
	Plan         grid.Plan     // partition decision, including fallback reason
	Fallback     bool          // true ⇒ computed by matrix.Mul
	Distribution Distribution  // skew distribution used (meaningless on fallback)
	Elapsed      time.Duration // wall time of the whole call
}
