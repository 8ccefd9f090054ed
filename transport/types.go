// SPDX-License-Identifier: MIT

package transport

import (
	"context"
	"fmt"

	"github.com/katalvlaran/cannon/matrix"
)

// Tag separates traffic classes on the same pair of ranks.
type Tag int

// Traffic classes of one Cannon run.
const (
	TagScatterA Tag = iota + 1 // coordinator → worker, initial A-block
	TagScatterB                // coordinator → worker, initial B-block
	TagShiftA                  // row-wise left rotation
	TagShiftB                  // column-wise upward rotation
	TagGather                  // worker → coordinator, finished C-block
)

// String names the tag for logs.
func (t Tag) String() string {
	switch t {
	case TagScatterA:
		return "scatter-a"
	case TagScatterB:
		return "scatter-b"
	case TagShiftA:
		return "shift-a"
	case TagShiftB:
		return "shift-b"
	case TagGather:
		return "gather"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}

// Transport is one worker's endpoint.
type Transport interface {
	// Rank returns the rank this endpoint belongs to.
	Rank() int

	// Size returns the number of ranks reachable through the network.
	Size() int

	// Send hands b to rank `to`. Depending on the network it returns after the
	// peer took the block (rendezvous) or after the block was queued.
	Send(ctx context.Context, to int, tag Tag, b matrix.Block) error

	// Receive returns the next block sent by rank `from` with the given tag.
	Receive(ctx context.Context, from int, tag Tag) (matrix.Block, error)
}

// Network owns the endpoints of all ranks.
type Network interface {
	// Size returns the number of ranks.
	Size() int

	// Endpoint returns the Transport of one rank.
	Endpoint(rank int) (Transport, error)

	// Close releases the network; blocked calls return ErrClosed.
	Close() error
}

// link identifies one directed, tagged channel between two ranks.
type link struct {
	from, to int
	tag      Tag
}
