// SPDX-License-Identifier: MIT

// Package transport - queued network for single-threaded drivers.
//
// Purpose:
//   - Send appends to an unbounded FIFO per (from, to, tag) and never blocks.
//   - Receive pops the head or fails with ErrNoMessage; it never waits, since
//     the only goroutine of a simulation would wait forever.

package transport

import (
	"context"
	"sync"

	"github.com/katalvlaran/cannon/matrix"
)

// MailboxNetwork is a non-blocking network of `size` endpoints.
// It is safe for concurrent use, although it is meant for lockstep drivers.
type MailboxNetwork struct {
	size int

	mu     sync.Mutex
	queues map[link][]matrix.Block
	closed bool
}

// NewMailboxNetwork returns a queued network of `size` ranks.
// Errors: ErrBadSize when size <= 0.
func NewMailboxNetwork(size int) (*MailboxNetwork, error) {
	if size <= 0 {
		return nil, ErrBadSize
	}

	return &MailboxNetwork{size: size, queues: make(map[link][]matrix.Block)}, nil
}

// Size returns the number of ranks.
func (n *MailboxNetwork) Size() int { return n.size }

// Endpoint returns the Transport of rank.
func (n *MailboxNetwork) Endpoint(rank int) (Transport, error) {
	if rank < 0 || rank >= n.size {
		return nil, ErrUnknownPeer
	}

	return &mailboxEndpoint{net: n, rank: rank}, nil
}

// Close drops queued blocks; later calls return ErrClosed.
func (n *MailboxNetwork) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true
	n.queues = nil

	return nil
}

// Pending returns the number of queued, undelivered blocks across all links.
// A finished simulation must leave it at zero.
func (n *MailboxNetwork) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	total := 0
	for _, q := range n.queues {
		total += len(q)
	}

	return total
}

type mailboxEndpoint struct {
	net  *MailboxNetwork
	rank int
}

func (e *mailboxEndpoint) Rank() int { return e.rank }

func (e *mailboxEndpoint) Size() int { return e.net.size }

func (e *mailboxEndpoint) Send(ctx context.Context, to int, tag Tag, b matrix.Block) error {
	if err := validatePeer(e.rank, to, e.net.size); err != nil {
		return transportErrorf("Send", e.rank, to, tag, err)
	}
	if err := validatePayload(b); err != nil {
		return transportErrorf("Send", e.rank, to, tag, err)
	}
	if err := ctx.Err(); err != nil {
		return transportErrorf("Send", e.rank, to, tag, err)
	}

	e.net.mu.Lock()
	defer e.net.mu.Unlock()
	if e.net.closed {
		return transportErrorf("Send", e.rank, to, tag, ErrClosed)
	}
	l := link{from: e.rank, to: to, tag: tag}
	e.net.queues[l] = append(e.net.queues[l], b)

	return nil
}

func (e *mailboxEndpoint) Receive(ctx context.Context, from int, tag Tag) (matrix.Block, error) {
	if err := validatePeer(e.rank, from, e.net.size); err != nil {
		return matrix.Block{}, transportErrorf("Receive", e.rank, from, tag, err)
	}
	if err := ctx.Err(); err != nil {
		return matrix.Block{}, transportErrorf("Receive", e.rank, from, tag, err)
	}

	e.net.mu.Lock()
	defer e.net.mu.Unlock()
	if e.net.closed {
		return matrix.Block{}, transportErrorf("Receive", e.rank, from, tag, ErrClosed)
	}
	l := link{from: from, to: e.rank, tag: tag}
	q := e.net.queues[l]
	if len(q) == 0 {
		return matrix.Block{}, transportErrorf("Receive", e.rank, from, tag, ErrNoMessage)
	}
	head := q[0]
	q[0] = matrix.Block{} // drop the reference held by the backing array
	if len(q) == 1 {
		delete(e.net.queues, l)
	} else {
		e.net.queues[l] = q[1:]
	}

	return head, nil
}
