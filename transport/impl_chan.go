// SPDX-License-Identifier: MIT

// Package transport - in-process rendezvous network.
//
// Purpose:
//   - One unbuffered channel per (from, to, tag), created on first use.
//   - Send blocks until the matching Receive takes the block, which models
//     synchronous point-to-point message passing between goroutine workers.

package transport

import (
	"context"
	"sync"

	"github.com/katalvlaran/cannon/matrix"
)

// ChanNetwork connects `size` in-process endpoints with rendezvous channels.
type ChanNetwork struct {
	size int

	mu    sync.Mutex
	links map[link]chan matrix.Block

	done      chan struct{}
	closeOnce sync.Once
}

// NewChanNetwork returns a rendezvous network of `size` ranks.
// Errors: ErrBadSize when size <= 0.
func NewChanNetwork(size int) (*ChanNetwork, error) {
	if size <= 0 {
		return nil, ErrBadSize
	}

	return &ChanNetwork{
		size:  size,
		links: make(map[link]chan matrix.Block),
		done:  make(chan struct{}),
	}, nil
}

// Size returns the number of ranks.
func (n *ChanNetwork) Size() int { return n.size }

// Endpoint returns the Transport of rank.
func (n *ChanNetwork) Endpoint(rank int) (Transport, error) {
	if rank < 0 || rank >= n.size {
		return nil, ErrUnknownPeer
	}

	return &chanEndpoint{net: n, rank: rank}, nil
}

// Close unblocks every pending Send/Receive with ErrClosed. Idempotent.
func (n *ChanNetwork) Close() error {
	n.closeOnce.Do(func() { close(n.done) })

	return nil
}

// channel returns (creating on first use) the channel of one directed link.
func (n *ChanNetwork) channel(l link) chan matrix.Block {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch, ok := n.links[l]
	if !ok {
		ch = make(chan matrix.Block) // unbuffered: rendezvous
		n.links[l] = ch
	}

	return ch
}

type chanEndpoint struct {
	net  *ChanNetwork
	rank int
}

func (e *chanEndpoint) Rank() int { return e.rank }

func (e *chanEndpoint) Size() int { return e.net.size }

func (e *chanEndpoint) Send(ctx context.Context, to int, tag Tag, b matrix.Block) error {
	if err := validatePeer(e.rank, to, e.net.size); err != nil {
		return transportErrorf("Send", e.rank, to, tag, err)
	}
	if err := validatePayload(b); err != nil {
		return transportErrorf("Send", e.rank, to, tag, err)
	}

	ch := e.net.channel(link{from: e.rank, to: to, tag: tag})
	select {
	case ch <- b:
		return nil
	case <-e.net.done:
		return transportErrorf("Send", e.rank, to, tag, ErrClosed)
	case <-ctx.Done():
		return transportErrorf("Send", e.rank, to, tag, ctx.Err())
	}
}

func (e *chanEndpoint) Receive(ctx context.Context, from int, tag Tag) (matrix.Block, error) {
	if err := validatePeer(e.rank, from, e.net.size); err != nil {
		return matrix.Block{}, transportErrorf("Receive", e.rank, from, tag, err)
	}

	ch := e.net.channel(link{from: from, to: e.rank, tag: tag})
	select {
	case b := <-ch:
		return b, nil
	case <-e.net.done:
		return matrix.Block{}, transportErrorf("Receive", e.rank, from, tag, ErrClosed)
	case <-ctx.Done():
		return matrix.Block{}, transportErrorf("Receive", e.rank, from, tag, ctx.Err())
	}
}
