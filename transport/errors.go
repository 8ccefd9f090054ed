// SPDX-License-Identifier: MIT

package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by endpoints of a closed network.
	ErrClosed = errors.New("transport: network closed")

	// ErrUnknownPeer indicates a rank outside [0, Size()).
	ErrUnknownPeer = errors.New("transport: unknown peer")

	// ErrSelfSend indicates a Send or Receive addressed to the endpoint's own rank.
	ErrSelfSend = errors.New("transport: peer is self")

	// ErrBlockMismatch indicates a malformed block handed to Send or a
	// received block of unexpected size.
	ErrBlockMismatch = errors.New("transport: malformed block")

	// ErrNoMessage is returned by MailboxNetwork when nothing is queued.
	ErrNoMessage = errors.New("transport: no message queued")

	// ErrCodec indicates a payload that cannot be encoded or decoded.
	ErrCodec = errors.New("transport: codec failure")

	// ErrBadSize indicates a network built with a non-positive number of ranks.
	ErrBadSize = errors.New("transport: size must be > 0")
)

// transportErrorf wraps err with an operation tag and addressing context.
func transportErrorf(op string, rank, peer int, tag Tag, err error) error {
	return fmt.Errorf("%s(rank=%d peer=%d %s): %w", op, rank, peer, tag, err)
}
