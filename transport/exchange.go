// SPDX-License-Identifier: MIT

package transport

import (
	"context"

	"github.com/katalvlaran/cannon/matrix"
)

// Exchange sends `out` to rank `to` while receiving the next block from rank
// `from` on the same tag, and returns once both halves completed.
// MAIN DESCRIPTION:
//   - The matched send+receive pair of one systolic shift. Running the send
//     concurrently with the receive lets every member of a ring shift at the
//     same time over rendezvous channels without a cyclic wait.
//
// Behavior highlights:
//   - The received block is returned only after our own send finished, so the
//     caller never proceeds with a half-done shift.
//   - If the receive fails the send is still awaited, so no goroutine leaks
//     while the context is live.
//   - `to` and `from` may be the same rank (P == 2).
//   - The received block must have the same size as `out`.
//
// Errors:
//   - Whatever Send/Receive return; the receive error wins when both fail.
//   - ErrBlockMismatch when the received block has a different size.
func Exchange(ctx context.Context, t Transport, to, from int, tag Tag, out matrix.Block) (matrix.Block, error) {
	// Reject bad addressing before either half starts, so a failing receive
	// can never leave the send waiting on a partner that does not exist.
	if err := validatePeer(t.Rank(), to, t.Size()); err != nil {
		return matrix.Block{}, transportErrorf("Exchange", t.Rank(), to, tag, err)
	}
	if err := validatePeer(t.Rank(), from, t.Size()); err != nil {
		return matrix.Block{}, transportErrorf("Exchange", t.Rank(), from, tag, err)
	}

	sent := make(chan error, 1)
	go func() { sent <- t.Send(ctx, to, tag, out) }()

	in, recvErr := t.Receive(ctx, from, tag)
	sendErr := <-sent
	if recvErr != nil {
		return matrix.Block{}, recvErr
	}
	if sendErr != nil {
		return matrix.Block{}, sendErr
	}
	if in.Size != out.Size || matrix.ValidateBlock(in) != nil {
		return matrix.Block{}, transportErrorf("Exchange", t.Rank(), from, tag, ErrBlockMismatch)
	}

	return in, nil
}
