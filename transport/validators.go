// SPDX-License-Identifier: MIT

package transport

import "github.com/katalvlaran/cannon/matrix"

// validatePeer checks that peer is a rank of the network and not self.
func validatePeer(self, peer, size int) error {
	if peer < 0 || peer >= size {
		return ErrUnknownPeer
	}
	if peer == self {
		return ErrSelfSend
	}

	return nil
}

// validatePayload checks the block shape before it leaves the endpoint.
func validatePayload(b matrix.Block) error {
	if err := matrix.ValidateBlock(b); err != nil {
		return ErrBlockMismatch
	}

	return nil
}
