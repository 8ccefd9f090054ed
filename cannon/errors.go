// SPDX-License-Identifier: MIT

package cannon

import (
	"errors"
	"fmt"
)

var (
	// ErrNotDone is returned by Worker.Result before the worker reached DONE.
	ErrNotDone = errors.New("cannon: worker has not finished")

	// ErrBadState indicates an operation that is not allowed in the worker's current state.
	ErrBadState = errors.New("cannon: operation not allowed in current state")

	// ErrBadTopology indicates an inconsistent Topology: invalid grid, a coordinate
	// off the grid, a missing transport, or a transport of a different rank.
	ErrBadTopology = errors.New("cannon: inconsistent topology")
)

// cannonErrorf wraps err with an operation tag.
func cannonErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
