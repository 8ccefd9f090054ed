// SPDX-License-Identifier: MIT

package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrBadGrid indicates a non-positive grid side.
	ErrBadGrid = errors.New("grid: side must be > 0")

	// ErrBadRank indicates a rank or coordinate outside the torus.
	ErrBadRank = errors.New("grid: rank out of range")
)

// gridErrorf wraps err with an operation tag, preserving it for errors.Is.
func gridErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
