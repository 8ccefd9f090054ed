// SPDX-License-Identifier: MIT

package task

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned by Execute when Validation reports false.
	ErrValidation = errors.New("task: validation failed")

	// ErrStage indicates a stage that reported false or was called out of order.
	ErrStage = errors.New("task: stage failed")

	// ErrBufferKind indicates a buffer read as the wrong element type.
	ErrBufferKind = errors.New("task: buffer kind mismatch")

	// ErrPerfAttr indicates invalid performance attributes (NumRunning < 0).
	ErrPerfAttr = errors.New("task: invalid perf attributes")
)

// taskErrorf wraps err with a stage tag.
func taskErrorf(stage Stage, err error) error {
	return fmt.Errorf("%s: %w", stage, err)
}
