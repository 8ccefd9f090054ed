// SPDX-License-Identifier: MIT

// Package task - stage ordering.
//
// Allowed transitions:
//
//	New / Validated / PostProcessed --Validation ok-->   Validated
//	New / Validated / PostProcessed --Validation fail--> Invalid (terminal until next Validation)
//	Validated           --PreProcessing-->   PreProcessed
//	PreProcessed / Ran  --Run-->             Ran
//	Ran                 --PostProcessing-->  PostProcessed
//
// Run may repeat, which is what Perf.TaskRun relies on.
package task

import "fmt"

// Stage is a lifecycle position.
type Stage int

// Lifecycle stages.
const (
	StageNew Stage = iota
	StageInvalid
	StageValidated
	StagePreProcessed
	StageRan
	StagePostProcessed
)

// Stage names double as the error tags of the matching stage methods.
func (s Stage) String() string {
	switch s {
	case StageNew:
		return "New"
	case StageInvalid:
		return "Invalid"
	case StageValidated:
		return "Validation"
	case StagePreProcessed:
		return "PreProcessing"
	case StageRan:
		return "Run"
	case StagePostProcessed:
		return "PostProcessing"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Lifecycle tracks the stage of a Task implementation. Embed it and bracket
// each stage with Enter / Finish. The zero value is StageNew.
type Lifecycle struct {
	stage Stage
	err   error // why the last stage reported false
}

// Stage returns the last completed stage.
func (l *Lifecycle) Stage() Stage { return l.stage }

// Err returns the reason of the most recent failed stage, or nil.
func (l *Lifecycle) Err() error { return l.err }

// Enter checks that `next` may start now.
// Errors: ErrStage when called out of order; the error is also kept for Err.
func (l *Lifecycle) Enter(next Stage) error {
	ok := false
	switch next {
	case StageValidated:
		// Validated covers a PreProcessing that failed and left the stage in place.
		ok = l.stage == StageNew || l.stage == StageValidated || l.stage == StagePostProcessed || l.stage == StageInvalid
	case StagePreProcessed:
		ok = l.stage == StageValidated
	case StageRan:
		ok = l.stage == StagePreProcessed || l.stage == StageRan
	case StagePostProcessed:
		ok = l.stage == StageRan
	}
	if !ok {
		l.err = taskErrorf(next, fmt.Errorf("called after %s: %w", l.stage, ErrStage))
		return l.err
	}

	return nil
}

// Finish records the outcome of stage `s`. A nil err advances the lifecycle and
// returns true. A failed Validation moves to StageInvalid; other failures keep
// the previous stage.
func (l *Lifecycle) Finish(s Stage, err error) bool {
	if err != nil {
		l.err = taskErrorf(s, err)
		if s == StageValidated {
			l.stage = StageInvalid
		}

		return false
	}
	l.err = nil
	l.stage = s

	return true
}

// Execute runs Validation, PreProcessing, Run and PostProcessing in order.
// MAIN DESCRIPTION:
//   - Stops at the first stage that reports false.
//   - A failed Validation yields ErrValidation and no buffer is touched.
//   - Any other failure yields ErrStage.
//   - When t exposes `Err() error` (as Lifecycle does) the reason is attached.
func Execute(t Task) error {
	if !t.Validation() {
		return failure(t, StageValidated, ErrValidation)
	}
	if !t.PreProcessing() {
		return failure(t, StagePreProcessed, ErrStage)
	}
	if !t.Run() {
		return failure(t, StageRan, ErrStage)
	}
	if !t.PostProcessing() {
		return failure(t, StagePostProcessed, ErrStage)
	}

	return nil
}

func failure(t Task, s Stage, sentinel error) error {
	if r, ok := t.(interface{ Err() error }); ok && r.Err() != nil {
		return fmt.Errorf("%s: %w: %w", s, sentinel, r.Err())
	}

	return taskErrorf(s, sentinel)
}
