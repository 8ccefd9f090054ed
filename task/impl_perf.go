// SPDX-License-Identifier: MIT

// Package task - performance measurement.
//
// Two modes:
//   - PipelineRun: the four stages, NumRunning times; reports the mean wall
//     time of one full pipeline.
//   - TaskRun: Validation and PreProcessing once, Run NumRunning times,
//     PostProcessing once; reports the mean wall time of one Run.
package task

import (
	"fmt"
	"time"

	"k8s.io/klog/v2"
)

// DefaultNumRunning is used when PerfAttr.NumRunning is zero.
const DefaultNumRunning = 10

// RunKind tells which measurement produced a Results.
type RunKind int

// Measurement modes.
const (
	KindNone RunKind = iota
	KindPipeline
	KindTaskRun
)

// String names the mode.
func (k RunKind) String() string {
	switch k {
	case KindPipeline:
		return "pipeline"
	case KindTaskRun:
		return "task_run"
	default:
		return "none"
	}
}

// PerfAttr configures a measurement.
type PerfAttr struct {
	NumRunning int              // repetitions; 0 ⇒ DefaultNumRunning
	Clock      func() time.Time // time source; nil ⇒ time.Now
}

// Results is the outcome of a measurement.
type Results struct {
	TimeSec float64 // mean seconds per repetition
	Kind    RunKind
	Runs    int
}

// Perf measures one Task.
type Perf struct {
	task Task
}

// NewPerf wraps t.
func NewPerf(t Task) *Perf { return &Perf{task: t} }

// PipelineRun executes the whole pipeline attr.NumRunning times.
// Errors: ErrPerfAttr, or the first Execute error.
func (p *Perf) PipelineRun(attr PerfAttr) (Results, error) {
	runs, clock, err := normalize(attr)
	if err != nil {
		return Results{}, err
	}

	begin := clock()
	for i := 0; i < runs; i++ {
		if err = Execute(p.task); err != nil {
			return Results{}, fmt.Errorf("PipelineRun #%d: %w", i, err)
		}
	}

	return Results{TimeSec: clock().Sub(begin).Seconds() / float64(runs), Kind: KindPipeline, Runs: runs}, nil
}

// TaskRun times only the Run stage, repeated attr.NumRunning times.
// Errors: ErrPerfAttr, ErrValidation, ErrStage.
func (p *Perf) TaskRun(attr PerfAttr) (Results, error) {
	runs, clock, err := normalize(attr)
	if err != nil {
		return Results{}, err
	}

	if !p.task.Validation() {
		return Results{}, failure(p.task, StageValidated, ErrValidation)
	}
	if !p.task.PreProcessing() {
		return Results{}, failure(p.task, StagePreProcessed, ErrStage)
	}
	begin := clock()
	for i := 0; i < runs; i++ {
		if !p.task.Run() {
			return Results{}, failure(p.task, StageRan, ErrStage)
		}
	}
	elapsed := clock().Sub(begin)
	if !p.task.PostProcessing() {
		return Results{}, failure(p.task, StagePostProcessed, ErrStage)
	}

	return Results{TimeSec: elapsed.Seconds() / float64(runs), Kind: KindTaskRun, Runs: runs}, nil
}

// PrintStatistic logs r at verbosity 0.
func PrintStatistic(name string, r Results) {
	klog.InfoS("perf", "task", name, "kind", r.Kind.String(), "runs", r.Runs,
		"timeSec", fmt.Sprintf("%.10f", r.TimeSec))
}

func normalize(attr PerfAttr) (int, func() time.Time, error) {
	if attr.NumRunning < 0 {
		return 0, nil, fmt.Errorf("NumRunning=%d: %w", attr.NumRunning, ErrPerfAttr)
	}
	runs := attr.NumRunning
	if runs == 0 {
		runs = DefaultNumRunning
	}
	clock := attr.Clock
	if clock == nil {
		clock = time.Now
	}

	return runs, clock, nil
}
