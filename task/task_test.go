// SPDX-License-Identifier: MIT
// Package task_test checks buffers, the stage order and the perf wrapper.
package task_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cannon/task"
)

// sumTask adds its float64 inputs into the single output element.
type sumTask struct {
	task.Lifecycle
	data *task.Data

	in     []float64
	sum    float64
	runs   int
	preErr error // returned by the next PreProcessing
}

func (s *sumTask) Validation() bool {
	if err := s.Enter(task.StageValidated); err != nil {
		return false
	}
	var err error
	if len(s.data.GetInputs()) != 1 || len(s.data.GetOutputs()) != 1 {
		err = errors.New("arity")
	} else if s.in, err = s.data.GetInputs()[0].Float64(); err == nil && s.data.GetOutputs()[0].Len() != 1 {
		err = errors.New("output length")
	}

	return s.Finish(task.StageValidated, err)
}

func (s *sumTask) PreProcessing() bool {
	if err := s.Enter(task.StagePreProcessed); err != nil {
		return false
	}
	s.sum = 0
	err := s.preErr
	s.preErr = nil

	return s.Finish(task.StagePreProcessed, err)
}

func (s *sumTask) Run() bool {
	if err := s.Enter(task.StageRan); err != nil {
		return false
	}
	s.runs++
	s.sum = 0
	for _, v := range s.in {
		s.sum += v
	}

	return s.Finish(task.StageRan, nil)
}

func (s *sumTask) PostProcessing() bool {
	if err := s.Enter(task.StagePostProcessed); err != nil {
		return false
	}
	out, err := s.data.GetOutputs()[0].Float64()
	if err == nil {
		out[0] = s.sum
	}

	return s.Finish(task.StagePostProcessed, err)
}

func newSum(in []float64, out []float64) *sumTask {
	return &sumTask{data: task.NewData(
		[]task.Buffer{task.Float64s(in)}, []int{len(in)},
		[]task.Buffer{task.Float64s(out)}, []int{len(out)},
	)}
}

func TestBuffer_Kinds(t *testing.T) {
	t.Parallel()

	f := task.Float64s([]float64{1, 2})
	require.Equal(t, task.KindFloat64, f.Kind())
	require.Equal(t, 2, f.Len())
	require.False(t, f.IsNil())
	_, err := f.Int64()
	require.ErrorIs(t, err, task.ErrBufferKind)

	i := task.Int64s([]int64{7})
	v, err := i.Int64()
	require.NoError(t, err)
	require.Equal(t, []int64{7}, v)
	_, err = i.Float64()
	require.ErrorIs(t, err, task.ErrBufferKind)

	require.True(t, task.Float64s(nil).IsNil())
	var zero task.Buffer
	require.True(t, zero.IsNil())
	require.Zero(t, zero.Len())
	require.Equal(t, "Kind(0)", zero.Kind().String())
}

func TestData_Accessors(t *testing.T) {
	t.Parallel()

	in := []task.Buffer{task.Float64s([]float64{1})}
	out := []task.Buffer{task.Float64s(make([]float64, 1))}
	d := task.NewData(in, []int{1, 1}, out, []int{1})
	require.Equal(t, in, d.GetInputs())
	require.Equal(t, []int{1, 1}, d.GetInputCounts())
	require.Equal(t, out, d.GetOutputs())
	require.Equal(t, []int{1}, d.GetOutputCounts())
}

func TestExecute(t *testing.T) {
	t.Parallel()

	out := []float64{-1}
	s := newSum([]float64{1, 2, 3}, out)
	require.NoError(t, task.Execute(s))
	require.Equal(t, 6.0, out[0])
	require.Equal(t, task.StagePostProcessed, s.Stage())

	// The same task may run the pipeline again.
	require.NoError(t, task.Execute(s))
	require.Equal(t, 2, s.runs)
}

func TestExecute_ValidationStopsPipeline(t *testing.T) {
	t.Parallel()

	out := []float64{-1, -1}
	s := newSum([]float64{1}, out) // output must have one element
	err := task.Execute(s)
	require.ErrorIs(t, err, task.ErrValidation)
	require.Equal(t, []float64{-1, -1}, out, "outputs untouched")
	require.Zero(t, s.runs)
	require.Equal(t, task.StageInvalid, s.Stage())
	require.Error(t, s.Err())

	// Nothing past Validation is accepted now.
	require.False(t, s.PreProcessing())
	require.ErrorIs(t, s.Err(), task.ErrStage)
}

func TestLifecycle_Order(t *testing.T) {
	t.Parallel()

	out := []float64{0}
	s := newSum([]float64{4}, out)

	require.False(t, s.Run(), "Run before Validation")
	require.ErrorIs(t, s.Err(), task.ErrStage)
	require.False(t, s.PostProcessing())
	require.True(t, s.Validation())
	require.Nil(t, s.Err())
	require.False(t, s.Run(), "Run before PreProcessing")
	require.True(t, s.PreProcessing())
	require.False(t, s.PreProcessing(), "PreProcessing twice")
	require.True(t, s.Run())
	require.True(t, s.Run(), "Run may repeat")
	require.True(t, s.PostProcessing())
	require.False(t, s.PostProcessing(), "PostProcessing twice")
	require.Equal(t, 4.0, out[0])
}

// TestLifecycle_RevalidateAfterFailedPreProcessing retries a task in place.
func TestLifecycle_RevalidateAfterFailedPreProcessing(t *testing.T) {
	t.Parallel()

	out := []float64{0}
	s := newSum([]float64{2, 5}, out)
	s.preErr = errors.New("scratch unavailable")

	err := task.Execute(s)
	require.ErrorIs(t, err, task.ErrStage)
	require.Equal(t, task.StageValidated, s.Stage())
	require.Zero(t, out[0])

	require.NoError(t, task.Execute(s))
	require.Equal(t, 7.0, out[0])
	require.True(t, s.Validation(), "Validation may repeat")
}

func TestStage_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Validation", task.StageValidated.String())
	require.Equal(t, "Run", task.StageRan.String())
	require.Equal(t, "Stage(42)", task.Stage(42).String())
}

// fakeClock advances one second per reading.
func fakeClock() func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestPerf_PipelineRun(t *testing.T) {
	t.Parallel()

	out := []float64{0}
	s := newSum([]float64{1, 1}, out)
	res, err := task.NewPerf(s).PipelineRun(task.PerfAttr{NumRunning: 4, Clock: fakeClock()})
	require.NoError(t, err)
	require.Equal(t, task.KindPipeline, res.Kind)
	require.Equal(t, 4, res.Runs)
	require.InDelta(t, 0.25, res.TimeSec, 1e-12) // one clock tick over four runs
	require.Equal(t, 4, s.runs)
	require.Equal(t, 2.0, out[0])
	task.PrintStatistic("sum", res)
}

func TestPerf_TaskRun(t *testing.T) {
	t.Parallel()

	out := []float64{0}
	s := newSum([]float64{2, 3}, out)
	res, err := task.NewPerf(s).TaskRun(task.PerfAttr{Clock: fakeClock()})
	require.NoError(t, err)
	require.Equal(t, task.KindTaskRun, res.Kind)
	require.Equal(t, task.DefaultNumRunning, res.Runs)
	require.Equal(t, task.DefaultNumRunning, s.runs)
	require.InDelta(t, 0.1, res.TimeSec, 1e-12)
	require.Equal(t, 5.0, out[0])
	require.Equal(t, "task_run", res.Kind.String())
}

func TestPerf_Errors(t *testing.T) {
	t.Parallel()

	s := newSum([]float64{1}, []float64{0})
	_, err := task.NewPerf(s).PipelineRun(task.PerfAttr{NumRunning: -1})
	require.ErrorIs(t, err, task.ErrPerfAttr)
	_, err = task.NewPerf(s).TaskRun(task.PerfAttr{NumRunning: -1})
	require.ErrorIs(t, err, task.ErrPerfAttr)

	bad := newSum([]float64{1}, []float64{0, 0})
	_, err = task.NewPerf(bad).PipelineRun(task.PerfAttr{NumRunning: 1})
	require.ErrorIs(t, err, task.ErrValidation)
	_, err = task.NewPerf(bad).TaskRun(task.PerfAttr{NumRunning: 1})
	require.ErrorIs(t, err, task.ErrValidation)
}
