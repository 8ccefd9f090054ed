// SPDX-License-Identifier: MIT

package matmul

import (
	"context"

	"github.com/katalvlaran/cannon/cannon"
	"github.com/katalvlaran/cannon/matrix"
	"github.com/katalvlaran/cannon/task"
)

// operands is the state shared by both tasks.
type operands struct {
	task.Lifecycle

	data  *task.Data
	shape shape
	a, b  *matrix.Dense
	c     *matrix.Dense
}

func (o *operands) Validation() bool {
	if err := o.Enter(task.StageValidated); err != nil {
		return false
	}
	s, err := validateData(o.data)
	if err == nil {
		o.shape = s
	}

	return o.Finish(task.StageValidated, err)
}

// PreProcessing copies the inputs into Dense operands. Non-finite values are
// accepted and propagate through the product.
func (o *operands) PreProcessing() bool {
	if err := o.Enter(task.StagePreProcessed); err != nil {
		return false
	}
	var err error
	o.a, err = matrix.NewDenseFrom(o.shape.rowsA, o.shape.colsA, o.shape.a, matrix.WithNoValidateNaNInf())
	if err == nil {
		o.b, err = matrix.NewDenseFrom(o.shape.rowsB, o.shape.colsB, o.shape.b, matrix.WithNoValidateNaNInf())
	}
	o.c = nil

	return o.Finish(task.StagePreProcessed, err)
}

// PostProcessing copies the product into the caller's output buffer.
func (o *operands) PostProcessing() bool {
	if err := o.Enter(task.StagePostProcessed); err != nil {
		return false
	}

	return o.Finish(task.StagePostProcessed, o.c.CopyInto(o.shape.c))
}

// Sequential multiplies with the triple-loop reference.
type Sequential struct {
	operands
}

// NewSequential returns the reference task for data.
func NewSequential(data *task.Data) *Sequential {
	return &Sequential{operands: operands{data: data}}
}

// Run computes C = A × B with matrix.Mul.
func (s *Sequential) Run() bool {
	if err := s.Enter(task.StageRan); err != nil {
		return false
	}
	res, err := matrix.Mul(s.a, s.b)
	if err == nil {
		s.c = res.(*matrix.Dense)
	}

	return s.Finish(task.StageRan, err)
}

// Cannon multiplies on a worker grid with cannon.Multiply.
type Cannon struct {
	operands

	opts   []cannon.Option
	report cannon.Report
}

// NewCannon returns the distributed task for data; opts go to cannon.Multiply.
func NewCannon(data *task.Data, opts ...cannon.Option) *Cannon {
	return &Cannon{operands: operands{data: data}, opts: opts}
}

// Run computes C = A × B with cannon.Multiply.
func (c *Cannon) Run() bool {
	if err := c.Enter(task.StageRan); err != nil {
		return false
	}
	res, rep, err := cannon.Multiply(context.Background(), c.a, c.b, c.opts...)
	if err == nil {
		c.c, c.report = res, rep
	}

	return c.Finish(task.StageRan, err)
}

// Report describes the most recent Run (grid, fallback, timing).
func (c *Cannon) Report() cannon.Report { return c.report }

var (
	_ task.Task = (*Sequential)(nil)
	_ task.Task = (*Cannon)(nil)
)
