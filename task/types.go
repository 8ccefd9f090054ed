// SPDX-License-Identifier: MIT

package task

import "fmt"

// Kind is the element type of a Buffer.
type Kind uint8

// Buffer element types.
const (
	KindInvalid Kind = iota // zero value; never produced by constructors
	KindFloat64
	KindInt64
)

// String names the kind.
func (k Kind) String() string {
	switch k {
	case KindFloat64:
		return "float64"
	case KindInt64:
		return "int64"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Buffer is a typed view of a caller-owned slice. It never copies.
type Buffer struct {
	kind Kind
	f64  []float64
	i64  []int64
}

// Float64s wraps v as a float64 buffer. A nil v gives a nil buffer of that kind.
func Float64s(v []float64) Buffer { return Buffer{kind: KindFloat64, f64: v} }

// Int64s wraps v as an int64 buffer.
func Int64s(v []int64) Buffer { return Buffer{kind: KindInt64, i64: v} }

// Kind returns the element type.
func (b Buffer) Kind() Kind { return b.kind }

// IsNil reports whether the underlying slice is nil.
func (b Buffer) IsNil() bool {
	switch b.kind {
	case KindFloat64:
		return b.f64 == nil
	case KindInt64:
		return b.i64 == nil
	default:
		return true
	}
}

// Len returns the number of elements.
func (b Buffer) Len() int {
	switch b.kind {
	case KindFloat64:
		return len(b.f64)
	case KindInt64:
		return len(b.i64)
	default:
		return 0
	}
}

// Float64 returns the slice of a float64 buffer.
// Errors: ErrBufferKind for any other kind.
func (b Buffer) Float64() ([]float64, error) {
	if b.kind != KindFloat64 {
		return nil, fmt.Errorf("Float64 on %s buffer: %w", b.kind, ErrBufferKind)
	}

	return b.f64, nil
}

// Int64 returns the slice of an int64 buffer.
// Errors: ErrBufferKind for any other kind.
func (b Buffer) Int64() ([]int64, error) {
	if b.kind != KindInt64 {
		return nil, fmt.Errorf("Int64 on %s buffer: %w", b.kind, ErrBufferKind)
	}

	return b.i64, nil
}

// Data describes the buffers of one task invocation.
//   - Inputs / Outputs are the buffers themselves.
//   - InputCounts / OutputCounts carry the shape metadata the task defines
//     (e.g. row and column counts), not necessarily one entry per buffer.
type Data struct {
	inputs       []Buffer
	inputCounts  []int
	outputs      []Buffer
	outputCounts []int
}

// NewData bundles the descriptor. Slices are kept, not copied.
func NewData(inputs []Buffer, inputCounts []int, outputs []Buffer, outputCounts []int) *Data {
	return &Data{inputs: inputs, inputCounts: inputCounts, outputs: outputs, outputCounts: outputCounts}
}

// GetInputs returns the input buffers.
func (d *Data) GetInputs() []Buffer { return d.inputs }

// GetInputCounts returns the input shape metadata.
func (d *Data) GetInputCounts() []int { return d.inputCounts }

// GetOutputs returns the output buffers.
func (d *Data) GetOutputs() []Buffer { return d.outputs }

// GetOutputCounts returns the output shape metadata.
func (d *Data) GetOutputCounts() []int { return d.outputCounts }

// Task is a kernel with the four-stage lifecycle. Each stage reports success
// as a boolean; a false stage must leave output buffers untouched unless it is
// PostProcessing itself.
type Task interface {
	Validation() bool
	PreProcessing() bool
	Run() bool
	PostProcessing() bool
}
