// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Keep algorithmic determinism (fixed loop orders, no map iteration).
//   - Support copy-based block extraction (Block) and block placement (SetBlock)
//     used by the Cannon partition and gather phases.
//   - Enforce a numeric policy (optional rejection of NaN/Inf) from a single source of truth.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone: O(r*c); Block/SetBlock: O(size²).

package matrix

import (
	"fmt"
	"math"
	"strings"
)

// ---------- error context tags ----------

const (
	ctxAt       = "At"       // method tag used in error wrappers
	ctxSet      = "Set"      // method tag used in error wrappers
	ctxApply    = "Apply"    // method tag used in error wrappers
	ctxBlock    = "Block"    // tag for Dense.Block
	ctxSetBlock = "SetBlock" // tag for Dense.SetBlock
	ctxCopyInto = "CopyInto" // tag for Dense.CopyInto
)

// ---------- Formatting literals  ----------
const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
// Stable, human-friendly messages; preserves sentinel via %w.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
//   - validateNaNInf enables optional NaN/Inf rejection in Set (policy default from options.go).
type Dense struct {
	r, c           int       // row and column counts
	data           []float64 // contiguous row-major storage (len == r*c)
	validateNaNInf bool      // numeric guard: reject NaN/Inf in Set when true
}

// Compile-time assertions for interface & fmt.Stringer conformance.
var (
	_ Matrix       = (*Dense)(nil) // *Dense implements our public Matrix interface
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense creates an r×c zero matrix using row-major storage.
// MAIN DESCRIPTION:
//   - Public constructor for Dense with strict shape validation and default numeric policy.
//
// Implementation:
//   - Stage 1: validate rows>0 && cols>0; else ErrInvalidDimensions.
//   - Stage 2: allocate zero-filled buffer and initialize policy.
//
// Errors:
//   - ErrInvalidDimensions (shape contract violation).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
//
// AI-Hints:
//   - The Cannon accumulator relies on this zero fill; never reuse a buffer
//     without clearing it.
func NewDense(rows, cols int) (*Dense, error) {
	// Validate shape.
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	// Allocate a contiguous flat buffer; make() zero-fills it deterministically.
	buf := make([]float64, rows*cols)

	return &Dense{
		r:              rows,
		c:              cols,
		data:           buf,
		validateNaNInf: DefaultValidateNaNInf,
	}, nil
}

// NewDenseFrom builds an r×c Dense from a row-major slice (the slice is copied).
// MAIN DESCRIPTION:
//   - Boundary constructor for caller-owned flat buffers (task inputs, fixtures).
//
// Implementation:
//   - Stage 1: validate shape and len(data) == rows*cols.
//   - Stage 2: enforce numeric policy over every value.
//   - Stage 3: copy into a fresh buffer.
//
// Errors:
//   - ErrInvalidDimensions, ErrDimensionMismatch (length), ErrNaNInf (policy).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDenseFrom(rows, cols int, data []float64, opts ...Option) (*Dense, error) {
	o := gatherOptions(opts...)
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("NewDenseFrom: len %d != %d*%d: %w", len(data), rows, cols, ErrDimensionMismatch)
	}

	var idx int
	if o.validateNaNInf {
		for idx = 0; idx < len(data); idx++ {
			if math.IsNaN(data[idx]) || math.IsInf(data[idx], 0) {
				return nil, denseErrorf(ctxSet, idx/cols, idx%cols, ErrNaNInf)
			}
		}
	}

	buf := make([]float64, len(data))
	copy(buf, data)

	return &Dense{r: rows, c: cols, data: buf, validateNaNInf: o.validateNaNInf}, nil
}

// Rows returns the row count. No side effects.
// Complexity: O(1).
func (m *Dense) Rows() int { return m.r }

// Cols returns the column count. No side effects.
// Complexity: O(1).
func (m *Dense) Cols() int { return m.c }

// Shape packs Rows() and Cols() into a single call for convenience.
// Complexity: O(1).
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// indexOf computes the row-major offset or returns ErrOutOfRange.
// Public methods (At/Set) wrap the sentinel with coordinates and method name.
// Complexity: O(1).
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, ErrOutOfRange
	}
	if col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	// Row-major offset: i*c + j.
	return row*m.c + col, nil
}

// At returns the value at (row, col) or ErrOutOfRange.
// Never panics on out-of-range; returns a wrapped sentinel.
// Complexity: O(1).
func (m *Dense) At(row, col int) (float64, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err) // wrap with context
	}

	return m.data[off], nil
}

// Set stores v at (row, col) or returns an error (bounds or numeric policy).
// MAIN DESCRIPTION:
//   - Safe element write with optional finite-only policy.
//
// Implementation:
//   - Stage 1: compute offset via indexOf (bounds check).
//   - Stage 2: enforce numeric policy (reject NaN/±Inf when enabled).
//   - Stage 3: write into flat buffer.
//
// Errors:
//   - ErrOutOfRange for bounds; ErrNaNInf for invalid numbers.
//
// Complexity:
//   - Time O(1), Space O(1).
func (m *Dense) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err) // wrap with context
	}
	// Numeric policy: optional finite-only enforcement.
	if m.validateNaNInf && (math.IsNaN(v) || math.IsInf(v, 0)) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[off] = v // direct flat write

	return nil
}

// Clone returns a deep copy (new buffer, same numeric policy).
// Complexity: O(r*c) time and space.
func (m *Dense) Clone() Matrix {
	cp := make([]float64, len(m.data)) // allocate same length
	copy(cp, m.data)                   // deep copy

	return &Dense{
		r:              m.r,
		c:              m.c,
		data:           cp,
		validateNaNInf: m.validateNaNInf, // preserve guard policy
	}
}

// Values returns a row-major copy of the backing buffer.
// Complexity: O(r*c).
func (m *Dense) Values() []float64 {
	out := make([]float64, len(m.data))
	copy(out, m.data)

	return out
}

// CopyInto writes the row-major contents into a caller-owned buffer of
// exactly Rows()*Cols() elements.
//
// Errors:
//   - ErrDimensionMismatch when len(dst) differs from the element count.
//
// Complexity:
//   - Time O(r*c), Space O(1).
func (m *Dense) CopyInto(dst []float64) error {
	if len(dst) != len(m.data) {
		return fmt.Errorf("Dense.%s: len %d != %d: %w", ctxCopyInto, len(dst), len(m.data), ErrDimensionMismatch)
	}
	copy(dst, m.data)

	return nil
}

// String HUMAN-READABLE dump of rows for diagnostics.
// Implementation:
//   - Stage 1: iterate rows/cols deterministically.
//   - Stage 2: write values into strings.Builder with standard delimiters.
//
// Complexity:
//   - Time O(r*c), Space O(r*c) for formatting.
//
// AI-Hints:
//   - For large matrices prefer printing a few rows/cols or summarize.
func (m *Dense) String() string {
	var b strings.Builder
	var i, j, base int
	for i = 0; i < m.r; i++ { // iterate rows deterministically
		b.WriteString(_fmtRowOpen) // open row
		base = i * m.c
		for j = 0; j < m.c; j++ { // iterate cols
			b.WriteString(fmt.Sprintf("%g", m.data[base+j]))
			if j+1 < m.c {
				b.WriteString(_fmtSep) // separate values with comma + space
			}
		}
		b.WriteString(_fmtRowClose) // close row
	}

	return b.String()
}

// Block copies the size×size window whose top-left corner is (r0, c0).
// MAIN DESCRIPTION:
//   - Materialize one grid tile as an independent Block (copy, not a view),
//     so its ownership can move between workers.
//
// Implementation:
//   - Stage 1: validate the window lies inside the matrix.
//   - Stage 2: copy `size` contiguous doubles per tile row at stride Cols().
//
// Errors:
//   - ErrBadShape when size<=0 or the window overflows the matrix.
//
// Determinism:
//   - Fixed row order; single allocation.
//
// Complexity:
//   - Time O(size²), Space O(size²).
func (m *Dense) Block(r0, c0, size int) (Block, error) {
	if size <= 0 || r0 < 0 || c0 < 0 || r0+size > m.r || c0+size > m.c {
		return Block{}, fmt.Errorf("Dense.%s(%d,%d,%d): %w", ctxBlock, r0, c0, size, ErrBadShape)
	}

	out := make([]float64, size*size)
	var i, src int
	for i = 0; i < size; i++ {
		src = (r0+i)*m.c + c0
		copy(out[i*size:(i+1)*size], m.data[src:src+size]) // one tile row
	}

	return Block{Size: size, Data: out}, nil
}

// SetBlock writes b into the window whose top-left corner is (r0, c0).
// MAIN DESCRIPTION:
//   - Row-major block-to-matrix unflattening used by the result gatherer:
//     for each local row, copy b.Size contiguous doubles into the row slice of
//     the destination at stride Cols().
//
// Errors:
//   - ErrBlockSize when b is malformed; ErrBadShape when the window overflows.
//   - ErrNaNInf when the numeric policy is on and b carries a non-finite value
//     (nothing is written in that case).
//
// Complexity:
//   - Time O(size²), Space O(1).
func (m *Dense) SetBlock(r0, c0 int, b Block) error {
	if err := ValidateBlock(b); err != nil {
		return fmt.Errorf("Dense.%s(%d,%d): %w", ctxSetBlock, r0, c0, err)
	}
	if r0 < 0 || c0 < 0 || r0+b.Size > m.r || c0+b.Size > m.c {
		return fmt.Errorf("Dense.%s(%d,%d,%d): %w", ctxSetBlock, r0, c0, b.Size, ErrBadShape)
	}
	if m.validateNaNInf {
		for idx, v := range b.Data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return denseErrorf(ctxSetBlock, r0+idx/b.Size, c0+idx%b.Size, ErrNaNInf)
			}
		}
	}

	var i, dst int
	for i = 0; i < b.Size; i++ {
		dst = (r0+i)*m.c + c0
		copy(m.data[dst:dst+b.Size], b.Data[i*b.Size:(i+1)*b.Size])
	}

	return nil
}

// Apply replaces each element with f(i,j,v) in-place.
// MAIN DESCRIPTION:
//   - In-place map with policy enforcement and deterministic order.
//
// Implementation:
//   - Stage 1: nested loops - double for-loop over rows then cols; compute new value via f.
//   - Stage 2: reject NaN/Inf if policy enabled.
//   - Stage 3: write back.
//
// Behavior highlights:
//   - Early error aborts; elements written before the error remain updated.
//
// Returns:
//   - error: ErrNaNInf when transformer produced non-finite (if policy ON).
//
// Complexity:
//   - Time O(r*c), Space O(1).
func (m *Dense) Apply(f func(i, j int, v float64) float64) error {
	var i, j, base int // predeclare loop counters and base offset
	var v, nv float64  // old and new values

	for i = 0; i < m.r; i++ { // iterate rows
		base = i * m.c            // base offset for row i
		for j = 0; j < m.c; j++ { // iterate columns
			v = m.data[base+j] // read current value
			nv = f(i, j, v)    // compute new value
			if m.validateNaNInf && (math.IsNaN(nv) || math.IsInf(nv, 0)) {
				return denseErrorf(ctxApply, i, j, ErrNaNInf) // wrap with coordinates
			}
			m.data[base+j] = nv // write back new value
		}
	}

	return nil // success
}
