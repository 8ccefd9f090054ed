// SPDX-License-Identifier: MIT

// Package matrix - square tiles exchanged by grid workers.
//
// Purpose:
//   - Allocate zeroed accumulators (NewBlock).
//   - Provide the local multiply-accumulate step of the systolic loop (MulAddBlock).
//
// Complexity quicksheet:
//   - NewBlock: O(s²); MulAddBlock: O(s³); Clone: O(s²).

package matrix

import "fmt"

const opMulAddBlock = "MulAddBlock"

// NewBlock allocates a zero-filled size×size tile.
// Errors: ErrInvalidDimensions when size <= 0.
func NewBlock(size int) (Block, error) {
	if size <= 0 {
		return Block{}, ErrInvalidDimensions
	}

	return Block{Size: size, Data: make([]float64, size*size)}, nil
}

// Clone returns an independent copy of the tile.
func (b Block) Clone() Block {
	cp := make([]float64, len(b.Data))
	copy(cp, b.Data)

	return Block{Size: b.Size, Data: cp}
}

// At reads element (i, j) of the tile without bounds checks beyond the slice's own.
// Intended for tests and diagnostics; kernels index Data directly.
func (b Block) At(i, j int) float64 { return b.Data[i*b.Size+j] }

// MulAddBlock accumulates c += a × b over three conformable tiles.
// MAIN DESCRIPTION:
//   - One MULTIPLY step of the Cannon loop; c is mutated in place.
//
// Implementation:
//   - Stage 1: validate all three tiles have the same size.
//   - Stage 2: i→k→j triple loop on the flat buffers; for fixed (i,j) the
//     contributions are added in increasing k, i.e. left-to-right.
//
// Behavior highlights:
//   - Plain IEEE-754 multiply and add; no zero skipping, so NaN/Inf propagate.
//   - a and b are read-only.
//
// Errors:
//   - ErrBlockSize when the tiles are malformed or differ in size.
//
// Complexity:
//   - Time O(s³), Space O(1).
//
// AI-Hints:
//   - c must not alias a or b.
func MulAddBlock(c, a, b Block) error {
	if err := ValidateBlocksConformable(c, a, b); err != nil {
		return fmt.Errorf("%s: %w", opMulAddBlock, err)
	}

	s := c.Size
	var i, k, j int
	var rowA, rowB, rowC int
	var av float64
	for i = 0; i < s; i++ {
		rowA = i * s
		rowC = i * s
		for k = 0; k < s; k++ {
			av = a.Data[rowA+k]
			rowB = k * s
			for j = 0; j < s; j++ {
				c.Data[rowC+j] += av * b.Data[rowB+j]
			}
		}
	}

	return nil
}
