// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for common validation checks.
//  - Keep kernels/facades minimal by delegating shape/nil/block checks here.
//  - Return tagged sentinel errors so call sites can wrap uniformly.
//
// Determinism & Performance:
//  - All checks are pure, deterministic and allocate nothing.
//
// Note:
//  - Each composite validator follows a fixed sequence (e.g. NotNil → Shape).
//  - Each validator describes what it validates and what it assumes (e.g. no nil check).

package matrix

import "fmt"

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil – Ensures the matrix reference is non-nil.
// A typed nil *Dense stored in the interface is rejected as well.
//
// Returns ErrNilMatrix if m == nil.
// Complexity: O(1).
// AI-Hints: Use as the first step in composite validations.
func ValidateNotNil(m Matrix) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}
	if d, ok := m.(*Dense); ok && d == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSameShape – Ensures matrices a and b have equal dimensions.
//
// Implementation: Assumes a and b are not nil (caller must ensure).
// Return: nil or wrapped ErrDimensionMismatch.
// Complexity: O(1).
func ValidateSameShape(a, b Matrix) error {
	if a.Rows() != b.Rows() {
		return validatorErrorf("ValidateSameShape: Rows", ErrDimensionMismatch)
	}
	if a.Cols() != b.Cols() {
		return validatorErrorf("ValidateSameShape: Columns", ErrDimensionMismatch)
	}

	return nil
}

// ValidateBinarySameShape – Composite: NotNil(a) → NotNil(b) → SameShape.
//
// Errors: Combines ErrNilMatrix and ErrDimensionMismatch.
// Complexity: O(1).
func ValidateBinarySameShape(a, b Matrix) error {
	if err := ValidateNotNil(a); err != nil {
		return validatorErrorf("ValidateBinarySameShape", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return validatorErrorf("ValidateBinarySameShape", err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return validatorErrorf("ValidateBinarySameShape", err)
	}

	return nil
}

// ValidateSquare checks that m is non-nil and square (Rows == Cols).
//
// Errors: ErrNilMatrix if nil, ErrNonSquare if not square.
// Complexity: O(1).
// AI-Hints: Use before factorization methods and the Cannon entry points.
func ValidateSquare(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return validatorErrorf("ValidateSquare", err)
	}
	if m.Rows() != m.Cols() {
		return validatorErrorf("ValidateSquare", ErrNonSquare)
	}

	return nil
}

// ValidateMulCompatible – Composite: NotNil(a) → NotNil(b) → a.Cols == b.Rows.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch.
// Complexity: O(1).
func ValidateMulCompatible(a, b Matrix) error {
	if err := ValidateNotNil(a); err != nil {
		return validatorErrorf("ValidateMulCompatible", err)
	}
	if err := ValidateNotNil(b); err != nil {
		return validatorErrorf("ValidateMulCompatible", err)
	}
	if a.Cols() != b.Rows() {
		return validatorErrorf("ValidateMulCompatible", ErrDimensionMismatch)
	}

	return nil
}

// ValidateSquareMul – Composite: MulCompatible → Square(a) → Square(b).
// This is the contract of the distributed path: both operands N×N.
//
// Errors: ErrNilMatrix, ErrDimensionMismatch, ErrNonSquare.
// Complexity: O(1).
func ValidateSquareMul(a, b Matrix) error {
	if err := ValidateMulCompatible(a, b); err != nil {
		return validatorErrorf("ValidateSquareMul", err)
	}
	if err := ValidateSquare(a); err != nil {
		return validatorErrorf("ValidateSquareMul", err)
	}
	if err := ValidateSquare(b); err != nil {
		return validatorErrorf("ValidateSquareMul", err)
	}

	return nil
}

// ValidateBlock checks Size > 0 and len(Data) == Size*Size.
// The check divides instead of squaring Size, which could overflow.
// Complexity: O(1).
func ValidateBlock(b Block) error {
	if b.Size <= 0 || len(b.Data)%b.Size != 0 || len(b.Data)/b.Size != b.Size {
		return validatorErrorf("ValidateBlock", ErrBlockSize)
	}

	return nil
}

// ValidateBlocksConformable checks every block is well-formed and of equal size.
// Complexity: O(k) for k blocks.
func ValidateBlocksConformable(blocks ...Block) error {
	for i := range blocks {
		if err := ValidateBlock(blocks[i]); err != nil {
			return validatorErrorf("ValidateBlocksConformable", err)
		}
		if blocks[i].Size != blocks[0].Size {
			return validatorErrorf("ValidateBlocksConformable", ErrBlockSize)
		}
	}

	return nil
}
