package combination

import "errors"

// Common combination errors
var (
	// ErrInvalidCombination indicates a token that is not x, y, or a three
	// character binary expression
	ErrInvalidCombination = errors.New("invalid combination")

	// ErrInvalidOperation indicates an operator outside * / + -
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrDimensionMismatch indicates the operands of a binary expression have
	// different feature dimensions
	ErrDimensionMismatch = errors.New("tensor dims must match")

	// ErrInvalidDimension indicates a non-positive feature dimension
	ErrInvalidDimension = errors.New("feature dimension must be positive")

	// ErrInputDimension indicates input vectors whose shape disagrees with the
	// combination being evaluated
	ErrInputDimension = errors.New("input dimension mismatch")
)
