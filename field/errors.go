// SPDX-License-Identifier: MIT
// Package field: sentinel error set.
// All public operations return these sentinels (possibly wrapped with
// context via fmt.Errorf("...: %w", ...)); callers match with errors.Is.
// No public entry point panics on user-triggered conditions.

package field

import "errors"

var (
	// ErrBadShape is returned when a requested dimension is non-positive.
	ErrBadShape = errors.New("field: dimensions must be > 0")

	// ErrLengthMismatch is returned when provided backing data does not
	// contain exactly examples·rows·cols elements.
	ErrLengthMismatch = errors.New("field: data length does not match shape")

	// ErrOutOfRange indicates an example, row, or column index outside
	// valid bounds.
	ErrOutOfRange = errors.New("field: index out of range")

	// ErrShapeMismatch indicates two stacks whose shapes must agree but do
	// not (Append requires equal spatial shape; Divide requires equal full
	// shape).
	ErrShapeMismatch = errors.New("field: shape mismatch")

	// ErrBadStride is returned for subsampling strides < 1.
	ErrBadStride = errors.New("field: stride must be >= 1")
)
