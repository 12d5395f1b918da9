// SPDX-License-Identifier: MIT

// Package field provides dense stacks of rectangular grids keyed by an
// example axis — the in-memory currency of the shapmca pipeline.
//
// What:
//
//   - Stack wraps E grids of R×C float64 values in one flat, row-major
//     backing slice (example-major, then row, then column).
//   - Subsample applies uniform strided downsampling along both spatial axes.
//   - Append concatenates two stacks along the example axis, preserving
//     example order.
//   - Divide computes an elementwise quotient with deterministic zeroing of
//     every non-finite result (0/0, x/0, NaN/Inf propagation).
//   - Flatten exposes the stack as an E×(R·C) gonum matrix for linear algebra.
//
// Why:
//
//   - Attribution files arrive as ragged sets of example grids; downstream
//     MCA needs one aligned matrix per field with a stable example order.
//   - gonum's mat package is strictly two-dimensional; Stack carries the
//     third (example) axis and hands 2-D views to gonum at the boundary.
//
// Errors:
//
//   - ErrBadShape: a requested dimension is < 1.
//   - ErrLengthMismatch: backing data length does not equal E·R·C.
//   - ErrOutOfRange: an index is outside valid bounds.
//   - ErrShapeMismatch: two stacks disagree on spatial (or full) shape.
//   - ErrBadStride: a subsampling stride is < 1.
//
// Complexity: all operations are linear in the number of touched elements;
// accessors are O(1).
package field
