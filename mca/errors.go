// SPDX-License-Identifier: MIT
// Package mca: sentinel error set. Engine steps wrap these with the step
// named; callers match with errors.Is.

package mca

import "errors"

var (
	// ErrBadComponents indicates a retained-component count < 1, larger
	// than the feature count, or larger than a fitting batch.
	ErrBadComponents = errors.New("mca: invalid number of components")

	// ErrShapeMismatch indicates covariance, Shapley, and predictor inputs
	// whose dimensions do not line up (P must equal R·C for both stacks,
	// and both stacks must share E, R, C).
	ErrShapeMismatch = errors.New("mca: input shapes disagree")

	// ErrDegenerate indicates a zero or non-finite standard deviation
	// during global field standardization (a constant input field).
	ErrDegenerate = errors.New("mca: degenerate standard deviation")

	// ErrNonPositiveEigenvalue indicates a retained eigenvalue that is
	// zero, negative, or non-finite — the covariance matrix violates the
	// positivity precondition and no recovery is attempted.
	ErrNonPositiveEigenvalue = errors.New("mca: non-positive eigenvalue")

	// ErrNotFitted indicates component access on an unfitted decomposition.
	ErrNotFitted = errors.New("mca: decomposition not fitted")

	// ErrSVDFailed indicates a singular value decomposition that did not
	// converge.
	ErrSVDFailed = errors.New("mca: SVD failed to converge")
)
