// SPDX-License-Identifier: MIT
// Package covar: sentinel error set.

package covar

import "errors"

var (
	// ErrUnknownExtension indicates a path ending in neither ".nc" nor
	// ".zarr" — a format error, not a missing-input error.
	ErrUnknownExtension = errors.New("covar: path must end in .nc or .zarr")

	// ErrNotFound indicates that neither the legacy file nor the chunked
	// store exists for the requested matrix.
	ErrNotFound = errors.New("covar: covariance matrix not found in either format")

	// ErrMissingVariable indicates a container that exists but holds no
	// covariance field under the expected name.
	ErrMissingVariable = errors.New("covar: covariance variable missing")

	// ErrNotSquare indicates a stored matrix whose two dimensions disagree.
	ErrNotSquare = errors.New("covar: covariance matrix is not square")

	// ErrBadShape indicates an empty or non-2-D stored matrix.
	ErrBadShape = errors.New("covar: covariance matrix has invalid shape")
)
