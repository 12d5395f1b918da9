// SPDX-License-Identifier: MIT
// Package saliency: sentinel error set.

package saliency

import "errors"

var (
	// ErrNoFiles indicates an empty attribution-file list.
	ErrNoFiles = errors.New("saliency: no attribution files given")

	// ErrBadPixelCount indicates a non-positive covariance pixel count.
	ErrBadPixelCount = errors.New("saliency: covariance pixel count must be > 0")

	// ErrMissingVariable indicates an attribution file lacking the gradient
	// or saliency field.
	ErrMissingVariable = errors.New("saliency: attribution variable missing")

	// ErrBadRank indicates a field without the expected five dimensions.
	ErrBadRank = errors.New("saliency: attribution field must be 5-dimensional")

	// ErrShapeMismatch indicates gradient and saliency fields disagreeing
	// in shape, or files disagreeing in coarsened spatial shape.
	ErrShapeMismatch = errors.New("saliency: shape mismatch")

	// ErrCoarsening indicates that the original and covariance resolutions
	// are not related by an exact integer stride — a data-integrity
	// problem upstream, never silently corrected.
	ErrCoarsening = errors.New("saliency: coarsening factor is not an exact integer fit")
)
