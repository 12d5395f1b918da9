// SPDX-License-Identifier: MIT

// Package saliency reads per-example attribution files and aggregates them
// into the two aligned example stacks the MCA engine consumes.
//
// What:
//
//   - Attribution files are labeled containers holding a gradient-of-input
//     field and a saliency field, each with dimensions
//     example × grid_row × grid_column × lag_time × channel.
//   - ReadFile extracts one fixed slice per field: the last lag time and
//     channel 0.
//   - Aggregate walks an ordered file list, infers the spatial coarsening
//     factor once from the first file (the integer nearest
//     sqrt(origPixels/covarPixels)), strides both fields down to covariance
//     resolution, derives the normalized predictor field as the elementwise
//     quotient gradient/saliency with non-finite entries zeroed, and
//     concatenates everything along the example axis in input order.
//
// Why:
//
//   - Attribution is computed at full model resolution; the covariance
//     matrix lives at a coarser grid. Everything downstream requires the
//     two resolutions to be reconciled by one integer stride, so a
//     non-integer ratio is a data-integrity failure, never rounded away.
//
// Errors:
//
//   - ErrNoFiles: an empty file list.
//   - ErrBadPixelCount: a non-positive covariance pixel count.
//   - ErrMissingVariable: a file lacking either field.
//   - ErrShapeMismatch: fields disagreeing in shape, within a file or
//     across files after coarsening.
//   - ErrCoarsening: the inferred coarsening factor is not an exact
//     integer fit for the two resolutions (consistency error, aborts).
package saliency
