// SPDX-License-Identifier: MIT

// Package zstore implements a directory-based chunked, labeled array store —
// the preferred on-disk representation for the covariance matrix and the
// only representation for MCA results.
//
// What:
//
//   - A Dataset holds ordered named dimensions and named variables; each
//     variable references its dimensions by name and carries float64 values
//     plus an on-disk dtype (float32 or float64).
//   - Write persists a Dataset as a directory: one JSON metadata document
//     (.zmeta.json) plus, per variable, a subdirectory of raw little-endian
//     chunk files split along the variable's leading dimension.
//   - Read reconstructs the full Dataset in float64 regardless of stored
//     dtype.
//
// Why:
//
//   - Chunked stores allow partial rewrites and streaming by downstream
//     tooling; a single opaque file does not.
//   - Storing analysis outputs at float32 halves the footprint — an explicit
//     space/precision tradeoff chosen per variable, not globally.
//
// Layout:
//
//	store.zarr/
//	  .zmeta.json          — dims, variables, dtypes, chunk sizes
//	  eigenvalues/0        — chunk 0 of variable "eigenvalues"
//	  regressed_shapley/0  — chunk files are raw little-endian arrays
//	  regressed_shapley/1    split along the leading dimension
//
// Write semantics: remove-then-recreate. Any pre-existing tree at the target
// path is deleted first; on a mid-write failure the partial tree is removed,
// so the caller never observes a half-written store.
//
// Errors:
//
//   - ErrNotStore: the path is missing or lacks valid metadata.
//   - ErrUnknownDim: a variable references an undeclared dimension.
//   - ErrBadVariable: variable values disagree with its dimension lengths,
//     or a name collides.
//   - ErrBadDType: unrecognized on-disk dtype.
//   - ErrCorrupt: chunk payload sizes disagree with metadata.
package zstore
