// SPDX-License-Identifier: MIT

// Package covar loads the P×P covariance matrix between normalized Shapley
// values and normalized predictor values, resolving between two
// interchangeable on-disk representations.
//
// What:
//
//   - Load accepts a path ending in ".nc" (legacy single-file NetCDF) or
//     ".zarr" (preferred chunked store) and returns the matrix in memory.
//   - Resolution probes both representations: a ".nc" path with no such
//     file is retried as ".zarr", and a ".zarr" path with no such directory
//     is retried as ".nc", in that fixed order.
//   - A legacy hit triggers a one-way migration: the matrix is rewritten as
//     a chunked store next to the legacy file, then the legacy file is
//     deleted. Running Load again is safe — it resolves straight to the
//     store and never rewrites it.
//
// Why:
//
//   - Upstream tooling historically emitted single-file containers; the
//     chunked store is the format everything downstream consumes. The
//     resolver lets both coexist during the transition without callers
//     caring which one is on disk.
//
// Errors:
//
//   - ErrUnknownExtension: the path ends in neither recognized extension.
//   - ErrNotFound: neither representation exists.
//   - ErrMissingVariable: the container lacks the covariance field.
//   - ErrNotSquare / ErrBadShape: the stored matrix is not a non-empty
//     square matrix.
package covar
