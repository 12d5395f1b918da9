// SPDX-License-Identifier: MIT

// Package mca is the analytic core: maximum-covariance analysis coupling
// Shapley-value attribution fields with normalized predictor fields.
//
// What:
//
//	Run executes a fixed six-step sequence; each step depends on the one
//	before it, and any failure aborts immediately with the step named:
//
//	 1. Flatten both E×R×C stacks to E×P (P = R·C).
//	 2. Standardize each flattened matrix globally — one scalar mean and
//	    one sample (ddof=1) standard deviation over ALL entries, not
//	    per-pixel. This choice sets the scale of every downstream quantity.
//	 3. Fit IncrementalPCA with E components on the P×P covariance matrix:
//	    predictor singular vectors = transposed components, eigenvalues =
//	    squared singular values (descending by construction).
//	 4. Derive the coupled Shapley singular vectors algebraically:
//	    cov · V · diag(1/sqrt(eigenvalues)). Every retained eigenvalue must
//	    be positive and finite (ErrNonPositiveEigenvalue otherwise).
//	 5. Expansion coefficients per field = standardized field · that
//	    field's singular vectors; each coefficient column standardized
//	    independently (per-mode mean and ddof=1 std, per field). A zero or
//	    non-finite column std propagates into the coefficients rather than
//	    aborting: with a single example there is no sample variance per
//	    mode, and the coefficients and regressed maps come out NaN while
//	    the singular vectors and eigenvalues remain valid.
//	 6. K = E independent per-mode regressions:
//	    regressed[k] = (fieldᵀ · coeff[:,k]) / E, reshaped to R×C.
//
//	Write persists all seven outputs to a chunked labeled store at float32,
//	keyed by the mode, grid_row, grid_column, and pixel axes.
//
// Why:
//
//   - K is deliberately tied to E (one mode per example); it is fixed at
//     construction and never resized.
//   - The PCA is incremental (mini-batch SVD updates with a running mean)
//     so the covariance matrix can be decomposed without forming anything
//     larger than one batch plus the retained components; under the default
//     batch size one batch covers the whole matrix and the decomposition
//     is exact.
//
// Numerical conventions: every standard deviation is the sample (ddof=1)
// kind. Shape and eigenvalue violations are failures; a degenerate per-mode
// std in step 5 propagates as NaN instead. No retries anywhere.
//
// Errors:
//
//   - ErrBadComponents: component count < 1 or exceeding matrix bounds.
//   - ErrShapeMismatch: covariance/stack dimensions disagree.
//   - ErrDegenerate: a zero or non-finite global standard deviation.
//   - ErrNonPositiveEigenvalue: a retained eigenvalue ≤ 0 or non-finite.
//   - ErrNotFitted: component access before a successful fit.
package mca
