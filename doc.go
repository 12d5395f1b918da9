// Package shapmca post-processes convolutional-model attribution maps for
// tropical-cyclone rapid-intensification forecasts via maximum-covariance
// analysis (MCA).
//
// 🚀 What is shapmca?
//
//	A batch pipeline that couples Shapley-value attribution fields with the
//	normalized predictor fields that produced them:
//		• Covariance loading: one P×P Shapley/predictor covariance matrix,
//		  readable from two interchangeable on-disk formats
//		• Attribution aggregation: per-example gradient & saliency fields,
//		  spatially coarsened and stacked into aligned example matrices
//		• MCA engine: incremental PCA over the covariance matrix, coupled
//		  singular-vector pairs, expansion coefficients, per-mode regressions
//		• Result persistence: a chunked, labeled array store holding all
//		  seven MCA outputs at float32
//
// ✨ Why shapmca?
//
//   - Numerically explicit — sample (ddof=1) standard deviations everywhere,
//     documented non-finite masking, fail-fast on any shape or eigenvalue
//     violation
//   - Deterministic — fixed step order, fixed sign convention, example order
//     preserved end-to-end
//   - Single-shot — no retries, no partial results; the run completes or
//     aborts on first error
//
// The module is organized into focused subpackages:
//
//	field/    — dense example×row×column grid stacks (subsample, append, divide)
//	zstore/   — directory-based chunked, labeled array store
//	covar/    — covariance-matrix loader with two-format resolution & migration
//	saliency/ — attribution-file reading and aggregation
//	mca/      — the MCA engine and result writer
//	cmd/      — the shapmca command-line front end
//
// Data flow:
//
//	covar ──► mca ◄── saliency
//	             │
//	             ▼
//	          zstore
//
// See each package's doc.go for contracts, error sets, and complexity notes.
package shapmca
