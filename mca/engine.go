// SPDX-License-Identifier: MIT
// Package mca: the six-step engine. Step order is fixed; every failure is
// wrapped with the step named and propagates immediately.

package mca

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/cyclonewatch/shapmca/field"
)

// Result holds every MCA output. K (mode count) always equals E (example
// count); it is fixed when Run constructs the result and never resized.
type Result struct {
	// ShapleySingular and PredictorSingular are P×K; each column is the
	// unit-scaled singular vector of one coupled mode.
	ShapleySingular   *mat.Dense
	PredictorSingular *mat.Dense

	// ShapleyCoeff and PredictorCoeff are E×K expansion coefficients,
	// standardized per mode (zero mean, unit ddof=1 std, per column).
	ShapleyCoeff   *mat.Dense
	PredictorCoeff *mat.Dense

	// Eigenvalues has length K, descending: squared singular values of the
	// covariance-matrix PCA.
	Eigenvalues []float64

	// RegressedShapley and RegressedPredictor are K×R×C: each mode's
	// regression of the full example set back onto the grid.
	RegressedShapley   *field.Stack
	RegressedPredictor *field.Stack
}

// Run executes the full maximum-covariance analysis. cov is the P×P
// covariance matrix between normalized Shapley and predictor values;
// shapley and predictor are aligned E×R×C stacks with R·C = P.
//
// Run takes ownership of both stacks: their contents are standardized in
// place so raw and standardized copies never coexist in memory. cov is
// consumed read-only.
func Run(cov *mat.Dense, shapley, predictor *field.Stack) (*Result, error) {
	pixels, pCols := cov.Dims()
	if pixels != pCols {
		return nil, fmt.Errorf("mca: covariance matrix %d×%d: %w", pixels, pCols, ErrShapeMismatch)
	}
	if shapley.Examples() != predictor.Examples() ||
		shapley.Rows() != predictor.Rows() || shapley.Cols() != predictor.Cols() {
		return nil, fmt.Errorf("mca: shapley (%d,%d,%d) vs predictor (%d,%d,%d): %w",
			shapley.Examples(), shapley.Rows(), shapley.Cols(),
			predictor.Examples(), predictor.Rows(), predictor.Cols(), ErrShapeMismatch)
	}
	if shapley.Pixels() != pixels {
		return nil, fmt.Errorf("mca: %d grid pixels vs %d covariance pixels: %w",
			shapley.Pixels(), pixels, ErrShapeMismatch)
	}

	examples := shapley.Examples()
	rows, cols := shapley.Rows(), shapley.Cols()

	// Steps 1–2: flatten and standardize globally, in place. The stacks'
	// raw contents are consumed here; only the standardized views remain.
	normShapley, err := standardizeGlobal(shapley)
	if err != nil {
		return nil, fmt.Errorf("mca: standardizing shapley field: %w", err)
	}
	normPredictor, err := standardizeGlobal(predictor)
	if err != nil {
		return nil, fmt.Errorf("mca: standardizing predictor field: %w", err)
	}
	shapley, predictor = nil, nil // raw stack references dropped

	// Step 3: incremental PCA on the covariance matrix, one component per
	// example.
	log.Info().Int("components", examples).Msg("running incremental PCA on covariance matrix")
	pca := NewIncrementalPCA(examples, 0)
	if err := pca.Fit(cov); err != nil {
		return nil, fmt.Errorf("mca: fitting PCA: %w", err)
	}

	components, err := pca.Components()
	if err != nil {
		return nil, fmt.Errorf("mca: fitting PCA: %w", err)
	}
	singular, err := pca.SingularValues()
	if err != nil {
		return nil, fmt.Errorf("mca: fitting PCA: %w", err)
	}

	predictorSV := mat.DenseCopyOf(components.T()) // P×K
	eigenvalues := make([]float64, examples)
	for i, s := range singular {
		eigenvalues[i] = s * s
	}

	// Step 4: couple the Shapley basis algebraically.
	log.Info().Msg("computing shapley singular vectors")
	shapleySV, err := coupleShapley(cov, predictorSV, eigenvalues)
	if err != nil {
		return nil, fmt.Errorf("mca: coupling shapley singular vectors: %w", err)
	}

	// Step 5: expansion coefficients, standardized per mode.
	log.Info().Msg("computing expansion coefficients")
	shapleyCoeff := mat.NewDense(examples, examples, nil)
	shapleyCoeff.Mul(normShapley, shapleySV)
	predictorCoeff := mat.NewDense(examples, examples, nil)
	predictorCoeff.Mul(normPredictor, predictorSV)

	standardizeColumns(shapleyCoeff)
	standardizeColumns(predictorCoeff)

	// Step 6: K independent per-mode regressions for each field.
	log.Info().Msg("regressing fields onto singular vectors")
	regShapley, err := regressModes(normShapley, shapleyCoeff, rows, cols)
	if err != nil {
		return nil, fmt.Errorf("mca: regressing shapley field: %w", err)
	}
	regPredictor, err := regressModes(normPredictor, predictorCoeff, rows, cols)
	if err != nil {
		return nil, fmt.Errorf("mca: regressing predictor field: %w", err)
	}

	return &Result{
		ShapleySingular:    shapleySV,
		PredictorSingular:  predictorSV,
		ShapleyCoeff:       shapleyCoeff,
		PredictorCoeff:     predictorCoeff,
		Eigenvalues:        eigenvalues,
		RegressedShapley:   regShapley,
		RegressedPredictor: regPredictor,
	}, nil
}

// standardizeGlobal subtracts one scalar mean and divides by one scalar
// sample (ddof=1) standard deviation, computed over ALL entries of the
// stack — deliberately not per-pixel. The stack's backing slice is reused
// as the returned matrix's storage.
func standardizeGlobal(s *field.Stack) (*mat.Dense, error) {
	data := s.Raw()
	mean := stat.Mean(data, nil)
	std := stat.StdDev(data, nil)
	if std == 0 || math.IsNaN(std) || math.IsInf(std, 0) {
		return nil, fmt.Errorf("mca: global std %v: %w", std, ErrDegenerate)
	}

	for i, v := range data {
		data[i] = (v - mean) / std
	}

	return mat.NewDense(s.Examples(), s.Pixels(), data), nil
}

// coupleShapley derives the Shapley singular vectors from the predictor
// ones: cov · V · diag(1/sqrt(eigenvalues)). Eigenvalue positivity is the
// data-validity precondition; violations abort.
func coupleShapley(cov, predictorSV *mat.Dense, eigenvalues []float64) (*mat.Dense, error) {
	for i, e := range eigenvalues {
		if e <= 0 || math.IsNaN(e) || math.IsInf(e, 0) {
			return nil, fmt.Errorf("mca: eigenvalue %d = %v: %w", i, e, ErrNonPositiveEigenvalue)
		}
	}

	pixels, k := predictorSV.Dims()
	out := mat.NewDense(pixels, k, nil)
	out.Mul(cov, predictorSV)

	for j := 0; j < k; j++ {
		inv := 1 / math.Sqrt(eigenvalues[j])
		for i := 0; i < pixels; i++ {
			out.Set(i, j, out.At(i, j)*inv)
		}
	}

	return out, nil
}

// standardizeColumns standardizes each column of m independently to zero
// mean and unit sample (ddof=1) standard deviation, in place. A zero or
// non-finite column std is not rejected: the quotient propagates, so a
// single-example run yields NaN coefficients (there is no sample variance
// over one mode value) while the singular vectors and eigenvalues upstream
// stay valid.
func standardizeColumns(m *mat.Dense) {
	rows, cols := m.Dims()
	col := make([]float64, rows)

	for j := 0; j < cols; j++ {
		mat.Col(col, j, m)
		mean := stat.Mean(col, nil)
		std := stat.StdDev(col, nil)
		for i := 0; i < rows; i++ {
			m.Set(i, j, (col[i]-mean)/std)
		}
	}
}

// regressModes runs one regression per mode: column k of the result (before
// reshaping) is (normᵀ · coeff[:,k]) / E. The K iterations are independent;
// no state is shared between them.
func regressModes(norm, coeff *mat.Dense, rows, cols int) (*field.Stack, error) {
	examples, pixels := norm.Dims()
	_, modes := coeff.Dims()

	out := make([]float64, modes*pixels)
	colBuf := make([]float64, examples)
	for k := 0; k < modes; k++ {
		mat.Col(colBuf, k, coeff)
		coeffVec := mat.NewVecDense(examples, colBuf)

		var projected mat.VecDense
		projected.MulVec(norm.T(), coeffVec)

		row := out[k*pixels : (k+1)*pixels]
		for p := 0; p < pixels; p++ {
			row[p] = projected.AtVec(p) / float64(examples)
		}
	}

	return field.NewStackFrom(out, modes, rows, cols)
}
