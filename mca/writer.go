// SPDX-License-Identifier: MIT
// Package mca: result persistence. All seven outputs go to one chunked
// labeled store at float32 — an explicit space/precision tradeoff.

package mca

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/cyclonewatch/shapmca/zstore"
)

// Axis names of the output store.
const (
	ModeDim       = "mode"
	GridRowDim    = "grid_row"
	GridColumnDim = "grid_column"
	PixelDim      = "pixel"
)

// Variable names of the output store.
const (
	ShapleySingularVar    = "shapley_singular_vectors"
	PredictorSingularVar  = "predictor_singular_vectors"
	ShapleyCoeffVar       = "shapley_expansion_coeffs"
	PredictorCoeffVar     = "predictor_expansion_coeffs"
	EigenvaluesVar        = "eigenvalues"
	RegressedShapleyVar   = "regressed_shapley"
	RegressedPredictorVar = "regressed_predictor"
)

// Write persists every MCA output to a chunked labeled store at path,
// replacing any pre-existing store there (remove-then-recreate; never a
// partial overwrite). All variables are stored at float32.
func Write(path string, res *Result) error {
	pixels, modes := res.ShapleySingular.Dims()
	rows := res.RegressedShapley.Rows()
	cols := res.RegressedShapley.Cols()

	if len(res.Eigenvalues) != modes || res.RegressedShapley.Examples() != modes {
		return fmt.Errorf("mca: result with %d modes, %d eigenvalues, %d regressed maps: %w",
			modes, len(res.Eigenvalues), res.RegressedShapley.Examples(), ErrShapeMismatch)
	}
	if rows*cols != pixels {
		return fmt.Errorf("mca: %d×%d grid vs %d pixels: %w", rows, cols, pixels, ErrShapeMismatch)
	}

	log.Info().Str("path", path).Msg("writing MCA results")

	ds := zstore.NewDataset()
	for _, dim := range []struct {
		name string
		n    int
	}{
		{ModeDim, modes},
		{GridRowDim, rows},
		{GridColumnDim, cols},
		{PixelDim, pixels},
	} {
		if err := ds.AddDim(dim.name, dim.n); err != nil {
			return fmt.Errorf("mca: %w", err)
		}
	}

	vars := []struct {
		name   string
		dims   []string
		values []float64
	}{
		{ShapleySingularVar, []string{PixelDim, ModeDim}, denseValues(res.ShapleySingular)},
		{PredictorSingularVar, []string{PixelDim, ModeDim}, denseValues(res.PredictorSingular)},
		{ShapleyCoeffVar, []string{ModeDim, ModeDim}, denseValues(res.ShapleyCoeff)},
		{PredictorCoeffVar, []string{ModeDim, ModeDim}, denseValues(res.PredictorCoeff)},
		{EigenvaluesVar, []string{ModeDim}, append([]float64(nil), res.Eigenvalues...)},
		{RegressedShapleyVar, []string{ModeDim, GridRowDim, GridColumnDim}, res.RegressedShapley.Raw()},
		{RegressedPredictorVar, []string{ModeDim, GridRowDim, GridColumnDim}, res.RegressedPredictor.Raw()},
	}
	for _, v := range vars {
		if err := ds.AddVariable(v.name, v.dims, zstore.Float32, v.values); err != nil {
			return fmt.Errorf("mca: %w", err)
		}
	}

	return zstore.Write(path, ds, zstore.WriteOptions{})
}

// denseValues copies a gonum matrix into one row-major slice.
func denseValues(m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	out := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		copy(out[i*cols:(i+1)*cols], m.RawRowView(i))
	}

	return out
}
