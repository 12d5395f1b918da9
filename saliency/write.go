// SPDX-License-Identifier: MIT
// Package saliency: attribution-file writing. The pipeline only reads
// attribution files; this writer mirrors the upstream producer's layout
// for tooling and fixtures.

package saliency

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
)

// WriteFile persists full-resolution gradient and saliency fields as one
// attribution file. Both value slices must hold
// examples·rows·cols·lags·channels elements in on-disk dimension order
// (example, grid_row, grid_column, lag_time, channel).
func WriteFile(path string, grad, sal []float64, examples, rows, cols, lags, channels int) error {
	if examples < 1 || rows < 1 || cols < 1 || lags < 1 || channels < 1 {
		return fmt.Errorf("saliency: shape (%d,%d,%d,%d,%d): %w",
			examples, rows, cols, lags, channels, ErrBadRank)
	}
	total := examples * rows * cols * lags * channels
	if len(grad) != total || len(sal) != total {
		return fmt.Errorf("saliency: have %d/%d values for %d cells: %w",
			len(grad), len(sal), total, ErrShapeMismatch)
	}

	dims := []string{ExampleDim, GridRowDim, GridColumnDim, LagTimeDim, ChannelDim}
	h := cdf.NewHeader(dims, []int{examples, rows, cols, lags, channels})
	h.AddVariable(GradVar, dims, []float64{0})
	h.AddVariable(SaliencyVar, dims, []float64{0})
	h.Define()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saliency: creating %s: %w", path, err)
	}
	defer f.Close()

	cf, err := cdf.Create(f, h)
	if err != nil {
		return fmt.Errorf("saliency: writing header to %s: %w", path, err)
	}

	for name, values := range map[string][]float64{GradVar: grad, SaliencyVar: sal} {
		end := cf.Header.Lengths(name)
		start := make([]int, len(end))
		if _, err := cf.Writer(name, start, end).Write(values); err != nil {
			return fmt.Errorf("saliency: writing %q to %s: %w", name, path, err)
		}
	}
	if err := cdf.UpdateNumRecs(f); err != nil {
		return fmt.Errorf("saliency: finalizing %s: %w", path, err)
	}

	return nil
}
