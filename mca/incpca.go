// SPDX-License-Identifier: MIT
// Package mca: incremental principal-component decomposition.
//
// The update follows the sequential Karhunen–Loève scheme: each batch is
// centered on its own mean, stacked under the scaled retained components
// and a mean-correction row, and re-decomposed with one thin SVD. With the
// default batch size (5× the feature count) any input up to that many rows
// is processed in a single batch, making the result the exact PCA of the
// column-centered matrix.

package mca

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// IncrementalPCA decomposes row-sample data into principal components
// using mini-batch SVD updates. The zero value is not usable; construct
// with NewIncrementalPCA. Not safe for concurrent use.
type IncrementalPCA struct {
	nComponents int
	batchSize   int // rows per batch; < 1 selects 5×features at Fit time

	nFeatures  int
	nSeen      int
	mean       []float64
	variance   []float64
	components *mat.Dense // nComponents × nFeatures
	singular   []float64  // descending, length nComponents
}

// NewIncrementalPCA returns a decomposition retaining nComponents
// components. batchSize < 1 selects the default of 5× the feature count.
func NewIncrementalPCA(nComponents, batchSize int) *IncrementalPCA {
	return &IncrementalPCA{nComponents: nComponents, batchSize: batchSize}
}

// Fit decomposes x, replacing any previous state. Rows are samples,
// columns features; rows are consumed in batches in order.
func (p *IncrementalPCA) Fit(x mat.Matrix) error {
	rows, cols := x.Dims()
	if p.nComponents < 1 || p.nComponents > cols || p.nComponents > rows {
		return fmt.Errorf("mca: %d components for %d×%d input: %w",
			p.nComponents, rows, cols, ErrBadComponents)
	}

	batch := p.batchSize
	if batch < 1 {
		batch = 5 * cols
	}
	if batch < p.nComponents {
		return fmt.Errorf("mca: batch size %d below %d components: %w",
			batch, p.nComponents, ErrBadComponents)
	}

	p.nFeatures = cols
	p.nSeen = 0
	p.mean = nil
	p.variance = nil
	p.components = nil
	p.singular = nil

	buf := make([]float64, 0, batch*cols)
	for start := 0; start < rows; start += batch {
		end := start + batch
		if end > rows {
			end = rows
		}

		buf = buf[:0]
		for r := start; r < end; r++ {
			for c := 0; c < cols; c++ {
				buf = append(buf, x.At(r, c))
			}
		}
		chunk := mat.NewDense(end-start, cols, buf)
		if err := p.PartialFit(chunk); err != nil {
			return err
		}
	}

	return nil
}

// PartialFit folds one batch into the running decomposition. The first
// batch must contain at least nComponents rows.
func (p *IncrementalPCA) PartialFit(x *mat.Dense) error {
	rows, cols := x.Dims()
	if p.nSeen == 0 {
		p.nFeatures = cols
		if rows < p.nComponents || cols < p.nComponents {
			return fmt.Errorf("mca: first batch %d×%d below %d components: %w",
				rows, cols, p.nComponents, ErrBadComponents)
		}
	}
	if cols != p.nFeatures {
		return fmt.Errorf("mca: batch has %d features, want %d: %w", cols, p.nFeatures, ErrShapeMismatch)
	}

	batchMean, batchVar := columnMoments(x)
	updatedMean, updatedVar, nTotal := p.foldMoments(batchMean, batchVar, rows)

	// Assemble the matrix to re-decompose: scaled retained components,
	// the batch centered on its own mean, and (after the first batch) a
	// mean-correction row accounting for the shift between the running
	// mean and the batch mean.
	var aug *mat.Dense
	if p.nSeen == 0 {
		aug = mat.NewDense(rows, cols, nil)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				aug.Set(r, c, x.At(r, c)-updatedMean[c])
			}
		}
	} else {
		k := p.nComponents
		aug = mat.NewDense(k+rows+1, cols, nil)
		for r := 0; r < k; r++ {
			for c := 0; c < cols; c++ {
				aug.Set(r, c, p.singular[r]*p.components.At(r, c))
			}
		}
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				aug.Set(k+r, c, x.At(r, c)-batchMean[c])
			}
		}
		corr := math.Sqrt(float64(p.nSeen) * float64(rows) / float64(nTotal))
		for c := 0; c < cols; c++ {
			aug.Set(k+rows, c, corr*(p.mean[c]-batchMean[c]))
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(aug, mat.SVDThin); !ok {
		return fmt.Errorf("mca: partial fit on %d rows: %w", rows, ErrSVDFailed)
	}

	values := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)
	flipSigns(&v)

	k := p.nComponents
	comp := mat.NewDense(k, cols, nil)
	for r := 0; r < k; r++ {
		for c := 0; c < cols; c++ {
			comp.Set(r, c, v.At(c, r))
		}
	}

	p.components = comp
	p.singular = values[:k:k]
	p.mean = updatedMean
	p.variance = updatedVar
	p.nSeen = nTotal

	return nil
}

// foldMoments merges batch column moments into the running mean/variance
// and returns the updated values plus the new sample count.
func (p *IncrementalPCA) foldMoments(batchMean, batchVar []float64, rows int) (mean, variance []float64, nTotal int) {
	nTotal = p.nSeen + rows
	mean = make([]float64, p.nFeatures)
	variance = make([]float64, p.nFeatures)

	if p.nSeen == 0 {
		copy(mean, batchMean)
		copy(variance, batchVar)
		return mean, variance, nTotal
	}

	nOld, nNew, nAll := float64(p.nSeen), float64(rows), float64(nTotal)
	for c := 0; c < p.nFeatures; c++ {
		oldSum := p.mean[c] * nOld
		newSum := batchMean[c] * nNew
		mean[c] = (oldSum + newSum) / nAll

		// Chan et al. pairwise combination of sums of squared deviations.
		delta := batchMean[c] - p.mean[c]
		m2 := p.variance[c]*nOld + batchVar[c]*nNew + delta*delta*nOld*nNew/nAll
		variance[c] = m2 / nAll
	}

	return mean, variance, nTotal
}

// columnMoments returns per-column mean and population variance of x.
func columnMoments(x *mat.Dense) (mean, variance []float64) {
	rows, cols := x.Dims()
	mean = make([]float64, cols)
	variance = make([]float64, cols)

	for c := 0; c < cols; c++ {
		var sum float64
		for r := 0; r < rows; r++ {
			sum += x.At(r, c)
		}
		m := sum / float64(rows)

		var ss float64
		for r := 0; r < rows; r++ {
			d := x.At(r, c) - m
			ss += d * d
		}
		mean[c] = m
		variance[c] = ss / float64(rows)
	}

	return mean, variance
}

// flipSigns normalizes singular-vector signs deterministically: the
// largest-magnitude entry of each right singular vector (column of v) is
// made positive.
func flipSigns(v *mat.Dense) {
	rows, cols := v.Dims()
	for j := 0; j < cols; j++ {
		maxAbs, maxVal := 0.0, 0.0
		for i := 0; i < rows; i++ {
			if a := math.Abs(v.At(i, j)); a > maxAbs {
				maxAbs, maxVal = a, v.At(i, j)
			}
		}
		if maxVal < 0 {
			for i := 0; i < rows; i++ {
				v.Set(i, j, -v.At(i, j))
			}
		}
	}
}

// Components returns the retained components as a fresh nComponents ×
// nFeatures matrix (each row one component).
func (p *IncrementalPCA) Components() (*mat.Dense, error) {
	if p.components == nil {
		return nil, ErrNotFitted
	}

	return mat.DenseCopyOf(p.components), nil
}

// SingularValues returns the retained singular values, descending.
func (p *IncrementalPCA) SingularValues() ([]float64, error) {
	if p.singular == nil {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(p.singular))
	copy(out, p.singular)

	return out, nil
}

// Mean returns the running per-feature mean over all rows seen.
func (p *IncrementalPCA) Mean() ([]float64, error) {
	if p.mean == nil {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(p.mean))
	copy(out, p.mean)

	return out, nil
}
