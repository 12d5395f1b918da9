// SPDX-License-Identifier: MIT
// Package saliency: multi-file aggregation at covariance resolution.

package saliency

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/cyclonewatch/shapmca/field"
)

// coarseningRelTol bounds how far the float coarsening factor may sit from
// the nearest integer.
const coarseningRelTol = 0.01

// Aggregate reads the attribution files in order and returns two aligned
// stacks at covariance resolution: the (coarsened) Shapley stack and the
// normalized predictor stack (gradient/saliency with non-finite masking).
//
// The coarsening factor is inferred once, from the first file, as the
// integer nearest sqrt(origPixels/covarPixels); the two resolutions must be
// related by that stride exactly (ErrCoarsening otherwise). Example order
// follows file order and is preserved end-to-end.
func Aggregate(paths []string, covarPixels int) (shapley, predictor *field.Stack, err error) {
	if len(paths) == 0 {
		return nil, nil, ErrNoFiles
	}
	if covarPixels < 1 {
		return nil, nil, fmt.Errorf("saliency: %d covariance pixels: %w", covarPixels, ErrBadPixelCount)
	}

	stride := 0
	for _, path := range paths {
		log.Info().Str("path", path).Msg("reading attribution file")

		grad, sal, err := ReadFile(path)
		if err != nil {
			return nil, nil, err
		}

		if stride == 0 {
			if stride, err = inferStride(grad.Pixels(), covarPixels); err != nil {
				return nil, nil, fmt.Errorf("%w (file %s)", err, path)
			}
			log.Info().Int("stride", stride).Msg("inferred spatial coarsening factor")
		}

		if grad, err = grad.Subsample(stride); err != nil {
			return nil, nil, fmt.Errorf("saliency: %s: %w", path, err)
		}
		if sal, err = sal.Subsample(stride); err != nil {
			return nil, nil, fmt.Errorf("saliency: %s: %w", path, err)
		}

		pred, err := field.Divide(grad, sal)
		if err != nil {
			return nil, nil, fmt.Errorf("saliency: %s: %w", path, err)
		}

		if shapley == nil {
			shapley, predictor = grad, pred
			continue
		}
		if shapley, err = shapley.Append(grad); err != nil {
			return nil, nil, fmt.Errorf("saliency: %s: %v: %w", path, err, ErrShapeMismatch)
		}
		if predictor, err = predictor.Append(pred); err != nil {
			return nil, nil, fmt.Errorf("saliency: %s: %v: %w", path, err, ErrShapeMismatch)
		}
	}

	return shapley, predictor, nil
}

// inferStride derives the integer coarsening factor relating the original
// and covariance resolutions. Two guards, both ErrCoarsening: the float
// factor must sit within 1% relative tolerance of its nearest integer, and
// the pixel counts must be related by that integer exactly — a near-miss
// count (e.g. 401 original pixels against 100 covariance pixels) is a
// data-integrity failure, not something to round away.
func inferStride(origPixels, covarPixels int) (int, error) {
	factor := math.Sqrt(float64(origPixels) / float64(covarPixels))
	stride := int(math.Round(factor))

	if stride < 1 || !scalar.EqualWithinRel(float64(stride), factor, coarseningRelTol) {
		return 0, fmt.Errorf("saliency: %d original vs %d covariance pixels (factor %.4f): %w",
			origPixels, covarPixels, factor, ErrCoarsening)
	}
	if stride*stride*covarPixels != origPixels {
		return 0, fmt.Errorf("saliency: %d original vs %d covariance pixels (stride %d): %w",
			origPixels, covarPixels, stride, ErrCoarsening)
	}

	return stride, nil
}
