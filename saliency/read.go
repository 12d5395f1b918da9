// SPDX-License-Identifier: MIT
// Package saliency: attribution-file reading. Files are NetCDF containers
// with two 5-D fields; ReadFile extracts the fixed lag/channel slice.

package saliency

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"

	"github.com/cyclonewatch/shapmca/field"
)

const (
	// GradVar is the gradient-of-input field name.
	GradVar = "input_grad"

	// SaliencyVar is the saliency field name.
	SaliencyVar = "saliency"
)

// Dimension names of both attribution fields, in on-disk order.
const (
	ExampleDim    = "example"
	GridRowDim    = "grid_row"
	GridColumnDim = "grid_column"
	LagTimeDim    = "lag_time"
	ChannelDim    = "channel"
)

// Fixed slice indices: the most recent lag time and the first channel.
const (
	lagTimeIndex = -1 // negative: counted from the end
	channelIndex = 0
)

// ReadFile reads one attribution file and returns the gradient and
// saliency stacks (example × grid_row × grid_column) for the fixed
// lag-time/channel slice. Both fields must share the full 5-D shape.
func ReadFile(path string) (grad, sal *field.Stack, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("saliency: opening %s: %w", path, err)
	}
	defer f.Close()

	cf, err := cdf.Open(f)
	if err != nil {
		return nil, nil, fmt.Errorf("saliency: parsing %s: %w", path, err)
	}

	gradLens, err := fieldLengths(cf, path, GradVar)
	if err != nil {
		return nil, nil, err
	}
	salLens, err := fieldLengths(cf, path, SaliencyVar)
	if err != nil {
		return nil, nil, err
	}
	for i := range gradLens {
		if gradLens[i] != salLens[i] {
			return nil, nil, fmt.Errorf("saliency: %s: %s %v vs %s %v: %w",
				path, GradVar, gradLens, SaliencyVar, salLens, ErrShapeMismatch)
		}
	}

	if grad, err = readSlice(cf, path, GradVar, gradLens); err != nil {
		return nil, nil, err
	}
	if sal, err = readSlice(cf, path, SaliencyVar, salLens); err != nil {
		return nil, nil, err
	}

	return grad, sal, nil
}

// fieldLengths validates presence and rank of one attribution field.
func fieldLengths(cf *cdf.File, path, name string) ([]int, error) {
	found := false
	for _, v := range cf.Header.Variables() {
		if v == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("saliency: %s lacks %q: %w", path, name, ErrMissingVariable)
	}

	lengths := cf.Header.Lengths(name)
	if len(lengths) != 5 {
		return nil, fmt.Errorf("saliency: %s: %q has %d dims: %w", path, name, len(lengths), ErrBadRank)
	}

	return lengths, nil
}

// readSlice reads a full 5-D field and keeps the fixed lag/channel slice.
func readSlice(cf *cdf.File, path, name string, lens []int) (*field.Stack, error) {
	examples, rows, cols, lags, channels := lens[0], lens[1], lens[2], lens[3], lens[4]

	total := examples * rows * cols * lags * channels
	buf := make([]float64, total)
	if _, err := cf.Reader(name, nil, nil).Read(buf); err != nil {
		return nil, fmt.Errorf("saliency: reading %q from %s: %w", name, path, err)
	}

	lag := lagTimeIndex
	if lag < 0 {
		lag += lags
	}

	out := make([]float64, examples*rows*cols)
	var idx int
	for e := 0; e < examples; e++ {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				src := ((((e*rows)+r)*cols+c)*lags + lag) * channels
				out[idx] = buf[src+channelIndex]
				idx++
			}
		}
	}

	return field.NewStackFrom(out, examples, rows, cols)
}
