// SPDX-License-Identifier: MIT
// Package covar: two-format resolver, loaders, and the one-way legacy
// migration.

package covar

import (
	"fmt"
	"os"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/cyclonewatch/shapmca/zstore"
)

const (
	// LegacyExt is the single-file NetCDF container extension.
	LegacyExt = ".nc"

	// StoreExt is the chunked-store directory extension.
	StoreExt = ".zarr"

	// CovarianceVar is the field name holding the matrix in both formats.
	CovarianceVar = "covariance"

	// PixelDim labels both axes of the matrix.
	PixelDim = "pixel"
)

// Load returns the P×P covariance matrix referenced by path, resolving
// between the legacy and chunked representations and migrating a legacy
// hit to the chunked store (writing the store, then deleting the legacy
// file). Entry [i,j] is the covariance between the normalized Shapley
// value at pixel i and the normalized predictor value at pixel j.
func Load(path string) (*mat.Dense, error) {
	resolved, err := resolve(path)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(resolved, StoreExt) {
		return loadStore(resolved)
	}

	m, err := loadLegacy(resolved)
	if err != nil {
		return nil, err
	}
	if err := migrate(resolved, m); err != nil {
		return nil, err
	}

	return m, nil
}

// resolve probes both representations with an extension swap. The order is
// fixed: a missing ".nc" file is retried as ".zarr"; a missing ".zarr"
// directory is then retried as ".nc". Whatever path survives must exist.
func resolve(path string) (string, error) {
	if !strings.HasSuffix(path, LegacyExt) && !strings.HasSuffix(path, StoreExt) {
		return "", fmt.Errorf("covar: %q: %w", path, ErrUnknownExtension)
	}

	if strings.HasSuffix(path, LegacyExt) && !isFile(path) {
		path = strings.TrimSuffix(path, LegacyExt) + StoreExt
	}
	if strings.HasSuffix(path, StoreExt) && !isDir(path) {
		path = strings.TrimSuffix(path, StoreExt) + LegacyExt
	}

	if strings.HasSuffix(path, StoreExt) && isDir(path) {
		return path, nil
	}
	if strings.HasSuffix(path, LegacyExt) && isFile(path) {
		return path, nil
	}

	return "", fmt.Errorf("covar: %q: %w", path, ErrNotFound)
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

// loadStore reads the matrix from a chunked store.
func loadStore(path string) (*mat.Dense, error) {
	log.Info().Str("path", path).Msg("reading covariance matrix from chunked store")

	ds, err := zstore.Read(path)
	if err != nil {
		return nil, fmt.Errorf("covar: %w", err)
	}
	v := ds.Var(CovarianceVar)
	if v == nil {
		return nil, fmt.Errorf("covar: store %s: %w", path, ErrMissingVariable)
	}
	if len(v.Dims) != 2 {
		return nil, fmt.Errorf("covar: store %s has %d dims: %w", path, len(v.Dims), ErrBadShape)
	}
	n, _ := ds.DimLen(v.Dims[0])

	return asSquare(v.Values, n, n)
}

// loadLegacy reads the matrix from the single-file NetCDF container.
func loadLegacy(path string) (*mat.Dense, error) {
	log.Info().Str("path", path).Msg("reading covariance matrix from legacy file")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("covar: opening %s: %w", path, err)
	}
	defer f.Close()

	cf, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("covar: parsing %s: %w", path, err)
	}
	if !hasVariable(cf, CovarianceVar) {
		return nil, fmt.Errorf("covar: file %s: %w", path, ErrMissingVariable)
	}

	lengths := cf.Header.Lengths(CovarianceVar)
	if len(lengths) != 2 {
		return nil, fmt.Errorf("covar: file %s has %d dims: %w", path, len(lengths), ErrBadShape)
	}

	n := 1
	for _, l := range lengths {
		n *= l
	}
	buf := make([]float64, n)
	if _, err := cf.Reader(CovarianceVar, nil, nil).Read(buf); err != nil {
		return nil, fmt.Errorf("covar: reading %s: %w", path, err)
	}

	return asSquare(buf, lengths[0], lengths[1])
}

// asSquare validates shape and wraps values as a gonum matrix.
func asSquare(values []float64, rows, cols int) (*mat.Dense, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("covar: %dx%d: %w", rows, cols, ErrBadShape)
	}
	if rows != cols {
		return nil, fmt.Errorf("covar: %dx%d: %w", rows, cols, ErrNotSquare)
	}

	return mat.NewDense(rows, cols, values), nil
}

// hasVariable reports whether the NetCDF header declares name.
func hasVariable(cf *cdf.File, name string) bool {
	for _, v := range cf.Header.Variables() {
		if v == name {
			return true
		}
	}

	return false
}

// migrate performs the one-way legacy-to-chunked migration: write the
// store beside the legacy file, then delete the legacy file. The overall
// Load flow is idempotent because once the legacy file is gone, resolution
// lands on the store and this path never runs again.
func migrate(legacyPath string, m *mat.Dense) error {
	storePath := strings.TrimSuffix(legacyPath, LegacyExt) + StoreExt
	log.Info().Str("path", storePath).Msg("migrating covariance matrix to chunked store")

	if err := writeStore(storePath, m); err != nil {
		return err
	}
	if err := os.Remove(legacyPath); err != nil {
		return fmt.Errorf("covar: removing legacy file %s: %w", legacyPath, err)
	}

	return nil
}

// writeStore persists the matrix as a chunked store at full precision, so
// both representations load to identical values.
func writeStore(path string, m *mat.Dense) error {
	n, _ := m.Dims()

	ds := zstore.NewDataset()
	if err := ds.AddDim(PixelDim, n); err != nil {
		return fmt.Errorf("covar: %w", err)
	}

	values := make([]float64, n*n)
	for i := 0; i < n; i++ {
		copy(values[i*n:(i+1)*n], m.RawRowView(i))
	}
	if err := ds.AddVariable(CovarianceVar, []string{PixelDim, PixelDim}, zstore.Float64, values); err != nil {
		return fmt.Errorf("covar: %w", err)
	}

	return zstore.Write(path, ds, zstore.WriteOptions{})
}

// WriteLegacy persists a covariance matrix as the legacy single-file
// container. Provided for upstream tooling and fixtures; the pipeline
// itself only reads this format.
func WriteLegacy(path string, m *mat.Dense) error {
	rows, cols := m.Dims()
	if rows != cols {
		return fmt.Errorf("covar: %dx%d: %w", rows, cols, ErrNotSquare)
	}

	h := cdf.NewHeader([]string{PixelDim}, []int{rows})
	h.AddVariable(CovarianceVar, []string{PixelDim, PixelDim}, []float64{0})
	h.Define()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("covar: creating %s: %w", path, err)
	}
	defer f.Close()

	cf, err := cdf.Create(f, h)
	if err != nil {
		return fmt.Errorf("covar: writing header to %s: %w", path, err)
	}

	values := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		copy(values[i*cols:(i+1)*cols], m.RawRowView(i))
	}
	end := cf.Header.Lengths(CovarianceVar)
	start := make([]int, len(end))
	if _, err := cf.Writer(CovarianceVar, start, end).Write(values); err != nil {
		return fmt.Errorf("covar: writing %s: %w", path, err)
	}
	if err := cdf.UpdateNumRecs(f); err != nil {
		return fmt.Errorf("covar: finalizing %s: %w", path, err)
	}

	return nil
}
