package covar_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cyclonewatch/shapmca/covar"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

// testMatrix returns a small deterministic 3×3 matrix.
func testMatrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		2.0, -0.5, 0.25,
		-0.5, 3.0, 1.5,
		0.25, 1.5, 4.0,
	})
}

//----------------------------------------------------------------------------//
// Resolution
//----------------------------------------------------------------------------//

// TestLoad_UnknownExtension checks the format-error path.
func TestLoad_UnknownExtension(t *testing.T) {
	_, err := covar.Load(filepath.Join(t.TempDir(), "covariance.h5"))
	if !errors.Is(err, covar.ErrUnknownExtension) {
		t.Errorf("Load error = %v; want ErrUnknownExtension", err)
	}
}

// TestLoad_NotFound checks the missing-in-both-formats path.
func TestLoad_NotFound(t *testing.T) {
	_, err := covar.Load(filepath.Join(t.TempDir(), "covariance.nc"))
	if !errors.Is(err, covar.ErrNotFound) {
		t.Errorf("Load error = %v; want ErrNotFound", err)
	}
}

// TestLoad_ExtensionSwap verifies both probe directions: asking for one
// representation while only the other exists must still succeed.
func TestLoad_ExtensionSwap(t *testing.T) {
	t.Run("AskZarrHaveNC", func(t *testing.T) {
		dir := t.TempDir()
		ncPath := filepath.Join(dir, "covariance.nc")
		require.NoError(t, covar.WriteLegacy(ncPath, testMatrix()))

		got, err := covar.Load(filepath.Join(dir, "covariance.zarr"))
		require.NoError(t, err)
		require.True(t, mat.EqualApprox(testMatrix(), got, 1e-12))
	})

	t.Run("AskNCHaveZarr", func(t *testing.T) {
		dir := t.TempDir()
		ncPath := filepath.Join(dir, "covariance.nc")
		require.NoError(t, covar.WriteLegacy(ncPath, testMatrix()))

		// First load migrates to .zarr and removes the .nc file.
		_, err := covar.Load(ncPath)
		require.NoError(t, err)

		got, err := covar.Load(ncPath)
		require.NoError(t, err)
		require.True(t, mat.EqualApprox(testMatrix(), got, 1e-12))
	})
}

//----------------------------------------------------------------------------//
// Migration
//----------------------------------------------------------------------------//

// TestLoad_MigratesLegacy verifies the one-way migration side-effect and
// that both representations load to identical matrices.
func TestLoad_MigratesLegacy(t *testing.T) {
	dir := t.TempDir()
	ncPath := filepath.Join(dir, "covariance.nc")
	zarrPath := filepath.Join(dir, "covariance.zarr")
	require.NoError(t, covar.WriteLegacy(ncPath, testMatrix()))

	fromLegacy, err := covar.Load(ncPath)
	require.NoError(t, err)

	if _, err := os.Stat(ncPath); !os.IsNotExist(err) {
		t.Fatalf("legacy file survived migration")
	}
	info, err := os.Stat(zarrPath)
	require.NoError(t, err)
	require.True(t, info.IsDir())

	fromStore, err := covar.Load(zarrPath)
	require.NoError(t, err)
	require.True(t, mat.EqualApprox(fromLegacy, fromStore, 1e-12),
		"legacy and chunked representations must load identically")
}

// TestLoad_MigrationIdempotent runs the load twice: the second call must
// succeed without error and yield the same matrix.
func TestLoad_MigrationIdempotent(t *testing.T) {
	dir := t.TempDir()
	ncPath := filepath.Join(dir, "covariance.nc")
	require.NoError(t, covar.WriteLegacy(ncPath, testMatrix()))

	first, err := covar.Load(ncPath)
	require.NoError(t, err)
	second, err := covar.Load(ncPath)
	require.NoError(t, err)

	require.True(t, mat.EqualApprox(first, second, 1e-12))
}

//----------------------------------------------------------------------------//
// Validation
//----------------------------------------------------------------------------//

// TestWriteLegacy_NotSquare rejects non-square matrices up front.
func TestWriteLegacy_NotSquare(t *testing.T) {
	err := covar.WriteLegacy(filepath.Join(t.TempDir(), "c.nc"), mat.NewDense(2, 3, nil))
	if !errors.Is(err, covar.ErrNotSquare) {
		t.Errorf("WriteLegacy error = %v; want ErrNotSquare", err)
	}
}
