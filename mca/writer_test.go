package mca_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cyclonewatch/shapmca/mca"
	"github.com/cyclonewatch/shapmca/zstore"
)

// TestWrite_AllFields runs the engine on the fixture and checks that the
// store holds all seven outputs with the right axes and float32 precision.
func TestWrite_AllFields(t *testing.T) {
	res, _, _, _ := runFixture(t) // K=4 modes, 5×5 grid, 25 pixels
	path := filepath.Join(t.TempDir(), "mca.zarr")

	require.NoError(t, mca.Write(path, res))

	ds, err := zstore.Read(path)
	require.NoError(t, err)

	for dim, want := range map[string]int{
		mca.ModeDim:       4,
		mca.GridRowDim:    5,
		mca.GridColumnDim: 5,
		mca.PixelDim:      25,
	} {
		n, ok := ds.DimLen(dim)
		require.True(t, ok, "dim %s", dim)
		require.Equal(t, want, n, "dim %s", dim)
	}

	wantDims := map[string][]string{
		mca.ShapleySingularVar:    {mca.PixelDim, mca.ModeDim},
		mca.PredictorSingularVar:  {mca.PixelDim, mca.ModeDim},
		mca.ShapleyCoeffVar:       {mca.ModeDim, mca.ModeDim},
		mca.PredictorCoeffVar:     {mca.ModeDim, mca.ModeDim},
		mca.EigenvaluesVar:        {mca.ModeDim},
		mca.RegressedShapleyVar:   {mca.ModeDim, mca.GridRowDim, mca.GridColumnDim},
		mca.RegressedPredictorVar: {mca.ModeDim, mca.GridRowDim, mca.GridColumnDim},
	}
	require.Len(t, ds.Vars(), len(wantDims))
	for name, dims := range wantDims {
		v := ds.Var(name)
		require.NotNil(t, v, "variable %s", name)
		require.Equal(t, dims, v.Dims, "variable %s", name)
		require.Equal(t, zstore.Float32, v.DType, "variable %s", name)
	}

	// float32 round-trip: eigenvalues agree within single precision.
	got := ds.Var(mca.EigenvaluesVar).Values
	for i, want := range res.Eigenvalues {
		require.InDelta(t, want, got[i], 1e-4*(1+want))
	}
}

// TestWrite_Overwrites replaces a pre-existing store wholesale.
func TestWrite_Overwrites(t *testing.T) {
	res, _, _, _ := runFixture(t)
	path := filepath.Join(t.TempDir(), "mca.zarr")

	stale := zstore.NewDataset()
	require.NoError(t, stale.AddDim("junk", 1))
	require.NoError(t, stale.AddVariable("junk", []string{"junk"}, zstore.Float64, []float64{1}))
	require.NoError(t, zstore.Write(path, stale, zstore.WriteOptions{}))

	require.NoError(t, mca.Write(path, res))

	ds, err := zstore.Read(path)
	require.NoError(t, err)
	require.Nil(t, ds.Var("junk"))
	require.NotNil(t, ds.Var(mca.EigenvaluesVar))
}

// TestWrite_InconsistentResult rejects results whose axes disagree.
func TestWrite_InconsistentResult(t *testing.T) {
	res, _, _, _ := runFixture(t)
	res.Eigenvalues = res.Eigenvalues[:2] // now K disagrees

	err := mca.Write(filepath.Join(t.TempDir(), "mca.zarr"), res)
	if !errors.Is(err, mca.ErrShapeMismatch) {
		t.Errorf("Write error = %v; want ErrShapeMismatch", err)
	}
}
