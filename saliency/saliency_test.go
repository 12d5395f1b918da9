package saliency_test

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cyclonewatch/shapmca/saliency"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

// cellValue encodes every 5-D index into a distinct value so slicing bugs
// surface as value mismatches, not just shape mismatches.
func cellValue(e, r, c, l, ch int) float64 {
	return float64(e)*1e4 + float64(r)*1e3 + float64(c)*1e2 + float64(l)*10 + float64(ch)
}

// writeFixture emits an attribution file whose grad field is cellValue and
// whose saliency field is cellValue+0.5.
func writeFixture(t *testing.T, path string, examples, rows, cols, lags, channels int) {
	t.Helper()
	total := examples * rows * cols * lags * channels
	grad := make([]float64, total)
	sal := make([]float64, total)
	var i int
	for e := 0; e < examples; e++ {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				for l := 0; l < lags; l++ {
					for ch := 0; ch < channels; ch++ {
						grad[i] = cellValue(e, r, c, l, ch)
						sal[i] = cellValue(e, r, c, l, ch) + 0.5
						i++
					}
				}
			}
		}
	}
	require.NoError(t, saliency.WriteFile(path, grad, sal, examples, rows, cols, lags, channels))
}

//----------------------------------------------------------------------------//
// ReadFile
//----------------------------------------------------------------------------//

// TestReadFile_SliceSelection verifies the fixed slice: last lag time,
// channel 0.
func TestReadFile_SliceSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attr.nc")
	writeFixture(t, path, 2, 3, 4, 3, 2)

	grad, sal, err := saliency.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, grad.Examples())
	require.Equal(t, 3, grad.Rows())
	require.Equal(t, 4, grad.Cols())

	for e := 0; e < 2; e++ {
		for r := 0; r < 3; r++ {
			for c := 0; c < 4; c++ {
				want := cellValue(e, r, c, 2, 0) // lag index 2 = last of 3, channel 0
				got, err := grad.At(e, r, c)
				require.NoError(t, err)
				require.Equal(t, want, got, "grad at (%d,%d,%d)", e, r, c)

				got, err = sal.At(e, r, c)
				require.NoError(t, err)
				require.Equal(t, want+0.5, got, "saliency at (%d,%d,%d)", e, r, c)
			}
		}
	}
}

// TestReadFile_Missing covers the unreadable-file path.
func TestReadFile_Missing(t *testing.T) {
	_, _, err := saliency.ReadFile(filepath.Join(t.TempDir(), "absent.nc"))
	require.Error(t, err)
}

//----------------------------------------------------------------------------//
// Coarsening inference
//----------------------------------------------------------------------------//

// TestAggregate_StrideInference covers exact fits and the consistency
// failures: 400 original pixels over 100 covariance pixels resolve to
// stride 2; 401 must abort rather than round.
func TestAggregate_StrideInference(t *testing.T) {
	t.Run("Exact400Over100", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "attr.nc")
		writeFixture(t, path, 1, 20, 20, 2, 1)

		shap, pred, err := saliency.Aggregate([]string{path}, 100)
		require.NoError(t, err)
		require.Equal(t, 10, shap.Rows())
		require.Equal(t, 10, shap.Cols())
		require.Equal(t, 10, pred.Rows())
		require.Equal(t, 10, pred.Cols())
	})

	t.Run("NearMiss401Over100", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "attr.nc")
		writeFixture(t, path, 1, 401, 1, 2, 1)

		_, _, err := saliency.Aggregate([]string{path}, 100)
		if !errors.Is(err, saliency.ErrCoarsening) {
			t.Errorf("Aggregate error = %v; want ErrCoarsening", err)
		}
	})

	t.Run("FarFromInteger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "attr.nc")
		writeFixture(t, path, 1, 21, 21, 2, 1) // 441/121 -> factor 1.909

		_, _, err := saliency.Aggregate([]string{path}, 121)
		if !errors.Is(err, saliency.ErrCoarsening) {
			t.Errorf("Aggregate error = %v; want ErrCoarsening", err)
		}
	})
}

//----------------------------------------------------------------------------//
// Aggregation
//----------------------------------------------------------------------------//

// TestAggregate_OrderAndValues stacks two files and checks example order,
// the predictor quotient, and the non-finite masking rule end to end.
func TestAggregate_OrderAndValues(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.nc")
	pathB := filepath.Join(dir, "b.nc")

	// 2×2 grids at full resolution, stride 1 (covarPixels = 4): values are
	// taken as-is. File A: grad 2, saliency 4 -> predictor 0.5. File B:
	// grad 3 with one zero-saliency cell -> masked 0 there, 3 elsewhere.
	constSlice := func(n int, v float64) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = v
		}
		return out
	}

	require.NoError(t, saliency.WriteFile(pathA,
		constSlice(4, 2), constSlice(4, 4), 1, 2, 2, 1, 1))

	salB := []float64{1, 1, 0, 1}
	require.NoError(t, saliency.WriteFile(pathB,
		constSlice(4, 3), salB, 1, 2, 2, 1, 1))

	shap, pred, err := saliency.Aggregate([]string{pathA, pathB}, 4)
	require.NoError(t, err)
	require.Equal(t, 2, shap.Examples())
	require.Equal(t, 2, pred.Examples())

	require.Equal(t, []float64{2, 2, 2, 2, 3, 3, 3, 3}, shap.Raw(), "file order must be preserved")
	require.Equal(t, []float64{0.5, 0.5, 0.5, 0.5, 3, 3, 0, 3}, pred.Raw())
}

// TestAggregate_CrossFileShapeMismatch: a second file at a different
// resolution must abort with a consistency error.
func TestAggregate_CrossFileShapeMismatch(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.nc")
	pathB := filepath.Join(dir, "b.nc")
	writeFixture(t, pathA, 1, 4, 4, 1, 1)
	writeFixture(t, pathB, 1, 6, 6, 1, 1)

	_, _, err := saliency.Aggregate([]string{pathA, pathB}, 4) // stride 2 from file A
	if !errors.Is(err, saliency.ErrShapeMismatch) {
		t.Errorf("Aggregate error = %v; want ErrShapeMismatch", err)
	}
}

// TestAggregate_InputValidation covers the trivial precondition failures.
func TestAggregate_InputValidation(t *testing.T) {
	if _, _, err := saliency.Aggregate(nil, 100); !errors.Is(err, saliency.ErrNoFiles) {
		t.Errorf("empty list error = %v; want ErrNoFiles", err)
	}
	if _, _, err := saliency.Aggregate([]string{"x.nc"}, 0); !errors.Is(err, saliency.ErrBadPixelCount) {
		t.Errorf("zero pixels error = %v; want ErrBadPixelCount", err)
	}
}

// TestAggregate_ManyExamples sanity-checks a larger randomized stack for
// shape bookkeeping across three files.
func TestAggregate_ManyExamples(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	dir := t.TempDir()

	var paths []string
	for i, examples := range []int{3, 1, 5} {
		total := examples * 8 * 8 * 2 * 3
		grad := make([]float64, total)
		sal := make([]float64, total)
		for j := range grad {
			grad[j] = rng.NormFloat64()
			sal[j] = rng.NormFloat64()
		}
		path := filepath.Join(dir, []string{"a", "b", "c"}[i]+".nc")
		require.NoError(t, saliency.WriteFile(path, grad, sal, examples, 8, 8, 2, 3))
		paths = append(paths, path)
	}

	shap, pred, err := saliency.Aggregate(paths, 16) // stride 2: 8x8 -> 4x4
	require.NoError(t, err)
	require.Equal(t, 9, shap.Examples())
	require.Equal(t, 4, shap.Rows())
	require.Equal(t, 4, shap.Cols())
	require.Equal(t, 9, pred.Examples())
}
