package svd

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/cpuid"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomTable(t *testing.T, rows, cols int) *tensor.Table {
	t.Helper()
	rng := rand.New(rand.NewPCG(1, 2))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.Float64()*2 - 1
	}
	tbl, err := tensor.TableFromSlice(data, rows, cols)
	require.NoError(t, err)
	return tbl
}

func newBatch(t *testing.T) *Batch {
	t.Helper()
	b, err := NewBatch[float64](algorithm.DefaultDense, algorithm.WithVariant(cpuid.Generic))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestComputeShapes(t *testing.T) {
	b := newBatch(t)
	b.Input.Set(Data, randomTable(t, 100, 10))
	b.Parameter.LeftSingularMatrix = RequiredInPackedForm

	require.NoError(t, b.Compute())
	assert.Equal(t, algorithm.Validated, b.State())

	res := b.Result()
	for _, tc := range []struct {
		id   ResultID
		want tensor.Shape
	}{
		{SingularValues, tensor.Shape{10, 1}},
		{RightSingularMatrix, tensor.Shape{10, 10}},
		{LeftSingularMatrix, tensor.Shape{100, 10}},
	} {
		if diff := cmp.Diff(tc.want, res.Get(tc.id).Shape()); diff != "" {
			t.Errorf("%s shape mismatch (-want +got):\n%s", tc.id, diff)
		}
	}

	sv := tensor.TableData[float64](res.Get(SingularValues))
	for i := 1; i < len(sv); i++ {
		assert.GreaterOrEqual(t, sv[i-1], sv[i], "singular values must be descending")
	}
}

func TestReconstruction(t *testing.T) {
	b := newBatch(t)
	data := randomTable(t, 6, 3)
	b.Input.Set(Data, data)
	b.Parameter.LeftSingularMatrix = RequiredInPackedForm
	require.NoError(t, b.Compute())

	res := b.Result()
	u := res.Get(LeftSingularMatrix)
	s := tensor.TableData[float64](res.Get(SingularValues))
	vt := res.Get(RightSingularMatrix)
	for i := range 6 {
		for j := range 3 {
			var sum float64
			for k := range 3 {
				sum += tensor.At[float64](u, i, k) * s[k] * tensor.At[float64](vt, k, j)
			}
			assert.InDelta(t, tensor.At[float64](data, i, j), sum, 1e-9)
		}
	}
}

func TestLeftMatrixNotRequired(t *testing.T) {
	b := newBatch(t)
	b.Input.Set(Data, randomTable(t, 8, 4))

	require.NoError(t, b.Compute())
	assert.False(t, b.Result().Has(LeftSingularMatrix))
}

func TestFloat32(t *testing.T) {
	b, err := NewBatch[float32](algorithm.DefaultDense)
	require.NoError(t, err)
	defer b.Close()

	tbl, err := tensor.TableFromSlice([]float32{3, 0, 0, 4}, 2, 2)
	require.NoError(t, err)
	b.Input.Set(Data, tbl)
	require.NoError(t, b.Compute())

	sv := tensor.TableData[float32](b.Result().Get(SingularValues))
	assert.InDelta(t, 4, sv[0], 1e-5)
	assert.InDelta(t, 3, sv[1], 1e-5)
}

func TestAllocateIdempotent(t *testing.T) {
	in := NewInput()
	in.Set(Data, randomTable(t, 5, 2))
	par := &Parameter{LeftSingularMatrix: RequiredInPackedForm}
	res := NewResult()
	prov := tensor.HeapProvider{}

	require.True(t, res.Allocate(in, par, algorithm.DefaultDense, tensor.Float64, prov).OK())
	first := []*tensor.Table{res.Get(SingularValues), res.Get(RightSingularMatrix), res.Get(LeftSingularMatrix)}

	require.True(t, res.Allocate(in, par, algorithm.DefaultDense, tensor.Float64, prov).OK())
	assert.Same(t, first[0], res.Get(SingularValues))
	assert.Same(t, first[1], res.Get(RightSingularMatrix))
	assert.Same(t, first[2], res.Get(LeftSingularMatrix))
}

func TestPreallocatedOutputKept(t *testing.T) {
	b := newBatch(t)
	b.Input.Set(Data, randomTable(t, 7, 3))
	sv, err := tensor.NewTable(3, 1, tensor.RowMajor, tensor.Float64)
	require.NoError(t, err)
	b.Result().Set(SingularValues, sv)

	require.NoError(t, b.Compute())
	assert.Same(t, sv, b.Result().Get(SingularValues))
	assert.NotZero(t, tensor.At[float64](sv, 0, 0))
}

func TestInputValidation(t *testing.T) {
	t.Run("Missing", func(t *testing.T) {
		b := newBatch(t)
		err := b.Compute()
		assert.True(t, errors.Is(err, status.MissingRequiredInput))
		assert.False(t, b.Result().Has(SingularValues), "nothing allocated after a failed input check")
	})

	t.Run("WideMatrix", func(t *testing.T) {
		b := newBatch(t)
		b.Input.Set(Data, randomTable(t, 2, 5))
		assert.True(t, errors.Is(b.Compute(), status.ShapeMismatch))
	})

	t.Run("Packed", func(t *testing.T) {
		b := newBatch(t)
		tbl, err := tensor.NewTable(3, 3, tensor.UpperPacked, tensor.Float64)
		require.NoError(t, err)
		b.Input.Set(Data, tbl)
		assert.True(t, errors.Is(b.Compute(), status.UnsupportedLayout))
	})

	t.Run("BadParameter", func(t *testing.T) {
		b := newBatch(t)
		b.Input.Set(Data, randomTable(t, 3, 2))
		b.Parameter.LeftSingularMatrix = LeftSingular(7)
		assert.True(t, errors.Is(b.Compute(), status.InvalidParameter))
	})
}

func TestResultOnEmptyInput(t *testing.T) {
	par := &Parameter{LeftSingularMatrix: RequiredInPackedForm}
	res := NewResult()

	st := res.Allocate(NewInput(), par, algorithm.DefaultDense, tensor.Float64, tensor.HeapProvider{})
	assert.True(t, st.Has(status.MissingRequiredInput))
	assert.Zero(t, res.Len())

	st = res.Check(NewInput(), par, algorithm.DefaultDense)
	require.Len(t, st.Errors(), 1)
	assert.Equal(t, "data", st.Errors()[0].Argument)
}

func TestPrecisionMismatchSkipsKernel(t *testing.T) {
	t.Run("Input", func(t *testing.T) {
		b, err := NewBatch[float32](algorithm.DefaultDense)
		require.NoError(t, err)
		defer b.Close()
		b.Input.Set(Data, randomTable(t, 4, 2))

		err = b.Compute()
		assert.True(t, errors.Is(err, status.ShapeMismatch))
		assert.False(t, errors.Is(err, status.KernelComputationFailure))
		assert.False(t, b.Result().Has(SingularValues))
	})

	t.Run("PreallocatedOutput", func(t *testing.T) {
		b := newBatch(t)
		b.Input.Set(Data, randomTable(t, 4, 2))
		b.Parameter.LeftSingularMatrix = RequiredInPackedForm
		left, err := tensor.NewTable(4, 2, tensor.RowMajor, tensor.Float32)
		require.NoError(t, err)
		b.Result().Set(LeftSingularMatrix, left)

		err = b.Compute()
		require.True(t, errors.Is(err, status.ShapeMismatch))
		assert.Contains(t, err.Error(), "leftSingularMatrix")
		assert.Equal(t, algorithm.Failed, b.State())
		assert.Equal(t, []float64{0, 0}, tensor.TableData[float64](b.Result().Get(SingularValues)),
			"kernel must not write any output")
	})
}

func TestResultCheckReportsEveryOutput(t *testing.T) {
	in := NewInput()
	in.Set(Data, randomTable(t, 4, 2))
	res := NewResult()
	bad, err := tensor.NewTable(3, 3, tensor.RowMajor, tensor.Float64)
	require.NoError(t, err)
	res.Set(RightSingularMatrix, bad)

	st := res.Check(in, &Parameter{}, algorithm.DefaultDense)
	// Missing singular values plus the row and column mismatch of the right matrix.
	require.Len(t, st.Errors(), 3)
	assert.True(t, st.Has(status.MissingRequiredInput))
	assert.True(t, st.Has(status.ShapeMismatch))
}

func TestRegistryCoversEveryVariant(t *testing.T) {
	keys := Registry().Keys()
	assert.Len(t, keys, 2*len(cpuid.All))
}
