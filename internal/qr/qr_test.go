package qr

import (
	"errors"
	"testing"

	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecomposition(t *testing.T) {
	b, err := NewBatch[float64](algorithm.DefaultDense)
	require.NoError(t, err)
	defer b.Close()

	data, err := tensor.TableFromSlice([]float64{
		12, -51, 4,
		6, 167, -68,
		-4, 24, -41,
		1, 2, 3,
	}, 4, 3)
	require.NoError(t, err)
	b.Input.Set(Data, data)
	require.NoError(t, b.Compute())

	q := b.Result().Get(MatrixQ)
	r := b.Result().Get(MatrixR)
	assert.Equal(t, tensor.Shape{4, 3}, q.Shape())
	assert.Equal(t, tensor.Shape{3, 3}, r.Shape())

	// R is upper triangular and Q*R reproduces the data.
	for i := range 3 {
		for j := range i {
			assert.InDelta(t, 0, tensor.At[float64](r, i, j), 1e-12)
		}
	}
	for i := range 4 {
		for j := range 3 {
			var sum float64
			for k := range 3 {
				sum += tensor.At[float64](q, i, k) * tensor.At[float64](r, k, j)
			}
			assert.InDelta(t, tensor.At[float64](data, i, j), sum, 1e-9)
		}
	}

	// Columns of Q are orthonormal.
	for a := range 3 {
		for c := range 3 {
			var dot float64
			for i := range 4 {
				dot += tensor.At[float64](q, i, a) * tensor.At[float64](q, i, c)
			}
			want := 0.0
			if a == c {
				want = 1
			}
			assert.InDelta(t, want, dot, 1e-9)
		}
	}
}

func TestResultCheck(t *testing.T) {
	in := NewInput()
	data, err := tensor.NewTable(5, 2, tensor.RowMajor, tensor.Float32)
	require.NoError(t, err)
	in.Set(Data, data)

	res := NewResult()
	packed, err := tensor.NewTable(2, 2, tensor.UpperPacked, tensor.Float32)
	require.NoError(t, err)
	res.Set(MatrixR, packed)
	q, err := tensor.NewTable(5, 3, tensor.RowMajor, tensor.Float32)
	require.NoError(t, err)
	res.Set(MatrixQ, q)

	st := res.Check(in, &Parameter{}, algorithm.DefaultDense)
	assert.True(t, st.Has(status.ShapeMismatch), "Q has the wrong column count")
	assert.True(t, st.Has(status.UnsupportedLayout), "R must not be packed")
}

func TestPreallocatedFloat32(t *testing.T) {
	b, err := NewBatch[float32](algorithm.DefaultDense)
	require.NoError(t, err)
	defer b.Close()

	data, err := tensor.TableFromSlice([]float32{3, 4}, 2, 1)
	require.NoError(t, err)
	b.Input.Set(Data, data)
	r, err := tensor.NewTable(1, 1, tensor.RowMajor, tensor.Float32)
	require.NoError(t, err)
	b.Result().Set(MatrixR, r)

	require.NoError(t, b.Compute())
	assert.Same(t, r, b.Result().Get(MatrixR))
	assert.InDelta(t, 5, abs(tensor.At[float32](r, 0, 0)), 1e-5)
}

func TestWideDataRejected(t *testing.T) {
	b, err := NewBatch[float64](algorithm.DefaultDense)
	require.NoError(t, err)
	defer b.Close()

	data, err := tensor.NewTable(2, 3, tensor.RowMajor, tensor.Float64)
	require.NoError(t, err)
	b.Input.Set(Data, data)
	assert.True(t, errors.Is(b.Compute(), status.ShapeMismatch))
	assert.False(t, b.Result().Has(MatrixQ))
}

func TestResultOnEmptyInput(t *testing.T) {
	res := NewResult()
	st := res.Allocate(NewInput(), &Parameter{}, algorithm.DefaultDense, tensor.Float64, tensor.HeapProvider{})
	assert.True(t, st.Has(status.MissingRequiredInput))
	assert.False(t, res.Has(MatrixQ))
	assert.True(t, res.Check(NewInput(), &Parameter{}, algorithm.DefaultDense).Has(status.MissingRequiredInput))
}

func TestPreallocatedOutputOfOtherPrecision(t *testing.T) {
	b, err := NewBatch[float32](algorithm.DefaultDense)
	require.NoError(t, err)
	defer b.Close()

	data, err := tensor.TableFromSlice([]float32{3, 4}, 2, 1)
	require.NoError(t, err)
	b.Input.Set(Data, data)
	r, err := tensor.NewTable(1, 1, tensor.RowMajor, tensor.Float64)
	require.NoError(t, err)
	b.Result().Set(MatrixR, r)

	err = b.Compute()
	assert.True(t, errors.Is(err, status.ShapeMismatch))
	assert.False(t, errors.Is(err, status.KernelComputationFailure))
	assert.Zero(t, tensor.At[float64](r, 0, 0))
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
