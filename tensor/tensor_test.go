package tensor_test

import (
	"testing"

	"github.com/born-ml/kernels/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicTable(t *testing.T) {
	x, err := tensor.TableFromSlice([]float64{1, 2, 3, 4, 5, 6}, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 2}, x.Shape())
	assert.Equal(t, tensor.Float64, x.DType())
	assert.Equal(t, 6.0, tensor.At[float64](x, 2, 1))

	p, err := tensor.NewTable(3, 3, tensor.UpperPacked, tensor.Float32)
	require.NoError(t, err)
	tensor.SetAt[float32](p, 2, 0, 7)
	assert.Equal(t, float32(7), tensor.At[float32](p, 0, 2))
	assert.Len(t, tensor.TableData[float32](p), 6)
}

func TestPublicRaw(t *testing.T) {
	raw, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)
	clone := raw.Clone()
	tensor.Data[float32](clone)[0] = 9
	assert.Equal(t, float32(9), tensor.Data[float32](raw)[0])
	assert.False(t, raw.IsUnique())
	clone.Release()
	assert.True(t, raw.IsUnique())

	_, err = tensor.HeapProvider{MaxBytes: 4}.NewTensor(tensor.Shape{2}, tensor.Float64)
	assert.ErrorIs(t, err, tensor.ErrAllocationLimit)
}
