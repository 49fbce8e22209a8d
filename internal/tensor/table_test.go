package tensor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableShape(t *testing.T) {
	tbl, err := NewTable(100, 10, RowMajor, Float64)
	require.NoError(t, err)

	assert.Equal(t, Shape{100, 10}, tbl.Shape())
	assert.Equal(t, 100, tbl.Rows())
	assert.Equal(t, 10, tbl.Cols())
	assert.Equal(t, RowMajor, tbl.Layout())
	assert.Len(t, TableData[float64](tbl), 1000)
}

func TestTablePackedStorage(t *testing.T) {
	for _, layout := range []Layout{UpperPacked, LowerPacked} {
		t.Run(layout.String(), func(t *testing.T) {
			tbl, err := NewTable(4, 4, layout, Float32)
			require.NoError(t, err)
			assert.Len(t, TableData[float32](tbl), 10)

			// Fill from the dense symmetric matrix a[i][j] = 10*min + max.
			for i := 0; i < 4; i++ {
				for j := i; j < 4; j++ {
					SetAt(tbl, i, j, float32(10*i+j))
				}
			}
			for i := 0; i < 4; i++ {
				for j := 0; j < 4; j++ {
					lo, hi := min(i, j), max(i, j)
					assert.Equal(t, float32(10*lo+hi), At[float32](tbl, i, j), "element (%d,%d)", i, j)
				}
			}
		})
	}
}

func TestTablePackedMustBeSquare(t *testing.T) {
	_, err := NewTable(3, 4, UpperPacked, Float32)
	assert.Error(t, err)
}

func TestTableFromSlice(t *testing.T) {
	tbl, err := TableFromSlice([]float64{1, 2, 3, 4, 5, 6}, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 6.0, At[float64](tbl, 2, 1))
	assert.Equal(t, 3.0, At[float64](tbl, 1, 0))

	_, err = TableFromSlice([]float64{1, 2, 3}, 2, 2)
	assert.Error(t, err)
}

func TestHeapProviderLimit(t *testing.T) {
	p := HeapProvider{MaxBytes: 64}

	_, err := p.NewTensor(Shape{4, 4}, Float32)
	require.NoError(t, err)

	_, err = p.NewTensor(Shape{4, 4}, Float64)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAllocationLimit))

	_, err = p.NewTable(3, 3, UpperPacked, Float64)
	assert.NoError(t, err, "packed storage needs only 6 elements")
}
