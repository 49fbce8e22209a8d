package svd_test

import (
	"errors"
	"testing"

	"github.com/born-ml/kernels/algorithm"
	"github.com/born-ml/kernels/status"
	"github.com/born-ml/kernels/svd"
	"github.com/born-ml/kernels/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicDecomposition(t *testing.T) {
	x, err := tensor.TableFromSlice([]float64{3, 0, 0, 4, 0, 0}, 3, 2)
	require.NoError(t, err)

	alg, err := svd.NewBatch[float64](algorithm.DefaultDense, algorithm.WithVariant(algorithm.Generic))
	require.NoError(t, err)
	defer alg.Close()
	alg.Input.Set(svd.Data, x)
	alg.Parameter.LeftSingularMatrix = svd.RequiredInPackedForm
	require.NoError(t, alg.Compute())
	assert.Equal(t, algorithm.Validated, alg.State())

	sigma := tensor.TableData[float64](alg.Result().Get(svd.SingularValues))
	assert.InDeltaSlice(t, []float64{4, 3}, sigma, 1e-12)
	assert.Equal(t, tensor.Shape{3, 2}, alg.Result().Get(svd.LeftSingularMatrix).Shape())
}

func TestPublicMissingInput(t *testing.T) {
	alg, err := svd.NewBatch[float32](algorithm.DefaultDense)
	require.NoError(t, err)
	defer alg.Close()

	err = alg.Compute()
	assert.True(t, errors.Is(err, status.MissingRequiredInput))
	assert.Equal(t, "data", status.Of(err).Errors()[0].Argument)
	assert.Equal(t, algorithm.Failed, alg.State())
}
