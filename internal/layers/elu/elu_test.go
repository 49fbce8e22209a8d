package elu

import (
	"errors"
	"math"
	"testing"

	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/layers"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardBackward(t *testing.T) {
	fwd, err := NewForward[float64](algorithm.DefaultDense)
	require.NoError(t, err)
	defer fwd.Close()

	x, err := tensor.FromSlice([]float64{-2, -0.5, 0, 1.5}, tensor.Shape{2, 2})
	require.NoError(t, err)
	fwd.Input.Set(Data, x)
	fwd.Parameter.Alpha = 0.5
	require.NoError(t, fwd.Compute())

	value := tensor.Data[float64](fwd.Result().Get(Value))
	assert.InDelta(t, 0.5*math.Expm1(-2), value[0], 1e-12)
	assert.InDelta(t, 0.5*math.Expm1(-0.5), value[1], 1e-12)
	assert.InDelta(t, 0, value[2], 0)
	assert.InDelta(t, 1.5, value[3], 0)
	assert.Same(t, x, fwd.Result().Get(AuxData), "the forward input is shared, not copied")

	bwd, err := NewBackward[float64](algorithm.DefaultDense)
	require.NoError(t, err)
	defer bwd.Close()

	ig, err := tensor.FromSlice([]float64{1, 1, 2, 2}, tensor.Shape{2, 2})
	require.NoError(t, err)
	bwd.Input.Set(InputGradient, ig)
	bwd.Input.SetFromForward(fwd.Result())
	bwd.Parameter.Alpha = 0.5
	require.NoError(t, bwd.Compute())

	grad := tensor.Data[float64](bwd.Result().Get(layers.Gradient))
	assert.InDelta(t, 0.5*math.Exp(-2), grad[0], 1e-12)
	assert.InDelta(t, 0.5*math.Exp(-0.5), grad[1], 1e-12)
	assert.InDelta(t, 1, grad[2], 1e-12)
	assert.InDelta(t, 2, grad[3], 0)
}

func TestBackwardGradientShape(t *testing.T) {
	shape := tensor.Shape{32, 16, 8, 8}
	x, err := tensor.NewRaw(shape, tensor.Float32)
	require.NoError(t, err)
	ig, err := tensor.NewRaw(shape, tensor.Float32)
	require.NoError(t, err)

	bwd, err := NewBackward[float32](algorithm.DefaultDense)
	require.NoError(t, err)
	defer bwd.Close()
	bwd.Input.Set(InputGradient, ig)
	bwd.Input.Set(InputFromForward, x)
	require.NoError(t, bwd.Compute())
	assert.Equal(t, shape, bwd.Result().Get(layers.Gradient).Shape())
}

func TestBackwardWithoutPropagation(t *testing.T) {
	x, err := tensor.NewRaw(tensor.Shape{4}, tensor.Float32)
	require.NoError(t, err)

	bwd, err := NewBackward[float32](algorithm.DefaultDense)
	require.NoError(t, err)
	defer bwd.Close()
	bwd.Input.Set(InputGradient, x)
	bwd.Input.Set(InputFromForward, x)
	bwd.Parameter.PropagateGradient = false
	require.NoError(t, bwd.Compute())
	assert.False(t, bwd.Result().Has(layers.Gradient))
}

func TestBackwardValidation(t *testing.T) {
	bwd, err := NewBackward[float32](algorithm.DefaultDense)
	require.NoError(t, err)
	defer bwd.Close()

	err = bwd.Compute()
	st := status.Of(err)
	require.Len(t, st.Errors(), 2, "both missing inputs are reported")

	a, _ := tensor.NewRaw(tensor.Shape{4}, tensor.Float32)
	b, _ := tensor.NewRaw(tensor.Shape{5}, tensor.Float32)
	bwd.Input.Set(InputGradient, a)
	bwd.Input.Set(InputFromForward, b)
	assert.True(t, errors.Is(bwd.Compute(), status.ShapeMismatch))
}

func TestNegativeAlpha(t *testing.T) {
	fwd, err := NewForward[float32](algorithm.DefaultDense)
	require.NoError(t, err)
	defer fwd.Close()

	x, _ := tensor.NewRaw(tensor.Shape{4}, tensor.Float32)
	fwd.Input.Set(Data, x)
	fwd.Parameter.Alpha = -1
	assert.True(t, errors.Is(fwd.Compute(), status.InvalidParameter))
}

func TestResultsOnEmptyInput(t *testing.T) {
	par := DefaultParameter()
	prov := tensor.HeapProvider{}

	fr := NewForwardResult()
	assert.True(t, fr.Allocate(NewForwardInput(), &par, algorithm.DefaultDense, tensor.Float64, prov).Has(status.MissingRequiredInput))
	assert.True(t, fr.Check(NewForwardInput(), &par, algorithm.DefaultDense).Has(status.MissingRequiredInput))
	assert.Zero(t, fr.Len())

	br := NewBackwardResult()
	assert.True(t, br.Allocate(NewBackwardInput(), &par, algorithm.DefaultDense, tensor.Float64, prov).Has(status.MissingRequiredInput))
	assert.True(t, br.Check(NewBackwardInput(), &par, algorithm.DefaultDense).Has(status.MissingRequiredInput))
	assert.Nil(t, br.Get(layers.Gradient))
}

func TestInputGradientOfOtherPrecision(t *testing.T) {
	fwd, err := NewForward[float32](algorithm.DefaultDense)
	require.NoError(t, err)
	defer fwd.Close()
	x, err := tensor.FromSlice([]float32{-1, 0, 1}, tensor.Shape{3})
	require.NoError(t, err)
	fwd.Input.Set(Data, x)
	require.NoError(t, fwd.Compute())

	bwd, err := NewBackward[float32](algorithm.DefaultDense)
	require.NoError(t, err)
	defer bwd.Close()
	ig, err := tensor.FromSlice([]float64{1, 1, 1}, tensor.Shape{3})
	require.NoError(t, err)
	bwd.Input.Set(InputGradient, ig)
	bwd.Input.SetFromForward(fwd.Result())

	err = bwd.Compute()
	assert.True(t, errors.Is(err, status.ShapeMismatch))
	assert.False(t, errors.Is(err, status.KernelComputationFailure))
	assert.Nil(t, bwd.Result().Get(layers.Gradient))
}
