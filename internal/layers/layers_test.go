package layers

import (
	"testing"

	"github.com/born-ml/kernels/internal/cpuid"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shapes = Shapes{
	Gradient:          tensor.Shape{2, 3, 4, 4},
	WeightDerivatives: tensor.Shape{3, 5, 2, 2},
	BiasDerivatives:   tensor.Shape{5},
}

func TestAllocateShapesSkipsGradientWhenNotPropagated(t *testing.T) {
	r := NewBackwardResult()
	st := r.AllocateShapes(Parameter{}, shapes, tensor.Float32, tensor.HeapProvider{})
	require.True(t, st.OK())

	assert.False(t, r.Has(Gradient))
	assert.Equal(t, shapes.WeightDerivatives, r.Get(WeightDerivatives).Shape())
	assert.Equal(t, shapes.BiasDerivatives, r.Get(BiasDerivatives).Shape())
	assert.True(t, r.CheckShapes(Parameter{}, shapes).OK())
	assert.True(t, r.CheckShapes(Parameter{PropagateGradient: true}, shapes).Has(status.MissingRequiredInput))
}

func TestAllocateShapesKeepsPreallocatedGradient(t *testing.T) {
	grad, err := tensor.NewRaw(shapes.Gradient, tensor.Float64)
	require.NoError(t, err)
	r := NewBackwardResult()
	r.Set(Gradient, grad)

	par := Parameter{PropagateGradient: true}
	require.True(t, r.AllocateShapes(par, shapes, tensor.Float64, tensor.HeapProvider{}).OK())
	assert.Same(t, grad, r.Get(Gradient))
	assert.True(t, r.Has(WeightDerivatives))
	assert.True(t, r.Has(BiasDerivatives))

	weights := r.Get(WeightDerivatives)
	require.True(t, r.AllocateShapes(par, shapes, tensor.Float64, tensor.HeapProvider{}).OK())
	assert.Same(t, weights, r.Get(WeightDerivatives), "a second allocation is a no-op")
}

func TestAllocateShapesWithoutParameters(t *testing.T) {
	r := NewBackwardResult()
	s := Shapes{Gradient: tensor.Shape{4, 4}}
	require.True(t, r.AllocateShapes(Parameter{PropagateGradient: true}, s, tensor.Float32, tensor.HeapProvider{}).OK())
	assert.Equal(t, 1, r.Len())
}

func TestCheckShapesReportsEveryOutput(t *testing.T) {
	r := NewBackwardResult()
	bad, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32)
	require.NoError(t, err)
	r.Set(Gradient, bad)
	r.Set(BiasDerivatives, bad)

	st := r.CheckShapes(Parameter{PropagateGradient: true}, shapes)
	require.Len(t, st.Errors(), 3)
	assert.Equal(t, "gradient", st.Errors()[0].Argument)
	assert.Equal(t, status.MissingRequiredInput, st.Errors()[1].Kind)
	assert.Equal(t, "biasDerivatives", st.Errors()[2].Argument)
}

func TestAllocationFailure(t *testing.T) {
	r := NewBackwardResult()
	st := r.AllocateShapes(Parameter{}, shapes, tensor.Float64, tensor.HeapProvider{MaxBytes: 16})
	assert.True(t, st.Has(status.AllocationFailure))
}

func TestShare(t *testing.T) {
	r := NewBackwardResult()
	a, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Float32)
	b, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Float32)
	Share(r.Map, Gradient, a)
	Share(r.Map, Gradient, b)
	assert.Same(t, a, Tensor(r.Map, Gradient))
}

func TestReductionsMatchAcrossLanes(t *testing.T) {
	a := make([]float64, 37)
	b := make([]float64, 37)
	for i := range a {
		a[i] = float64(i) * 0.25
		b[i] = float64(37-i) * 0.5
	}
	wantDot := Dot(a, b, 1)
	wantSum := Sum(a, 1)
	for _, isa := range cpuid.All {
		lanes := Lanes[float64](isa)
		assert.InDelta(t, wantDot, Dot(a, b, lanes), 1e-9, isa.String())
		assert.InDelta(t, wantSum, Sum(a, lanes), 1e-9, isa.String())
	}
	assert.Equal(t, 16, Lanes[float32](cpuid.AVX512))
	assert.Equal(t, 1, Lanes[float32](cpuid.Generic))
}
