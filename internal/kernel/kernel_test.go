package kernel

import (
	"errors"
	"testing"

	"github.com/born-ml/kernels/internal/cpuid"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scaleKernel struct {
	variant cpuid.ISA
	closed  int
	scratch []float64
}

func (k *scaleKernel) Close() error {
	k.closed++
	k.scratch = nil
	return nil
}

func newTestRegistry(calls *int) *Registry[*scaleKernel] {
	return NewRegistry("scale", func(r *Registry[*scaleKernel]) {
		*calls++
		for _, p := range []tensor.DataType{tensor.Float32, tensor.Float64} {
			r.RegisterVariants(p, 0, func(isa cpuid.ISA) Factory[*scaleKernel] {
				return func() (*scaleKernel, error) {
					return &scaleKernel{variant: isa, scratch: make([]float64, 16)}, nil
				}
			})
		}
	})
}

func TestSelectEveryTriple(t *testing.T) {
	var calls int
	r := newTestRegistry(&calls)

	for _, p := range []tensor.DataType{tensor.Float32, tensor.Float64} {
		for _, isa := range cpuid.All {
			c, err := r.Select(Key{Precision: p, Method: 0, Variant: isa})
			require.NoError(t, err)
			assert.Equal(t, isa, c.Kernel().variant)
			assert.Equal(t, Key{Precision: p, Variant: isa}, c.Key())
		}
	}
	assert.Equal(t, 1, calls, "registry is populated once")
	assert.Len(t, r.Keys(), 2*len(cpuid.All))
}

func TestSelectUnsupported(t *testing.T) {
	var calls int
	r := newTestRegistry(&calls)

	_, err := r.Select(Key{Precision: tensor.Float32, Method: 7, Variant: cpuid.Generic})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupported))
	assert.True(t, UnsupportedStatus(err).Has(status.UnsupportedKernel))
}

func TestRegisterDuplicatePanics(t *testing.T) {
	r := NewRegistry[*scaleKernel]("dup", nil)
	key := Key{Precision: tensor.Float64}
	r.Register(key, func() (*scaleKernel, error) { return &scaleKernel{}, nil })
	assert.Panics(t, func() {
		r.Register(key, func() (*scaleKernel, error) { return &scaleKernel{}, nil })
	})
}

func TestResetRepopulates(t *testing.T) {
	var calls int
	r := newTestRegistry(&calls)

	r.Keys()
	r.Reset()
	assert.Len(t, r.Keys(), 2*len(cpuid.All))
	assert.Equal(t, 2, calls)
}

func TestFactoryError(t *testing.T) {
	boom := errors.New("no workspace")
	r := NewRegistry("failing", func(r *Registry[*scaleKernel]) {
		r.Register(Key{}, func() (*scaleKernel, error) { return nil, boom })
	})
	_, err := r.Select(Key{})
	assert.ErrorIs(t, err, boom)
}

func TestContainerCloseOnce(t *testing.T) {
	var calls int
	r := newTestRegistry(&calls)
	c, err := r.Select(Key{Precision: tensor.Float64, Variant: cpuid.Generic})
	require.NoError(t, err)

	k := c.Kernel()
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, k.closed)
	assert.Nil(t, k.scratch)

	st := c.Compute(func(*scaleKernel) status.Status { return status.OK })
	assert.True(t, st.Has(status.KernelComputationFailure))
}

func TestContainerRecoversPanics(t *testing.T) {
	var calls int
	r := newTestRegistry(&calls)
	c, err := r.Select(Key{Precision: tensor.Float32, Variant: cpuid.Generic})
	require.NoError(t, err)
	defer c.Close()

	st := c.Compute(func(k *scaleKernel) status.Status {
		_ = k.scratch[100]
		return status.OK
	})
	require.False(t, st.OK())
	assert.True(t, st.Has(status.KernelComputationFailure))

	st = c.Compute(func(*scaleKernel) status.Status {
		return status.New(status.KernelComputationFailure, "scale", "singular")
	})
	assert.Equal(t, "singular", st.Errors()[0].Details)
}
