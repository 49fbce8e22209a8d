package elu

import (
	"math"

	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/cpuid"
	"github.com/born-ml/kernels/internal/kernel"
	"github.com/born-ml/kernels/internal/layers"
	"github.com/born-ml/kernels/internal/parallel"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
)

type (
	// ForwardKernel is the kernel contract of the forward layer.
	ForwardKernel = algorithm.Kernel[*ForwardInput, Parameter, *ForwardResult]
	// BackwardKernel is the kernel contract of the backward layer.
	BackwardKernel = algorithm.Kernel[*BackwardInput, Parameter, *BackwardResult]
	// Forward is the forward layer algorithm.
	Forward = algorithm.Batch[*ForwardInput, Parameter, *ForwardResult]
	// Backward is the backward layer algorithm.
	Backward = algorithm.Batch[*BackwardInput, Parameter, *BackwardResult]
)

var forwardRegistry = kernel.NewRegistry("elu/forward", func(r *kernel.Registry[ForwardKernel]) {
	r.RegisterVariants(tensor.Float32, int(algorithm.DefaultDense), func(cpuid.ISA) kernel.Factory[ForwardKernel] {
		return func() (ForwardKernel, error) { return forwardKernel[float32]{cfg: parallel.DefaultConfig()}, nil }
	})
	r.RegisterVariants(tensor.Float64, int(algorithm.DefaultDense), func(cpuid.ISA) kernel.Factory[ForwardKernel] {
		return func() (ForwardKernel, error) { return forwardKernel[float64]{cfg: parallel.DefaultConfig()}, nil }
	})
})

var backwardRegistry = kernel.NewRegistry("elu/backward", func(r *kernel.Registry[BackwardKernel]) {
	r.RegisterVariants(tensor.Float32, int(algorithm.DefaultDense), func(cpuid.ISA) kernel.Factory[BackwardKernel] {
		return func() (BackwardKernel, error) { return backwardKernel[float32]{cfg: parallel.DefaultConfig()}, nil }
	})
	r.RegisterVariants(tensor.Float64, int(algorithm.DefaultDense), func(cpuid.ISA) kernel.Factory[BackwardKernel] {
		return func() (BackwardKernel, error) { return backwardKernel[float64]{cfg: parallel.DefaultConfig()}, nil }
	})
})

// ForwardRegistry returns the kernel registry of the forward layer.
func ForwardRegistry() *kernel.Registry[ForwardKernel] {
	return forwardRegistry
}

// BackwardRegistry returns the kernel registry of the backward layer.
func BackwardRegistry() *kernel.Registry[BackwardKernel] {
	return backwardRegistry
}

// NewForward returns a forward layer computing in precision F.
func NewForward[F tensor.Float](method algorithm.Method, opts ...algorithm.Option) (*Forward, error) {
	return algorithm.New[F](forwardRegistry, method, NewForwardInput(), DefaultParameter(), NewForwardResult(), opts...)
}

// NewBackward returns a backward layer computing in precision F.
func NewBackward[F tensor.Float](method algorithm.Method, opts ...algorithm.Option) (*Backward, error) {
	return algorithm.New[F](backwardRegistry, method, NewBackwardInput(), DefaultParameter(), NewBackwardResult(), opts...)
}

type forwardKernel[F tensor.Float] struct {
	cfg parallel.Config
}

func (k forwardKernel[F]) Compute(in *ForwardInput, par *Parameter, res *ForwardResult) status.Status {
	x := tensor.Data[F](layers.Tensor(in.Map, Data))
	y := tensor.Data[F](res.Get(Value))
	alpha := par.Alpha
	parallel.ForRange(len(x), func(start, end int) {
		for i := start; i < end; i++ {
			if v := x[i]; v > 0 {
				y[i] = v
			} else {
				y[i] = F(alpha * math.Expm1(float64(v)))
			}
		}
	}, k.cfg)
	return status.OK
}

type backwardKernel[F tensor.Float] struct {
	cfg parallel.Config
}

func (k backwardKernel[F]) Compute(in *BackwardInput, par *Parameter, res *BackwardResult) status.Status {
	if !par.PropagateGradient {
		return status.OK
	}
	ig := tensor.Data[F](layers.Tensor(in.Map, InputGradient))
	x := tensor.Data[F](layers.Tensor(in.Map, InputFromForward))
	g := tensor.Data[F](res.Get(layers.Gradient))
	alpha := par.Alpha
	parallel.ForRange(len(x), func(start, end int) {
		for i := start; i < end; i++ {
			if v := x[i]; v > 0 {
				g[i] = ig[i]
			} else {
				g[i] = ig[i] * F(alpha*math.Exp(float64(v)))
			}
		}
	}, k.cfg)
	return status.OK
}
