package batchnorm

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

var forwardRegistry = kernel.NewRegistry("batchnorm/forward", func(r *kernel.Registry[ForwardKernel]) {
	r.RegisterVariants(tensor.Float32, int(algorithm.DefaultDense), func(isa cpuid.ISA) kernel.Factory[ForwardKernel] {
		return func() (ForwardKernel, error) { return newForwardKernel[float32](isa), nil }
	})
	r.RegisterVariants(tensor.Float64, int(algorithm.DefaultDense), func(isa cpuid.ISA) kernel.Factory[ForwardKernel] {
		return func() (ForwardKernel, error) { return newForwardKernel[float64](isa), nil }
	})
})

var backwardRegistry = kernel.NewRegistry("batchnorm/backward", func(r *kernel.Registry[BackwardKernel]) {
	r.RegisterVariants(tensor.Float32, int(algorithm.DefaultDense), func(isa cpuid.ISA) kernel.Factory[BackwardKernel] {
		return func() (BackwardKernel, error) { return newBackwardKernel[float32](isa), nil }
	})
	r.RegisterVariants(tensor.Float64, int(algorithm.DefaultDense), func(isa cpuid.ISA) kernel.Factory[BackwardKernel] {
		return func() (BackwardKernel, error) { return newBackwardKernel[float64](isa), nil }
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

// planes describes how one channel is laid out: outer runs of inner
// contiguous elements, channels apart.
type planes struct {
	outer, channels, inner int
}

func planesOf(shape tensor.Shape, dim int) planes {
	p := planes{outer: 1, channels: shape[dim], inner: 1}
	for _, d := range shape[:dim] {
		p.outer *= d
	}
	for _, d := range shape[dim+1:] {
		p.inner *= d
	}
	return p
}

func (p planes) count() int {
	return p.outer * p.inner
}

// run returns the o-th contiguous run of channel c.
func run[F tensor.Float](data []F, p planes, c, o int) []F {
	start := (o*p.channels + c) * p.inner
	return data[start : start+p.inner]
}

type forwardKernel[F tensor.Float] struct {
	lanes int
	cfg   parallel.Config
}

func newForwardKernel[F tensor.Float](isa cpuid.ISA) forwardKernel[F] {
	cfg := parallel.DefaultConfig()
	cfg.MinChunkSize = 1
	return forwardKernel[F]{lanes: layers.Lanes[F](isa), cfg: cfg}
}

func (k forwardKernel[F]) Compute(in *ForwardInput, par *Parameter, res *ForwardResult) status.Status {
	data := layers.Tensor(in.Map, Data)
	x := tensor.Data[F](data)
	w := tensor.Data[F](layers.Tensor(in.Map, Weights))
	b := tensor.Data[F](layers.Tensor(in.Map, Biases))
	y := tensor.Data[F](res.Get(Value))
	mean := tensor.Data[F](res.Get(AuxMean))
	std := tensor.Data[F](res.Get(AuxStandardDeviation))
	popMean := tensor.Data[F](res.Get(AuxPopulationMean))
	popVar := tensor.Data[F](res.Get(AuxPopulationVariance))

	p := planesOf(data.Shape(), par.Dimension)
	n := float64(p.count())
	parallel.For(p.channels, func(c int) {
		var sum float64
		for o := range p.outer {
			sum += float64(layers.Sum(run(x, p, c, o), k.lanes))
		}
		mu := sum / n

		var sq float64
		for o := range p.outer {
			for _, v := range run(x, p, c, o) {
				d := float64(v) - mu
				sq += d * d
			}
		}
		variance := sq / n
		sigma := math.Sqrt(variance + par.Epsilon)

		scale := float64(w[c]) / sigma
		shift := float64(b[c]) - mu*scale
		for o := range p.outer {
			src, dst := run(x, p, c, o), run(y, p, c, o)
			for i, v := range src {
				dst[i] = F(float64(v)*scale + shift)
			}
		}

		mean[c] = F(mu)
		std[c] = F(sigma)
		unbiased := variance
		if n > 1 {
			unbiased = sq / (n - 1)
		}
		popMean[c] = F((1-par.Alpha)*float64(popMean[c]) + par.Alpha*mu)
		popVar[c] = F((1-par.Alpha)*float64(popVar[c]) + par.Alpha*unbiased)
	}, k.cfg)
	return status.OK
}

type backwardKernel[F tensor.Float] struct {
	lanes int
	cfg   parallel.Config
}

func newBackwardKernel[F tensor.Float](isa cpuid.ISA) backwardKernel[F] {
	cfg := parallel.DefaultConfig()
	cfg.MinChunkSize = 1
	return backwardKernel[F]{lanes: layers.Lanes[F](isa), cfg: cfg}
}

func (k backwardKernel[F]) Compute(in *BackwardInput, par *Parameter, res *BackwardResult) status.Status {
	data := in.get(BackwardAuxData)
	x := tensor.Data[F](data)
	ig := tensor.Data[F](in.get(InputGradient))
	w := tensor.Data[F](in.get(BackwardAuxWeights))
	mean := tensor.Data[F](in.get(BackwardAuxMean))
	std := tensor.Data[F](in.get(BackwardAuxStandardDeviation))
	dw := tensor.Data[F](res.Get(layers.WeightDerivatives))
	db := tensor.Data[F](res.Get(layers.BiasDerivatives))
	var g []F
	if par.PropagateGradient {
		g = tensor.Data[F](res.Get(layers.Gradient))
	}

	p := planesOf(data.Shape(), par.Dimension)
	n := float64(p.count())
	parallel.For(p.channels, func(c int) {
		mu, sigma := float64(mean[c]), float64(std[c])

		var sumG, sumGX float64
		for o := range p.outer {
			gr, xr := run(ig, p, c, o), run(x, p, c, o)
			sumG += float64(layers.Sum(gr, k.lanes))
			sumGX += float64(layers.Dot(gr, xr, k.lanes))
		}
		// sum(ig * xhat) = (sum(ig * x) - mu * sum(ig)) / sigma
		sumGXhat := (sumGX - mu*sumG) / sigma
		db[c] = F(sumG)
		dw[c] = F(sumGXhat)

		if g == nil {
			return
		}
		scale := float64(w[c]) / sigma
		for o := range p.outer {
			gr, xr, dst := run(ig, p, c, o), run(x, p, c, o), run(g, p, c, o)
			for i := range dst {
				xhat := (float64(xr[i]) - mu) / sigma
				dst[i] = F(scale * (float64(gr[i]) - sumG/n - xhat*sumGXhat/n))
			}
		}
	}, k.cfg)
	return status.OK
}
