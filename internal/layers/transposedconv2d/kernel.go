package transposedconv2d

import (
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

func registerForward[F tensor.Float](r *kernel.Registry[ForwardKernel]) {
	dtype := tensor.DataTypeOf[F]()
	r.RegisterVariants(dtype, int(DefaultDense), func(cpuid.ISA) kernel.Factory[ForwardKernel] {
		return func() (ForwardKernel, error) { return directForward[F]{cfg: layerConfig()}, nil }
	})
	r.RegisterVariants(dtype, int(Im2ColDense), func(isa cpuid.ISA) kernel.Factory[ForwardKernel] {
		return func() (ForwardKernel, error) {
			return im2colForward[F]{lanes: layers.Lanes[F](isa), cfg: layerConfig()}, nil
		}
	})
}

func registerBackward[F tensor.Float](r *kernel.Registry[BackwardKernel]) {
	dtype := tensor.DataTypeOf[F]()
	r.RegisterVariants(dtype, int(DefaultDense), func(cpuid.ISA) kernel.Factory[BackwardKernel] {
		return func() (BackwardKernel, error) { return directBackward[F]{cfg: layerConfig()}, nil }
	})
	r.RegisterVariants(dtype, int(Im2ColDense), func(isa cpuid.ISA) kernel.Factory[BackwardKernel] {
		return func() (BackwardKernel, error) {
			return im2colBackward[F]{lanes: layers.Lanes[F](isa), cfg: layerConfig()}, nil
		}
	})
}

var forwardRegistry = kernel.NewRegistry("transposedconv2d/forward", func(r *kernel.Registry[ForwardKernel]) {
	registerForward[float32](r)
	registerForward[float64](r)
})

var backwardRegistry = kernel.NewRegistry("transposedconv2d/backward", func(r *kernel.Registry[BackwardKernel]) {
	registerBackward[float32](r)
	registerBackward[float64](r)
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

// layerConfig parallelizes over planes, which are few but large.
func layerConfig() parallel.Config {
	cfg := parallel.DefaultConfig()
	cfg.MinChunkSize = 1
	return cfg
}

func addBias[F tensor.Float](out, bias []F, g geometry, cfg parallel.Config) {
	plane := g.hOut * g.wOut
	parallel.ForBatch(g.n, g.k, func(n, k int) {
		dst := out[(n*g.k+k)*plane : (n*g.k+k+1)*plane]
		for i := range dst {
			dst[i] += bias[k]
		}
	}, cfg)
}

func biasDerivatives[F tensor.Float](db, ig []F, g geometry, lanes int) {
	plane := g.hOut * g.wOut
	clear(db)
	for n := range g.n {
		for k := range g.k {
			db[k] += layers.Sum(ig[(n*g.k+k)*plane:(n*g.k+k+1)*plane], lanes)
		}
	}
}

// directForward scatters every data element into the value through the kernel
// window it covers. Each (sample, kernel) plane is written by one worker.
type directForward[F tensor.Float] struct {
	cfg parallel.Config
}

func (k directForward[F]) Compute(in *ForwardInput, par *Parameter, res *ForwardResult) status.Status {
	data := layers.Tensor(in.Map, Data)
	g := geometryOf(data, par)
	x := tensor.Data[F](data)
	wt := tensor.Data[F](layers.Tensor(in.Map, Weights))
	out := tensor.Data[F](res.Get(Value))

	plane := g.hOut * g.wOut
	parallel.ForBatch(g.n, g.k, func(n, oc int) {
		dst := out[(n*g.k+oc)*plane : (n*g.k+oc+1)*plane]
		clear(dst)
		for c := range g.c {
			src := x[(n*g.c+c)*g.h*g.w : (n*g.c+c+1)*g.h*g.w]
			kern := wt[(c*g.k+oc)*g.kh*g.kw : (c*g.k+oc+1)*g.kh*g.kw]
			for h := range g.h {
				for w := range g.w {
					v := src[h*g.w+w]
					for kh := range g.kh {
						oh := h*g.stride - g.pad + kh
						if oh < 0 || oh >= g.hOut {
							continue
						}
						for kw := range g.kw {
							ow := w*g.stride - g.pad + kw
							if ow >= 0 && ow < g.wOut {
								dst[oh*g.wOut+ow] += v * kern[kh*g.kw+kw]
							}
						}
					}
				}
			}
		}
	}, k.cfg)
	addBias(out, tensor.Data[F](layers.Tensor(in.Map, Biases)), g, k.cfg)
	return status.OK
}

// directBackward gathers each derivative from the value positions its input
// element or weight contributed to.
type directBackward[F tensor.Float] struct {
	cfg parallel.Config
}

func (k directBackward[F]) Compute(in *BackwardInput, par *Parameter, res *BackwardResult) status.Status {
	data := in.get(BackwardAuxData)
	g := geometryOf(data, par)
	x := tensor.Data[F](data)
	wt := tensor.Data[F](in.get(BackwardAuxWeights))
	ig := tensor.Data[F](in.get(InputGradient))
	plane := g.hOut * g.wOut

	if par.PropagateGradient {
		grad := tensor.Data[F](res.Get(layers.Gradient))
		parallel.ForBatch(g.n, g.c, func(n, c int) {
			dst := grad[(n*g.c+c)*g.h*g.w : (n*g.c+c+1)*g.h*g.w]
			for h := range g.h {
				for w := range g.w {
					var sum F
					for oc := range g.k {
						src := ig[(n*g.k+oc)*plane : (n*g.k+oc+1)*plane]
						kern := wt[(c*g.k+oc)*g.kh*g.kw : (c*g.k+oc+1)*g.kh*g.kw]
						for kh := range g.kh {
							oh := h*g.stride - g.pad + kh
							if oh < 0 || oh >= g.hOut {
								continue
							}
							for kw := range g.kw {
								ow := w*g.stride - g.pad + kw
								if ow >= 0 && ow < g.wOut {
									sum += src[oh*g.wOut+ow] * kern[kh*g.kw+kw]
								}
							}
						}
					}
					dst[h*g.w+w] = sum
				}
			}
		}, k.cfg)
	}

	dw := tensor.Data[F](res.Get(layers.WeightDerivatives))
	parallel.ForBatch(g.c, g.k, func(c, oc int) {
		dst := dw[(c*g.k+oc)*g.kh*g.kw : (c*g.k+oc+1)*g.kh*g.kw]
		for kh := range g.kh {
			for kw := range g.kw {
				var sum F
				for n := range g.n {
					src := x[(n*g.c+c)*g.h*g.w : (n*g.c+c+1)*g.h*g.w]
					grad := ig[(n*g.k+oc)*plane : (n*g.k+oc+1)*plane]
					for h := range g.h {
						oh := h*g.stride - g.pad + kh
						if oh < 0 || oh >= g.hOut {
							continue
						}
						for w := range g.w {
							ow := w*g.stride - g.pad + kw
							if ow >= 0 && ow < g.wOut {
								sum += src[h*g.w+w] * grad[oh*g.wOut+ow]
							}
						}
					}
				}
				dst[kh*g.kw+kw] = sum
			}
		}
	}, k.cfg)

	biasDerivatives(tensor.Data[F](res.Get(layers.BiasDerivatives)), ig, g, 1)
	return status.OK
}
