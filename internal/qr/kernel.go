package qr

import (
	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/cpuid"
	"github.com/born-ml/kernels/internal/dense"
	"github.com/born-ml/kernels/internal/kernel"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// Kernel is the kernel contract of the algorithm.
type Kernel = algorithm.Kernel[*Input, Parameter, *Result]

// Batch is the batch-mode algorithm.
type Batch = algorithm.Batch[*Input, Parameter, *Result]

var registry = kernel.NewRegistry("qr", func(r *kernel.Registry[Kernel]) {
	r.RegisterVariants(tensor.Float32, int(algorithm.DefaultDense), func(cpuid.ISA) kernel.Factory[Kernel] {
		return func() (Kernel, error) { return denseKernel[float32]{}, nil }
	})
	r.RegisterVariants(tensor.Float64, int(algorithm.DefaultDense), func(cpuid.ISA) kernel.Factory[Kernel] {
		return func() (Kernel, error) { return denseKernel[float64]{}, nil }
	})
})

// Registry returns the kernel registry of the algorithm.
func Registry() *kernel.Registry[Kernel] {
	return registry
}

// NewBatch returns an algorithm computing in precision F with empty input and result.
func NewBatch[F tensor.Float](method algorithm.Method, opts ...algorithm.Option) (*Batch, error) {
	return algorithm.New[F](registry, method, NewInput(), Parameter{}, NewResult(), opts...)
}

type denseKernel[F tensor.Float] struct{}

func (denseKernel[F]) Compute(in *Input, _ *Parameter, res *Result) status.Status {
	var qr mat.QR
	qr.Factorize(dense.FromTable[F](in.Get(Data)))

	// gonum returns the full factors; the leading blocks are the thin ones.
	var q, r mat.Dense
	qr.QTo(&q)
	qr.RTo(&r)
	dense.ToTable[F](&q, res.Get(MatrixQ))
	dense.ToTable[F](&r, res.Get(MatrixR))
	return status.OK
}
