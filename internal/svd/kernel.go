package svd

import (
	"log/slog"

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

var registry = kernel.NewRegistry("svd", register)

func register(r *kernel.Registry[Kernel]) {
	r.RegisterVariants(tensor.Float32, int(algorithm.DefaultDense), func(isa cpuid.ISA) kernel.Factory[Kernel] {
		return func() (Kernel, error) { return &denseKernel[float32]{isa: isa}, nil }
	})
	r.RegisterVariants(tensor.Float64, int(algorithm.DefaultDense), func(isa cpuid.ISA) kernel.Factory[Kernel] {
		return func() (Kernel, error) { return &denseKernel[float64]{isa: isa}, nil }
	})
}

// Registry returns the kernel registry of the algorithm.
func Registry() *kernel.Registry[Kernel] {
	return registry
}

// NewBatch returns an algorithm computing in precision F with empty input and result.
func NewBatch[F tensor.Float](method algorithm.Method, opts ...algorithm.Option) (*Batch, error) {
	return algorithm.New[F](registry, method, NewInput(), Parameter{}, NewResult(), opts...)
}

// denseKernel factorizes with gonum's thin SVD. The same code serves every CPU
// variant; gonum's own assembly picks the vector path.
type denseKernel[F tensor.Float] struct {
	isa cpuid.ISA
}

func (k *denseKernel[F]) Compute(in *Input, par *Parameter, res *Result) status.Status {
	a := dense.FromTable[F](in.Get(Data))

	kind := mat.SVDThinV
	if par.wantsLeft() {
		kind = mat.SVDThin
	}
	var svd mat.SVD
	if !svd.Factorize(a, kind) {
		return status.New(status.KernelComputationFailure, "data", "singular value decomposition did not converge")
	}
	slog.Debug("svd factorized", "variant", k.isa.String(), "rows", a.RawMatrix().Rows, "cols", a.RawMatrix().Cols)

	dense.VecToColumn[F](svd.Values(nil), res.Get(SingularValues))

	var v mat.Dense
	svd.VTo(&v)
	dense.ToTable[F](v.T(), res.Get(RightSingularMatrix))

	if par.wantsLeft() {
		var u mat.Dense
		svd.UTo(&u)
		dense.ToTable[F](&u, res.Get(LeftSingularMatrix))
	}
	return status.OK
}
