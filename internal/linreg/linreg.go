// Package linreg trains linear regression models by least squares.
package linreg

import (
	"context"

	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/cpuid"
	"github.com/born-ml/kernels/internal/dense"
	"github.com/born-ml/kernels/internal/kernel"
	"github.com/born-ml/kernels/internal/linearmodel"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// Training methods.
const (
	NormEqDense                  = algorithm.DefaultDense // Normal equations solved by Cholesky
	QRDense     algorithm.Method = 1                      // QR decomposition of the data
)

// Parameter configures training.
type Parameter struct {
	linearmodel.Parameter
}

// DefaultParameter fits an intercept.
func DefaultParameter() Parameter {
	return Parameter{linearmodel.Parameter{InterceptFlag: true}}
}

type (
	// Input holds the data and dependent variables.
	Input = linearmodel.Input[Parameter]
	// Result holds the trained model.
	Result = linearmodel.Result[Parameter]
	// Kernel is the kernel contract of batch training.
	Kernel = algorithm.Kernel[*Input, Parameter, *Result]
	// Batch is the batch training algorithm.
	Batch = algorithm.Batch[*Input, Parameter, *Result]
)

func solve(xtx *mat.SymDense, xty *mat.Dense, par *Parameter) (*mat.Dense, error) {
	return linearmodel.SolveNormal(xtx, xty, par.InterceptFlag, nil)
}

var registry = kernel.NewRegistry("linreg", func(r *kernel.Registry[Kernel]) {
	linearmodel.RegisterNormEq(r, NormEqDense, solve)
	r.RegisterVariants(tensor.Float32, int(QRDense), func(cpuid.ISA) kernel.Factory[Kernel] {
		return func() (Kernel, error) { return qrKernel[float32]{}, nil }
	})
	r.RegisterVariants(tensor.Float64, int(QRDense), func(cpuid.ISA) kernel.Factory[Kernel] {
		return func() (Kernel, error) { return qrKernel[float64]{}, nil }
	})
})

var distributed = linearmodel.NewDistributed("linreg", linearmodel.LinearRegression, solve)

// Registry returns the kernel registry of batch training.
func Registry() *kernel.Registry[Kernel] {
	return registry
}

// Distributed returns the registries of distributed training.
func Distributed() *linearmodel.Distributed[Parameter] {
	return distributed
}

// NewBatch returns a training algorithm computing in precision F.
func NewBatch[F tensor.Float](method algorithm.Method, opts ...algorithm.Option) (*Batch, error) {
	return algorithm.New[F](registry, method, linearmodel.NewInput[Parameter](), DefaultParameter(),
		linearmodel.NewResult[Parameter](linearmodel.LinearRegression), opts...)
}

// NewStep1Local returns the local step of distributed training.
func NewStep1Local[F tensor.Float](opts ...algorithm.Option) (*algorithm.Batch[*Input, Parameter, *linearmodel.LocalResult[Parameter]], error) {
	return linearmodel.NewStep1Local[F](distributed, NormEqDense, DefaultParameter(), opts...)
}

// NewStep2Master returns the master step of distributed training.
func NewStep2Master[F tensor.Float](opts ...algorithm.Option) (*algorithm.Batch[*linearmodel.MasterInput[Parameter], Parameter, *linearmodel.MasterResult[Parameter]], error) {
	return linearmodel.NewStep2Master[F](distributed, NormEqDense, DefaultParameter(), opts...)
}

// TrainDistributed trains on blocks concurrently and merges their partial results.
func TrainDistributed[F tensor.Float](ctx context.Context, par Parameter, blocks []linearmodel.Block, opts ...algorithm.Option) (*Result, error) {
	return linearmodel.TrainDistributed[F](ctx, distributed, NormEqDense, par, blocks, opts...)
}

// ModelFrom returns the linear regression model held by res.
func ModelFrom(res *Result) (*linearmodel.Model, error) {
	m, st := res.ModelOf(linearmodel.LinearRegression)
	return m, st.Err()
}

// qrKernel solves the least-squares problem through a QR decomposition of the
// data, which avoids squaring the condition number.
type qrKernel[F tensor.Float] struct{}

func (qrKernel[F]) Compute(in *Input, par *Parameter, res *Result) status.Status {
	x := linearmodel.Augment[F](in.Get(linearmodel.Data))
	n, nBetas := x.Dims()
	off := 1
	if par.InterceptFlag {
		off = 0
	}
	if n < nBetas-off {
		return status.New(status.KernelComputationFailure, "data", "QR needs at least %d rows, got %d", nBetas-off, n)
	}
	y := in.Get(linearmodel.DependentVariables)
	k := y.Cols()

	var qr mat.QR
	qr.Factorize(x.Slice(0, n, off, nBetas))
	var sol mat.Dense
	if err := qr.SolveTo(&sol, false, dense.FromTable[F](y)); err != nil {
		return status.FromError(status.KernelComputationFailure, "data", err)
	}

	beta := res.Model().Beta
	dst := tensor.TableData[F](beta)
	clear(dst)
	for j := range k {
		for r := range nBetas - off {
			dst[j*nBetas+r+off] = F(sol.At(r, j))
		}
	}
	return status.OK
}
