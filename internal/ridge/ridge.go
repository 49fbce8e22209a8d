// Package ridge trains ridge regression models: least squares with an L2
// penalty on the feature coefficients.
package ridge

import (
	"context"

	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/check"
	"github.com/born-ml/kernels/internal/kernel"
	"github.com/born-ml/kernels/internal/linearmodel"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// NormEqDense solves the penalized normal equations by Cholesky.
const NormEqDense = algorithm.DefaultDense

// Parameter configures training. RidgeParameters, when set, is a 1x1 table or
// a 1 x nResponses table of per-response penalties and takes precedence over
// Lambda.
type Parameter struct {
	linearmodel.Parameter
	RidgeParameters *tensor.Table
	Lambda          float64
}

// DefaultParameter fits an intercept with a unit penalty.
func DefaultParameter() Parameter {
	return Parameter{Parameter: linearmodel.Parameter{InterceptFlag: true}, Lambda: 1}
}

// Check validates the penalty.
func (p *Parameter) Check() status.Status {
	if p.RidgeParameters == nil {
		return check.NonNegative("lambda", p.Lambda)
	}
	var st status.Status
	if p.RidgeParameters.Rows() != 1 {
		st.Add(status.New(status.ShapeMismatch, "ridgeParameters", "expected 1 row, got %d", p.RidgeParameters.Rows()))
	}
	for j := range p.RidgeParameters.Cols() {
		st.Add(check.NonNegative("ridgeParameters", p.penalty(j)))
	}
	return st
}

// CheckResponses validates the width of RidgeParameters.
func (p Parameter) CheckResponses(nResponses int) status.Status {
	if p.RidgeParameters == nil || p.RidgeParameters.Cols() == 1 || p.RidgeParameters.Cols() == nResponses {
		return status.OK
	}
	return status.New(status.ShapeMismatch, "ridgeParameters", "expected 1 or %d columns, got %d", nResponses, p.RidgeParameters.Cols())
}

// penalty returns the penalty of response j.
func (p *Parameter) penalty(j int) float64 {
	t := p.RidgeParameters
	if t == nil {
		return p.Lambda
	}
	if t.Cols() == 1 {
		j = 0
	}
	if t.DType() == tensor.Float32 {
		return float64(tensor.At[float32](t, 0, j))
	}
	return tensor.At[float64](t, 0, j)
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
	return linearmodel.SolveNormal(xtx, xty, par.InterceptFlag, par.penalty)
}

var registry = kernel.NewRegistry("ridge", func(r *kernel.Registry[Kernel]) {
	linearmodel.RegisterNormEq(r, NormEqDense, solve)
})

var distributed = linearmodel.NewDistributed("ridge", linearmodel.RidgeRegression, solve)

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
		linearmodel.NewResult[Parameter](linearmodel.RidgeRegression), opts...)
}

// NewStep1Local returns the local step of distributed training.
func NewStep1Local[F tensor.Float](opts ...algorithm.Option) (*algorithm.Batch[*Input, Parameter, *linearmodel.LocalResult[Parameter]], error) {
	return linearmodel.NewStep1Local[F](distributed, NormEqDense, DefaultParameter(), opts...)
}

// NewStep2Master returns the master step of distributed training. Penalties
// are applied here, so step 1 needs none.
func NewStep2Master[F tensor.Float](opts ...algorithm.Option) (*algorithm.Batch[*linearmodel.MasterInput[Parameter], Parameter, *linearmodel.MasterResult[Parameter]], error) {
	return linearmodel.NewStep2Master[F](distributed, NormEqDense, DefaultParameter(), opts...)
}

// TrainDistributed trains on blocks concurrently and merges their partial results.
func TrainDistributed[F tensor.Float](ctx context.Context, par Parameter, blocks []linearmodel.Block, opts ...algorithm.Option) (*Result, error) {
	return linearmodel.TrainDistributed[F](ctx, distributed, NormEqDense, par, blocks, opts...)
}

// ModelFrom returns the ridge regression model held by res. A result holding a
// model of another variant yields IncompatibleResultVariant.
func ModelFrom(res *Result) (*linearmodel.Model, error) {
	m, st := res.ModelOf(linearmodel.RidgeRegression)
	return m, st.Err()
}
