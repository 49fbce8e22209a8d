package linearmodel

import (
	"errors"
	"fmt"

	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/cpuid"
	"github.com/born-ml/kernels/internal/dense"
	"github.com/born-ml/kernels/internal/kernel"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// ErrNotPositiveDefinite is returned when the normal equations cannot be solved
// by Cholesky factorization, typically because of collinear features.
var ErrNotPositiveDefinite = errors.New("normal equations are not positive definite")

// Solver turns the normal equations into coefficients. xtx is nBetas x nBetas,
// xty is nResponses x nBetas; the returned matrix has the shape of xty.
type Solver[P TrainingParameter] func(xtx *mat.SymDense, xty *mat.Dense, par *P) (*mat.Dense, error)

// Augment prepends a column of ones to the data table.
func Augment[F tensor.Float](x *tensor.Table) *mat.Dense {
	n, p := x.Rows(), x.Cols()
	src := tensor.TableData[F](x)
	data := make([]float64, n*(p+1))
	for i := range n {
		row := data[i*(p+1) : (i+1)*(p+1)]
		row[0] = 1
		for j, v := range src[i*p : (i+1)*p] {
			row[j+1] = float64(v)
		}
	}
	return mat.NewDense(n, p+1, data)
}

// NormalEquations computes X'X and Y'X for one block, X carrying a leading
// intercept column.
func NormalEquations[F tensor.Float](x, y *tensor.Table) (*mat.SymDense, *mat.Dense) {
	xa := Augment[F](x)
	_, nBetas := xa.Dims()

	xtx := mat.NewSymDense(nBetas, nil)
	xtx.SymOuterK(1, xa.T())

	var xty mat.Dense
	xty.Mul(dense.FromTable[F](y).T(), xa)
	return xtx, &xty
}

// SolveNormal solves the normal equations for each response. Without an
// intercept the first row and column are dropped and the intercept is zero.
// A non-nil penalty adds a per-response ridge term to the feature diagonal.
func SolveNormal(xtx *mat.SymDense, xty *mat.Dense, intercept bool, penalty func(response int) float64) (*mat.Dense, error) {
	nBetas := xtx.SymmetricDim()
	nResponses, _ := xty.Dims()
	off := 1
	if intercept {
		off = 0
	}
	m := nBetas - off

	beta := mat.NewDense(nResponses, nBetas, nil)
	a := mat.NewSymDense(m, nil)
	b := mat.NewVecDense(m, nil)
	var x mat.VecDense
	for j := range nResponses {
		for r := range m {
			for c := r; c < m; c++ {
				a.SetSym(r, c, xtx.At(r+off, c+off))
			}
			b.SetVec(r, xty.At(j, r+off))
		}
		if penalty != nil {
			lambda := penalty(j)
			for r := range m {
				if r+off == 0 {
					continue // intercept is not penalized
				}
				a.SetSym(r, r, a.At(r, r)+lambda)
			}
		}

		var ch mat.Cholesky
		if !ch.Factorize(a) {
			return nil, fmt.Errorf("response %d: %w", j, ErrNotPositiveDefinite)
		}
		if err := ch.SolveVecTo(&x, b); err != nil {
			return nil, fmt.Errorf("response %d: %w", j, err)
		}
		for r := range m {
			beta.Set(j, r+off, x.AtVec(r))
		}
	}
	return beta, nil
}

type normEqKernel[F tensor.Float, P TrainingParameter] struct {
	solve Solver[P]
}

// RegisterNormEq registers the batch normal-equation kernels of both
// precisions under method.
func RegisterNormEq[P TrainingParameter](r *kernel.Registry[algorithm.Kernel[*Input[P], P, *Result[P]]], method algorithm.Method, solve Solver[P]) {
	r.RegisterVariants(tensor.Float32, int(method), func(cpuid.ISA) kernel.Factory[algorithm.Kernel[*Input[P], P, *Result[P]]] {
		return func() (algorithm.Kernel[*Input[P], P, *Result[P]], error) {
			return normEqKernel[float32, P]{solve: solve}, nil
		}
	})
	r.RegisterVariants(tensor.Float64, int(method), func(cpuid.ISA) kernel.Factory[algorithm.Kernel[*Input[P], P, *Result[P]]] {
		return func() (algorithm.Kernel[*Input[P], P, *Result[P]], error) {
			return normEqKernel[float64, P]{solve: solve}, nil
		}
	})
}

func (k normEqKernel[F, P]) Compute(in *Input[P], par *P, res *Result[P]) status.Status {
	xtx, xty := NormalEquations[F](in.Get(Data), in.Get(DependentVariables))
	return writeBeta[F](k.solve, xtx, xty, par, res.Model())
}

func writeBeta[F tensor.Float, P TrainingParameter](solve Solver[P], xtx *mat.SymDense, xty *mat.Dense, par *P, m *Model) status.Status {
	beta, err := solve(xtx, xty, par)
	if err != nil {
		return status.FromError(status.KernelComputationFailure, "beta", err)
	}
	dense.ToTable[F](beta, m.Beta)
	return status.OK
}
