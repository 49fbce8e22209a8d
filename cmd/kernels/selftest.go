package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/cpuid"
	"github.com/born-ml/kernels/internal/layers/batchnorm"
	"github.com/born-ml/kernels/internal/layers/elu"
	"github.com/born-ml/kernels/internal/layers/transposedconv2d"
	"github.com/born-ml/kernels/internal/linearmodel"
	"github.com/born-ml/kernels/internal/linreg"
	"github.com/born-ml/kernels/internal/qr"
	"github.com/born-ml/kernels/internal/ridge"
	"github.com/born-ml/kernels/internal/svd"
	"github.com/born-ml/kernels/internal/tensor"
	"github.com/spf13/cobra"
)

type selftest struct {
	name string
	run  func(ctx context.Context, opts []algorithm.Option) error
}

// SelftestHandler runs every algorithm once on random data and prints the
// outcome of each run. It fails if any run fails.
func SelftestHandler(cmd *cobra.Command, _ []string) error {
	var opts []algorithm.Option
	if v, _ := cmd.Flags().GetString("variant"); v != "" {
		isa, ok := cpuid.ParseISA(v)
		if !ok {
			return fmt.Errorf("unknown variant %q", v)
		}
		opts = append(opts, algorithm.WithVariant(isa))
	}
	if pc, _ := cmd.Flags().GetBool("post-check"); pc {
		opts = append(opts, algorithm.WithPostCheck(true))
	}

	var data [][]string
	var errs []error
	for _, tc := range selftests() {
		start := time.Now()
		err := tc.run(cmd.Context(), opts)
		result := "ok"
		if err != nil {
			result = "FAIL"
			errs = append(errs, fmt.Errorf("%s: %w", tc.name, err))
			slog.Debug("selftest failed", "name", tc.name, "error", err)
		}
		data = append(data, []string{tc.name, result, time.Since(start).Round(time.Microsecond).String()})
	}

	table := newTable(cmd.OutOrStdout(), []string{"ALGORITHM", "RESULT", "TIME"})
	table.AppendBulk(data)
	table.Render()
	return errors.Join(errs...)
}

func randomSlice[F tensor.Float](r *rand.Rand, n int) []F {
	out := make([]F, n)
	for i := range out {
		out[i] = F(r.NormFloat64())
	}
	return out
}

func randomTable[F tensor.Float](r *rand.Rand, rows, cols int) (*tensor.Table, error) {
	return tensor.TableFromSlice(randomSlice[F](r, rows*cols), rows, cols)
}

func randomTensor[F tensor.Float](r *rand.Rand, shape tensor.Shape) (*tensor.RawTensor, error) {
	return tensor.FromSlice(randomSlice[F](r, shape.NumElements()), shape)
}

// regressionProblem returns n observations of p features and k responses.
func regressionProblem(r *rand.Rand, n, p, k int) (*tensor.Table, *tensor.Table, error) {
	x, err := randomTable[float64](r, n, p)
	if err != nil {
		return nil, nil, err
	}
	y, err := randomTable[float64](r, n, k)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

func selftests() []selftest {
	r := rand.New(rand.NewPCG(1, 2))
	return []selftest{
		{"svd", func(_ context.Context, opts []algorithm.Option) error {
			x, err := randomTable[float64](r, 100, 10)
			if err != nil {
				return err
			}
			alg, err := svd.NewBatch[float64](algorithm.DefaultDense, opts...)
			if err != nil {
				return err
			}
			defer alg.Close()
			alg.Input.Set(svd.Data, x)
			alg.Parameter.LeftSingularMatrix = svd.RequiredInPackedForm
			return alg.Compute()
		}},
		{"qr", func(_ context.Context, opts []algorithm.Option) error {
			x, err := randomTable[float32](r, 100, 10)
			if err != nil {
				return err
			}
			alg, err := qr.NewBatch[float32](algorithm.DefaultDense, opts...)
			if err != nil {
				return err
			}
			defer alg.Close()
			alg.Input.Set(qr.Data, x)
			return alg.Compute()
		}},
		{"linreg/normeq", func(_ context.Context, opts []algorithm.Option) error {
			return trainLinreg(r, linreg.NormEqDense, opts)
		}},
		{"linreg/qr", func(_ context.Context, opts []algorithm.Option) error {
			return trainLinreg(r, linreg.QRDense, opts)
		}},
		{"linreg/distributed", func(ctx context.Context, opts []algorithm.Option) error {
			blocks, err := regressionBlocks(r, 4)
			if err != nil {
				return err
			}
			_, err = linreg.TrainDistributed[float64](ctx, linreg.DefaultParameter(), blocks, opts...)
			return err
		}},
		{"ridge", func(_ context.Context, opts []algorithm.Option) error {
			x, y, err := regressionProblem(r, 200, 5, 2)
			if err != nil {
				return err
			}
			alg, err := ridge.NewBatch[float64](ridge.NormEqDense, opts...)
			if err != nil {
				return err
			}
			defer alg.Close()
			alg.Input.Set(linearmodel.Data, x)
			alg.Input.Set(linearmodel.DependentVariables, y)
			return alg.Compute()
		}},
		{"ridge/distributed", func(ctx context.Context, opts []algorithm.Option) error {
			blocks, err := regressionBlocks(r, 4)
			if err != nil {
				return err
			}
			_, err = ridge.TrainDistributed[float64](ctx, ridge.DefaultParameter(), blocks, opts...)
			return err
		}},
		{"elu", func(_ context.Context, opts []algorithm.Option) error {
			return runELU(r, opts)
		}},
		{"batchnorm", func(_ context.Context, opts []algorithm.Option) error {
			return runBatchNorm(r, opts)
		}},
		{"transposedconv2d/direct", func(_ context.Context, opts []algorithm.Option) error {
			return runTransposedConv(r, transposedconv2d.DefaultDense, opts)
		}},
		{"transposedconv2d/im2col", func(_ context.Context, opts []algorithm.Option) error {
			return runTransposedConv(r, transposedconv2d.Im2ColDense, opts)
		}},
	}
}

func trainLinreg(r *rand.Rand, method algorithm.Method, opts []algorithm.Option) error {
	x, y, err := regressionProblem(r, 200, 5, 2)
	if err != nil {
		return err
	}
	alg, err := linreg.NewBatch[float64](method, opts...)
	if err != nil {
		return err
	}
	defer alg.Close()
	alg.Input.Set(linearmodel.Data, x)
	alg.Input.Set(linearmodel.DependentVariables, y)
	return alg.Compute()
}

func regressionBlocks(r *rand.Rand, n int) ([]linearmodel.Block, error) {
	blocks := make([]linearmodel.Block, n)
	for i := range blocks {
		x, y, err := regressionProblem(r, 50, 5, 2)
		if err != nil {
			return nil, err
		}
		blocks[i] = linearmodel.Block{Data: x, DependentVariables: y}
	}
	return blocks, nil
}

func runELU(r *rand.Rand, opts []algorithm.Option) error {
	shape := tensor.Shape{8, 4, 6, 6}
	x, err := randomTensor[float32](r, shape)
	if err != nil {
		return err
	}
	ig, err := randomTensor[float32](r, shape)
	if err != nil {
		return err
	}

	fwd, err := elu.NewForward[float32](algorithm.DefaultDense, opts...)
	if err != nil {
		return err
	}
	defer fwd.Close()
	fwd.Input.Set(elu.Data, x)
	if err := fwd.Compute(); err != nil {
		return err
	}

	bwd, err := elu.NewBackward[float32](algorithm.DefaultDense, opts...)
	if err != nil {
		return err
	}
	defer bwd.Close()
	bwd.Input.Set(elu.InputGradient, ig)
	bwd.Input.SetFromForward(fwd.Result())
	return bwd.Compute()
}

func runBatchNorm(r *rand.Rand, opts []algorithm.Option) error {
	shape := tensor.Shape{8, 4, 6, 6}
	x, err := randomTensor[float32](r, shape)
	if err != nil {
		return err
	}
	w, err := randomTensor[float32](r, tensor.Shape{4})
	if err != nil {
		return err
	}
	b, err := randomTensor[float32](r, tensor.Shape{4})
	if err != nil {
		return err
	}
	ig, err := randomTensor[float32](r, shape)
	if err != nil {
		return err
	}

	fwd, err := batchnorm.NewForward[float32](algorithm.DefaultDense, opts...)
	if err != nil {
		return err
	}
	defer fwd.Close()
	fwd.Input.Set(batchnorm.Data, x)
	fwd.Input.Set(batchnorm.Weights, w)
	fwd.Input.Set(batchnorm.Biases, b)
	if err := fwd.Compute(); err != nil {
		return err
	}

	bwd, err := batchnorm.NewBackward[float32](algorithm.DefaultDense, opts...)
	if err != nil {
		return err
	}
	defer bwd.Close()
	bwd.Input.Set(batchnorm.InputGradient, ig)
	bwd.Input.SetFromForward(fwd.Result())
	return bwd.Compute()
}

func runTransposedConv(r *rand.Rand, method algorithm.Method, opts []algorithm.Option) error {
	par := transposedconv2d.DefaultParameter()
	par.NKernels = 3
	x, err := randomTensor[float32](r, tensor.Shape{8, 4, 6, 6})
	if err != nil {
		return err
	}
	w, err := randomTensor[float32](r, tensor.Shape{4, 3, 2, 2})
	if err != nil {
		return err
	}
	b, err := randomTensor[float32](r, tensor.Shape{3})
	if err != nil {
		return err
	}
	ig, err := randomTensor[float32](r, tensor.Shape{8, 3, 12, 12})
	if err != nil {
		return err
	}

	fwd, err := transposedconv2d.NewForward[float32](method, opts...)
	if err != nil {
		return err
	}
	defer fwd.Close()
	fwd.Parameter = par
	fwd.Input.Set(transposedconv2d.Data, x)
	fwd.Input.Set(transposedconv2d.Weights, w)
	fwd.Input.Set(transposedconv2d.Biases, b)
	if err := fwd.Compute(); err != nil {
		return err
	}

	bwd, err := transposedconv2d.NewBackward[float32](method, opts...)
	if err != nil {
		return err
	}
	defer bwd.Close()
	bwd.Parameter = par
	bwd.Input.Set(transposedconv2d.InputGradient, ig)
	bwd.Input.SetFromForward(fwd.Result())
	return bwd.Compute()
}
