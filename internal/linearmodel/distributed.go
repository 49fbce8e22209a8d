package linearmodel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/check"
	"github.com/born-ml/kernels/internal/cpuid"
	"github.com/born-ml/kernels/internal/dense"
	"github.com/born-ml/kernels/internal/envconfig"
	"github.com/born-ml/kernels/internal/kernel"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// LocalResult is the result of the local step: the partial result of one block.
type LocalResult[P TrainingParameter] struct {
	*PartialResult
}

// NewLocalResult returns an empty local-step result.
func NewLocalResult[P TrainingParameter]() *LocalResult[P] {
	return &LocalResult[P]{NewPartialResult()}
}

// Allocate creates the partial result tables unless they are already set.
func (r *LocalResult[P]) Allocate(in *Input[P], _ *P, _ algorithm.Method, dtype tensor.DataType, prov tensor.Provider) status.Status {
	if st := in.present(); !st.OK() {
		return st
	}
	return r.allocate(in.Get(Data).Cols(), in.Get(DependentVariables).Cols(), dtype, prov)
}

// Check validates the partial result against the block.
func (r *LocalResult[P]) Check(in *Input[P], _ *P, _ algorithm.Method) status.Status {
	return check.Sequence(in.present, func() status.Status {
		return r.check(in.Get(Data).Cols(), in.Get(DependentVariables).Cols())
	})
}

// MasterInput collects the partial results of every block.
type MasterInput[P TrainingParameter] struct {
	partials []*PartialResult
}

// Add appends a partial result.
func (in *MasterInput[P]) Add(p *PartialResult) {
	in.partials = append(in.partials, p)
}

// Partials returns the collected partial results.
func (in *MasterInput[P]) Partials() []*PartialResult {
	return in.partials
}

// first returns the first partial result once it is present with both tables.
func (in *MasterInput[P]) first() (*PartialResult, status.Status) {
	if len(in.partials) == 0 {
		return nil, status.New(status.MissingRequiredInput, "partialResults", "")
	}
	p := in.partials[0]
	if p == nil {
		return nil, status.New(status.MissingRequiredInput, "partialResults[0]", "")
	}
	if st := p.checkPresent(); !st.OK() {
		return nil, st
	}
	return p, status.OK
}

// Check validates that at least one partial result is present, that all of
// them describe the same problem and that the parameter fits its responses.
func (in *MasterInput[P]) Check(par *P, _ algorithm.Method) status.Status {
	first, st := in.first()
	if !st.OK() {
		return st
	}
	for i, p := range in.partials {
		name := fmt.Sprintf("partialResults[%d]", i)
		if p == nil {
			st.Add(status.New(status.MissingRequiredInput, name, ""))
			continue
		}
		if s := p.checkPresent(); !s.OK() {
			st.Add(s)
			continue
		}
		st.Add(p.check(first.NumberOfFeatures(), first.NumberOfDependentVariables()))
		st.Add(check.Precision(p, name, first.DType()))
	}
	st.Add((*par).CheckResponses(first.NumberOfDependentVariables()))
	return st
}

// CheckPrecision reports partial result tables stored in another precision.
func (in *MasterInput[P]) CheckPrecision(dtype tensor.DataType) status.Status {
	var st status.Status
	for _, p := range in.partials {
		if p != nil {
			st.Add(p.CheckPrecision(dtype))
		}
	}
	return st
}

// MasterResult is the result of the master step: the trained model.
type MasterResult[P TrainingParameter] struct {
	*Result[P]
}

// Allocate creates the model from the shape of the partial results.
func (r *MasterResult[P]) Allocate(in *MasterInput[P], par *P, _ algorithm.Method, dtype tensor.DataType, prov tensor.Provider) status.Status {
	p, st := in.first()
	if !st.OK() {
		return st
	}
	return r.allocate(p.NumberOfFeatures(), p.NumberOfDependentVariables(), par, dtype, prov)
}

// Check validates the model against the partial results.
func (r *MasterResult[P]) Check(in *MasterInput[P], par *P, method algorithm.Method) status.Status {
	p, st := in.first()
	if !st.OK() {
		return st
	}
	return r.CheckPartial(p, par, method)
}

type localKernel[F tensor.Float, P TrainingParameter] struct{}

func (localKernel[F, P]) Compute(in *Input[P], _ *P, res *LocalResult[P]) status.Status {
	xtx, xty := NormalEquations[F](in.Get(Data), in.Get(DependentVariables))
	dense.ToTable[F](xtx, res.Get(XTX))
	dense.ToTable[F](xty, res.Get(XTY))
	return status.OK
}

type masterKernel[F tensor.Float, P TrainingParameter] struct {
	solve Solver[P]
}

func (k masterKernel[F, P]) Compute(in *MasterInput[P], par *P, res *MasterResult[P]) status.Status {
	first := in.partials[0]
	xtx := mat.NewSymDense(first.NumberOfFeatures()+1, nil)
	var xty mat.Dense
	for _, p := range in.partials {
		xtx.AddSym(xtx, dense.SymFromTable[F](p.Get(XTX)))
		y := dense.FromTable[F](p.Get(XTY))
		if xty.IsEmpty() {
			xty.CloneFrom(y)
			continue
		}
		xty.Add(&xty, y)
	}
	return writeBeta[F](k.solve, xtx, &xty, par, res.Model())
}

// Distributed bundles the kernel registries of the two training steps of one trainer.
type Distributed[P TrainingParameter] struct {
	Variant Variant
	Step1   *kernel.Registry[algorithm.Kernel[*Input[P], P, *LocalResult[P]]]
	Step2   *kernel.Registry[algorithm.Kernel[*MasterInput[P], P, *MasterResult[P]]]
}

// NewDistributed creates the step registries of a trainer. Only the
// normal-equation method supports distributed training.
func NewDistributed[P TrainingParameter](name string, v Variant, solve Solver[P]) *Distributed[P] {
	return &Distributed[P]{
		Variant: v,
		Step1:   kernel.NewRegistry(name+"/step1", registerLocal[P]),
		Step2: kernel.NewRegistry(name+"/step2", func(r *kernel.Registry[algorithm.Kernel[*MasterInput[P], P, *MasterResult[P]]]) {
			registerMaster(r, solve)
		}),
	}
}

func registerLocal[P TrainingParameter](r *kernel.Registry[algorithm.Kernel[*Input[P], P, *LocalResult[P]]]) {
	r.RegisterVariants(tensor.Float32, int(algorithm.DefaultDense), func(cpuid.ISA) kernel.Factory[algorithm.Kernel[*Input[P], P, *LocalResult[P]]] {
		return func() (algorithm.Kernel[*Input[P], P, *LocalResult[P]], error) { return localKernel[float32, P]{}, nil }
	})
	r.RegisterVariants(tensor.Float64, int(algorithm.DefaultDense), func(cpuid.ISA) kernel.Factory[algorithm.Kernel[*Input[P], P, *LocalResult[P]]] {
		return func() (algorithm.Kernel[*Input[P], P, *LocalResult[P]], error) { return localKernel[float64, P]{}, nil }
	})
}

func registerMaster[P TrainingParameter](r *kernel.Registry[algorithm.Kernel[*MasterInput[P], P, *MasterResult[P]]], solve Solver[P]) {
	r.RegisterVariants(tensor.Float32, int(algorithm.DefaultDense), func(cpuid.ISA) kernel.Factory[algorithm.Kernel[*MasterInput[P], P, *MasterResult[P]]] {
		return func() (algorithm.Kernel[*MasterInput[P], P, *MasterResult[P]], error) {
			return masterKernel[float32, P]{solve: solve}, nil
		}
	})
	r.RegisterVariants(tensor.Float64, int(algorithm.DefaultDense), func(cpuid.ISA) kernel.Factory[algorithm.Kernel[*MasterInput[P], P, *MasterResult[P]]] {
		return func() (algorithm.Kernel[*MasterInput[P], P, *MasterResult[P]], error) {
			return masterKernel[float64, P]{solve: solve}, nil
		}
	})
}

// NewStep1Local returns a local-step algorithm with an empty input.
func NewStep1Local[F tensor.Float, P TrainingParameter](d *Distributed[P], method algorithm.Method, par P, opts ...algorithm.Option) (*algorithm.Batch[*Input[P], P, *LocalResult[P]], error) {
	return algorithm.New[F](d.Step1, method, NewInput[P](), par, NewLocalResult[P](), opts...)
}

// NewStep2Master returns a master-step algorithm with no partial results.
func NewStep2Master[F tensor.Float, P TrainingParameter](d *Distributed[P], method algorithm.Method, par P, opts ...algorithm.Option) (*algorithm.Batch[*MasterInput[P], P, *MasterResult[P]], error) {
	return algorithm.New[F](d.Step2, method, &MasterInput[P]{}, par, &MasterResult[P]{NewResult[P](d.Variant)}, opts...)
}

// Block is one shard of the training data.
type Block struct {
	Data               *tensor.Table
	DependentVariables *tensor.Table
}

// TrainDistributed runs the local step on every block concurrently, then
// merges the partial results on the master step. The first failing block
// cancels the remaining ones.
func TrainDistributed[F tensor.Float, P TrainingParameter](ctx context.Context, d *Distributed[P], method algorithm.Method, par P, blocks []Block, opts ...algorithm.Option) (*Result[P], error) {
	partials := make([]*PartialResult, len(blocks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(envconfig.NumThreads())
	for i, blk := range blocks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			local, err := NewStep1Local[F](d, method, par, opts...)
			if err != nil {
				return err
			}
			defer local.Close()

			local.Input.Set(Data, blk.Data)
			local.Input.Set(DependentVariables, blk.DependentVariables)
			if err := local.Compute(); err != nil {
				return fmt.Errorf("block %d: %w", i, err)
			}
			partials[i] = local.Result().PartialResult
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	master, err := NewStep2Master[F](d, method, par, opts...)
	if err != nil {
		return nil, err
	}
	defer master.Close()
	for _, p := range partials {
		master.Input.Add(p)
	}
	if err := master.Compute(); err != nil {
		return nil, fmt.Errorf("master: %w", err)
	}
	slog.Debug("distributed training finished", "variant", d.Variant.String(), "blocks", len(blocks))
	return master.Result().Result, nil
}
