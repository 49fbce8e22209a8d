package linearmodel

import (
	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/argument"
	"github.com/born-ml/kernels/internal/check"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
)

// ResultID identifies a training output.
type ResultID int

// Training outputs.
const (
	TrainedModel ResultID = iota
	numResults
)

func (id ResultID) String() string {
	if id == TrainedModel {
		return "model"
	}
	return "result"
}

// Result holds the trained model. The variant is fixed by the trainer that
// creates the result.
type Result[P TrainingParameter] struct {
	*argument.Map[ResultID]
	variant Variant
}

// NewResult returns an empty result for models of variant v.
func NewResult[P TrainingParameter](v Variant) *Result[P] {
	return &Result[P]{Map: argument.NewMap[ResultID](int(numResults)), variant: v}
}

// Variant returns the model variant the result expects.
func (r *Result[P]) Variant() Variant {
	return r.variant
}

// Model returns the stored model, or nil.
func (r *Result[P]) Model() *Model {
	return argument.Get[*Model](r.Map, TrainedModel)
}

// ModelOf returns the stored model when it was produced by variant v.
func (r *Result[P]) ModelOf(v Variant) (*Model, status.Status) {
	m := r.Model()
	if m == nil {
		return nil, status.New(status.MissingRequiredInput, "model", "")
	}
	if m.Variant() != v {
		return nil, status.New(status.IncompatibleResultVariant, "model", "holds a %s model, not %s", m.Variant(), v)
	}
	return m, status.OK
}

// Allocate creates the model unless it is already set.
func (r *Result[P]) Allocate(in *Input[P], par *P, _ algorithm.Method, dtype tensor.DataType, prov tensor.Provider) status.Status {
	if st := in.present(); !st.OK() {
		return st
	}
	return r.allocate(in.Get(Data).Cols(), in.Get(DependentVariables).Cols(), par, dtype, prov)
}

func (r *Result[P]) allocate(nFeatures, nResponses int, par *P, dtype tensor.DataType, prov tensor.Provider) status.Status {
	if r.Has(TrainedModel) {
		return status.OK
	}
	m, err := NewModel(r.variant, nFeatures, nResponses, (*par).Training().InterceptFlag, dtype, prov)
	if err != nil {
		return status.FromError(status.AllocationFailure, "model", err)
	}
	r.Set(TrainedModel, m)
	return status.OK
}

// Check validates the model against the training input.
func (r *Result[P]) Check(in *Input[P], _ *P, _ algorithm.Method) status.Status {
	return check.Sequence(in.present, func() status.Status {
		return r.check(in.Get(Data).Cols(), in.Get(DependentVariables).Cols())
	})
}

func (r *Result[P]) check(nFeatures, nResponses int) status.Status {
	return check.Sequence(
		func() status.Status {
			m, ok := r.Object(TrainedModel).(*Model)
			if r.Has(TrainedModel) && !ok {
				return status.New(status.IncompatibleResultVariant, "model", "holds %T", r.Object(TrainedModel))
			}
			return CheckModel(m, "model", nFeatures, nResponses)
		},
		func() status.Status {
			_, st := r.ModelOf(r.variant)
			return st
		},
	)
}

// CheckPartial validates the result against a partial result computed by the
// local step of distributed training.
func (r *Result[P]) CheckPartial(pr argument.Object, _ *P, _ algorithm.Method) status.Status {
	partial, ok := pr.(*PartialResult)
	if !ok || partial == nil {
		return status.New(status.IncompatibleResultVariant, "partialResult", "expected a normal-equation partial result, got %T", pr)
	}
	return check.Sequence(
		func() status.Status { return check.Count("result", r.Len(), int(numResults)) },
		partial.checkPresent,
		func() status.Status {
			return r.check(partial.NumberOfFeatures(), partial.NumberOfDependentVariables())
		},
	)
}
