// Package layers holds what neural-network layer algorithms share: the
// gradient-propagation parameter, the backward result with its allocation
// policy and the helpers forward results use to expose auxiliary tensors to
// the backward pass.
//
// A forward result keeps the tensors its backward pass needs under aux
// identifiers. The backward input of the same layer stores the very same
// tensors (by pointer), so no copy is made between the two passes.
package layers

import (
	"github.com/born-ml/kernels/internal/argument"
	"github.com/born-ml/kernels/internal/check"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
)

// Parameter holds the options every layer shares.
type Parameter struct {
	// PropagateGradient requests the gradient with respect to the layer input.
	// It is usually false for the first layer of a network.
	PropagateGradient bool
}

// BackwardResultID identifies an output of a backward layer.
type BackwardResultID int

// Backward outputs.
const (
	Gradient BackwardResultID = iota
	WeightDerivatives
	BiasDerivatives
	numBackwardResults
)

// String returns the output name used in status entries.
func (id BackwardResultID) String() string {
	switch id {
	case Gradient:
		return "gradient"
	case WeightDerivatives:
		return "weightDerivatives"
	default:
		return "biasDerivatives"
	}
}

// Shapes gives the shape of each backward output. A nil shape means the layer
// does not produce that output.
type Shapes struct {
	Gradient          tensor.Shape
	WeightDerivatives tensor.Shape
	BiasDerivatives   tensor.Shape
}

func (s Shapes) of(id BackwardResultID) tensor.Shape {
	switch id {
	case Gradient:
		return s.Gradient
	case WeightDerivatives:
		return s.WeightDerivatives
	default:
		return s.BiasDerivatives
	}
}

// BackwardResult holds the gradient and the parameter derivatives.
type BackwardResult struct {
	*argument.Map[BackwardResultID]
}

// NewBackwardResult returns an empty backward result.
func NewBackwardResult() *BackwardResult {
	return &BackwardResult{argument.NewMap[BackwardResultID](int(numBackwardResults))}
}

// Get returns the tensor stored under id.
func (r *BackwardResult) Get(id BackwardResultID) *tensor.RawTensor {
	return argument.Get[*tensor.RawTensor](r.Map, id)
}

func required(par Parameter, s Shapes, id BackwardResultID) bool {
	if s.of(id) == nil {
		return false
	}
	return id != Gradient || par.PropagateGradient
}

// AllocateShapes creates every required output that is not already set. The
// gradient is required only when par.PropagateGradient is set.
func (r *BackwardResult) AllocateShapes(par Parameter, s Shapes, dtype tensor.DataType, prov tensor.Provider) status.Status {
	for id := range numBackwardResults {
		if !required(par, s, id) {
			continue
		}
		if st := Ensure(r.Map, id, id.String(), s.of(id), dtype, prov); !st.OK() {
			return st
		}
	}
	return status.OK
}

// CheckShapes validates every required output.
func (r *BackwardResult) CheckShapes(par Parameter, s Shapes) status.Status {
	var rules []check.Rule
	for id := range numBackwardResults {
		if !required(par, s, id) {
			continue
		}
		rules = append(rules, func() status.Status {
			return check.Tensor(r.Get(id), id.String(), s.of(id))
		})
	}
	return check.Independent(rules...)
}

// Ensure allocates a tensor of shape under id unless the slot is already set.
func Ensure[ID ~int](m *argument.Map[ID], id ID, name string, shape tensor.Shape, dtype tensor.DataType, prov tensor.Provider) status.Status {
	if m.Has(id) {
		return status.OK
	}
	t, err := prov.NewTensor(shape, dtype)
	if err != nil {
		return status.FromError(status.AllocationFailure, name, err)
	}
	m.Set(id, t)
	return status.OK
}

// Share stores obj under id unless the slot is already set. Forward results use
// it to expose their inputs to the backward pass without copying.
func Share[ID ~int](m *argument.Map[ID], id ID, obj argument.Object) {
	if !m.Has(id) {
		m.Set(id, obj)
	}
}

// Tensor returns the tensor stored under id.
func Tensor[ID ~int](m *argument.Map[ID], id ID) *tensor.RawTensor {
	return argument.Get[*tensor.RawTensor](m, id)
}
