// Package elu implements the exponential linear unit layer:
// f(x) = x for x > 0 and alpha * (exp(x) - 1) otherwise.
package elu

import (
	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/argument"
	"github.com/born-ml/kernels/internal/check"
	"github.com/born-ml/kernels/internal/layers"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
)

// Parameter configures the layer.
type Parameter struct {
	layers.Parameter
	Alpha float64
}

// DefaultParameter returns alpha = 1 with gradient propagation.
func DefaultParameter() Parameter {
	return Parameter{Parameter: layers.Parameter{PropagateGradient: true}, Alpha: 1}
}

// Check validates alpha.
func (p *Parameter) Check() status.Status {
	return check.NonNegative("alpha", p.Alpha)
}

// ForwardInputID identifies a forward input.
type ForwardInputID int

// Forward inputs.
const (
	Data ForwardInputID = iota
	numForwardInputs
)

func (id ForwardInputID) String() string {
	if id == Data {
		return "data"
	}
	return "input"
}

// ForwardResultID identifies a forward output.
type ForwardResultID int

// Forward outputs. AuxData is kept for the backward pass.
const (
	Value ForwardResultID = iota
	AuxData
	numForwardResults
)

var resultNames = [numForwardResults]string{"value", "auxData"}

func (id ForwardResultID) String() string {
	return resultNames[id]
}

// ForwardInput holds the layer input.
type ForwardInput struct {
	*argument.Map[ForwardInputID]
}

// NewForwardInput returns an empty forward input.
func NewForwardInput() *ForwardInput {
	return &ForwardInput{argument.NewMap[ForwardInputID](int(numForwardInputs))}
}

// Check validates the input.
func (in *ForwardInput) Check(_ *Parameter, _ algorithm.Method) status.Status {
	return check.Tensor(layers.Tensor(in.Map, Data), "data", nil)
}

// ForwardResult holds the layer output and the tensors the backward pass needs.
type ForwardResult struct {
	*argument.Map[ForwardResultID]
}

// NewForwardResult returns an empty forward result.
func NewForwardResult() *ForwardResult {
	return &ForwardResult{argument.NewMap[ForwardResultID](int(numForwardResults))}
}

// Get returns the tensor stored under id.
func (r *ForwardResult) Get(id ForwardResultID) *tensor.RawTensor {
	return layers.Tensor(r.Map, id)
}

// Allocate creates the output with the input's shape and shares the input as AuxData.
func (r *ForwardResult) Allocate(in *ForwardInput, _ *Parameter, _ algorithm.Method, dtype tensor.DataType, prov tensor.Provider) status.Status {
	data := layers.Tensor(in.Map, Data)
	if st := check.Tensor(data, "data", nil); !st.OK() {
		return st
	}
	layers.Share(r.Map, AuxData, data)
	return layers.Ensure(r.Map, Value, "value", data.Shape(), dtype, prov)
}

// Check validates the output.
func (r *ForwardResult) Check(in *ForwardInput, _ *Parameter, _ algorithm.Method) status.Status {
	data := layers.Tensor(in.Map, Data)
	return check.Sequence(
		func() status.Status { return check.Tensor(data, "data", nil) },
		func() status.Status {
			return check.Independent(
				func() status.Status { return check.Tensor(r.Get(Value), "value", data.Shape()) },
				func() status.Status { return check.Tensor(r.Get(AuxData), "auxData", data.Shape()) },
			)
		},
	)
}

// BackwardInputID identifies a backward input.
type BackwardInputID int

// Backward inputs.
const (
	InputGradient BackwardInputID = iota
	InputFromForward
	numBackwardInputs
)

var backwardNames = [numBackwardInputs]string{"inputGradient", "inputFromForward"}

func (id BackwardInputID) String() string {
	return backwardNames[id]
}

// BackwardInput holds the gradient flowing in from the next layer and the
// input of the forward pass.
type BackwardInput struct {
	*argument.Map[BackwardInputID]
}

// NewBackwardInput returns an empty backward input.
func NewBackwardInput() *BackwardInput {
	return &BackwardInput{argument.NewMap[BackwardInputID](int(numBackwardInputs))}
}

// SetFromForward shares the auxiliary tensors of a forward result.
func (in *BackwardInput) SetFromForward(fr *ForwardResult) {
	in.Set(InputFromForward, fr.Get(AuxData))
}

// Check validates that both tensors are present and have the same shape.
func (in *BackwardInput) Check(_ *Parameter, _ algorithm.Method) status.Status {
	ig, aux := layers.Tensor(in.Map, InputGradient), layers.Tensor(in.Map, InputFromForward)
	return check.Sequence(
		func() status.Status {
			return check.Independent(
				func() status.Status { return check.Tensor(ig, "inputGradient", nil) },
				func() status.Status { return check.Tensor(aux, "inputFromForward", nil) },
			)
		},
		func() status.Status { return check.Tensor(ig, "inputGradient", aux.Shape()) },
	)
}

func shapes(in *BackwardInput) (layers.Shapes, status.Status) {
	aux := layers.Tensor(in.Map, InputFromForward)
	if st := check.Tensor(aux, "inputFromForward", nil); !st.OK() {
		return layers.Shapes{}, st
	}
	return layers.Shapes{Gradient: aux.Shape()}, status.OK
}

// BackwardResult holds the gradient.
type BackwardResult struct {
	*layers.BackwardResult
}

// NewBackwardResult returns an empty backward result.
func NewBackwardResult() *BackwardResult {
	return &BackwardResult{layers.NewBackwardResult()}
}

// Allocate creates the gradient when it is requested and not already set.
func (r *BackwardResult) Allocate(in *BackwardInput, par *Parameter, _ algorithm.Method, dtype tensor.DataType, prov tensor.Provider) status.Status {
	s, st := shapes(in)
	if !st.OK() {
		return st
	}
	return r.AllocateShapes(par.Parameter, s, dtype, prov)
}

// Check validates the gradient.
func (r *BackwardResult) Check(in *BackwardInput, par *Parameter, _ algorithm.Method) status.Status {
	s, st := shapes(in)
	if !st.OK() {
		return st
	}
	return r.CheckShapes(par.Parameter, s)
}
