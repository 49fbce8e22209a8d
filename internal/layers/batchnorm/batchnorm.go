// Package batchnorm implements the batch normalization layer. Statistics are
// computed per channel over every other dimension of the input.
package batchnorm

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
	Dimension int     // Index of the channel dimension
	Epsilon   float64 // Added to the variance before the square root
	Alpha     float64 // Weight of the current batch in the population statistics
}

// DefaultParameter normalizes over dimension 1 with gradient propagation.
func DefaultParameter() Parameter {
	return Parameter{
		Parameter: layers.Parameter{PropagateGradient: true},
		Dimension: 1,
		Epsilon:   1e-5,
		Alpha:     0.01,
	}
}

// Check validates the constants.
func (p *Parameter) Check() status.Status {
	return check.Independent(
		func() status.Status { return check.NonNegative("dimension", p.Dimension) },
		func() status.Status { return check.Positive("epsilon", p.Epsilon) },
		func() status.Status {
			if p.Alpha < 0 || p.Alpha > 1 {
				return status.New(status.InvalidParameter, "alpha", "must be in [0, 1], got %v", p.Alpha)
			}
			return status.OK
		},
	)
}

// channels returns the extent of the channel dimension, or zero when the
// dimension is out of range.
func (p *Parameter) channels(data *tensor.RawTensor) int {
	if p.Dimension < 0 || p.Dimension >= data.Shape().Rank() {
		return 0
	}
	return data.Shape()[p.Dimension]
}

func checkData(data *tensor.RawTensor, name string, par *Parameter) status.Status {
	return check.Sequence(
		func() status.Status { return check.Tensor(data, name, nil) },
		func() status.Status {
			if par.channels(data) == 0 {
				return status.New(status.ShapeMismatch, name, "rank %d has no dimension %d", data.Shape().Rank(), par.Dimension)
			}
			return status.OK
		},
	)
}

// ForwardInputID identifies a forward input.
type ForwardInputID int

// Forward inputs.
const (
	Data ForwardInputID = iota
	Weights
	Biases
	numForwardInputs
)

var inputNames = [numForwardInputs]string{"data", "weights", "biases"}

func (id ForwardInputID) String() string {
	return inputNames[id]
}

// ForwardResultID identifies a forward output.
type ForwardResultID int

// Forward outputs. Every output but Value is kept for the backward pass or
// for inference.
const (
	Value ForwardResultID = iota
	AuxData
	AuxWeights
	AuxMean
	AuxStandardDeviation
	AuxPopulationMean
	AuxPopulationVariance
	numForwardResults
)

var forwardNames = [numForwardResults]string{
	"value", "auxData", "auxWeights", "auxMean", "auxStandardDeviation", "auxPopulationMean", "auxPopulationVariance",
}

func (id ForwardResultID) String() string {
	return forwardNames[id]
}

// ForwardInput holds the data and the per-channel weights and biases.
type ForwardInput struct {
	*argument.Map[ForwardInputID]
}

// NewForwardInput returns an empty forward input.
func NewForwardInput() *ForwardInput {
	return &ForwardInput{argument.NewMap[ForwardInputID](int(numForwardInputs))}
}

// Check validates the data, then the weights and biases against its channel count.
func (in *ForwardInput) Check(par *Parameter, _ algorithm.Method) status.Status {
	data := layers.Tensor(in.Map, Data)
	if st := checkData(data, "data", par); !st.OK() {
		return st
	}
	c := tensor.Shape{par.channels(data)}
	return check.Independent(
		func() status.Status { return check.Tensor(layers.Tensor(in.Map, Weights), "weights", c) },
		func() status.Status { return check.Tensor(layers.Tensor(in.Map, Biases), "biases", c) },
	)
}

// ForwardResult holds the normalized output and the auxiliary statistics.
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

// Allocate creates the output and the statistics, and shares the data and
// weights with the backward pass.
func (r *ForwardResult) Allocate(in *ForwardInput, par *Parameter, _ algorithm.Method, dtype tensor.DataType, prov tensor.Provider) status.Status {
	data := layers.Tensor(in.Map, Data)
	if st := checkData(data, "data", par); !st.OK() {
		return st
	}
	layers.Share(r.Map, AuxData, data)
	layers.Share(r.Map, AuxWeights, layers.Tensor(in.Map, Weights))

	if st := layers.Ensure(r.Map, Value, forwardNames[Value], data.Shape(), dtype, prov); !st.OK() {
		return st
	}
	c := tensor.Shape{par.channels(data)}
	for _, id := range []ForwardResultID{AuxMean, AuxStandardDeviation, AuxPopulationMean, AuxPopulationVariance} {
		if st := layers.Ensure(r.Map, id, forwardNames[id], c, dtype, prov); !st.OK() {
			return st
		}
	}
	return status.OK
}

// Check validates every output.
func (r *ForwardResult) Check(in *ForwardInput, par *Parameter, _ algorithm.Method) status.Status {
	data := layers.Tensor(in.Map, Data)
	if st := checkData(data, "data", par); !st.OK() {
		return st
	}
	c := tensor.Shape{par.channels(data)}
	var rules []check.Rule
	for id := range numForwardResults {
		want := c
		switch id {
		case Value, AuxData:
			want = data.Shape()
		}
		rules = append(rules, func() status.Status { return check.Tensor(r.Get(id), forwardNames[id], want) })
	}
	return check.Independent(rules...)
}

// BackwardInputID identifies a backward input.
type BackwardInputID int

// Backward inputs.
const (
	InputGradient BackwardInputID = iota
	BackwardAuxData
	BackwardAuxWeights
	BackwardAuxMean
	BackwardAuxStandardDeviation
	numBackwardInputs
)

var backwardNames = [numBackwardInputs]string{
	"inputGradient", "auxData", "auxWeights", "auxMean", "auxStandardDeviation",
}

func (id BackwardInputID) String() string {
	return backwardNames[id]
}

// BackwardInput holds the incoming gradient and the forward statistics.
type BackwardInput struct {
	*argument.Map[BackwardInputID]
}

// NewBackwardInput returns an empty backward input.
func NewBackwardInput() *BackwardInput {
	return &BackwardInput{argument.NewMap[BackwardInputID](int(numBackwardInputs))}
}

// SetFromForward shares the auxiliary tensors of a forward result.
func (in *BackwardInput) SetFromForward(fr *ForwardResult) {
	in.Set(BackwardAuxData, fr.Get(AuxData))
	in.Set(BackwardAuxWeights, fr.Get(AuxWeights))
	in.Set(BackwardAuxMean, fr.Get(AuxMean))
	in.Set(BackwardAuxStandardDeviation, fr.Get(AuxStandardDeviation))
}

func (in *BackwardInput) get(id BackwardInputID) *tensor.RawTensor {
	return layers.Tensor(in.Map, id)
}

// Check validates the aux data first; every other input is sized from it.
func (in *BackwardInput) Check(par *Parameter, _ algorithm.Method) status.Status {
	data := in.get(BackwardAuxData)
	if st := checkData(data, backwardNames[BackwardAuxData], par); !st.OK() {
		return st
	}
	c := tensor.Shape{par.channels(data)}
	return check.Independent(
		func() status.Status {
			return check.Tensor(in.get(InputGradient), backwardNames[InputGradient], data.Shape())
		},
		func() status.Status {
			return check.Tensor(in.get(BackwardAuxWeights), backwardNames[BackwardAuxWeights], c)
		},
		func() status.Status {
			return check.Tensor(in.get(BackwardAuxMean), backwardNames[BackwardAuxMean], c)
		},
		func() status.Status {
			return check.Tensor(in.get(BackwardAuxStandardDeviation), backwardNames[BackwardAuxStandardDeviation], c)
		},
	)
}

func shapes(in *BackwardInput, par *Parameter) (layers.Shapes, status.Status) {
	data, weights := in.get(BackwardAuxData), in.get(BackwardAuxWeights)
	st := check.Independent(
		func() status.Status { return checkData(data, backwardNames[BackwardAuxData], par) },
		func() status.Status { return check.Tensor(weights, backwardNames[BackwardAuxWeights], nil) },
	)
	if !st.OK() {
		return layers.Shapes{}, st
	}
	return layers.Shapes{
		Gradient:          data.Shape(),
		WeightDerivatives: weights.Shape(),
		BiasDerivatives:   tensor.Shape{par.channels(data)},
	}, status.OK
}

// BackwardResult holds the gradient and the weight and bias derivatives.
type BackwardResult struct {
	*layers.BackwardResult
}

// NewBackwardResult returns an empty backward result.
func NewBackwardResult() *BackwardResult {
	return &BackwardResult{layers.NewBackwardResult()}
}

// Allocate creates every missing output.
func (r *BackwardResult) Allocate(in *BackwardInput, par *Parameter, _ algorithm.Method, dtype tensor.DataType, prov tensor.Provider) status.Status {
	s, st := shapes(in, par)
	if !st.OK() {
		return st
	}
	return r.AllocateShapes(par.Parameter, s, dtype, prov)
}

// Check validates every output.
func (r *BackwardResult) Check(in *BackwardInput, par *Parameter, _ algorithm.Method) status.Status {
	s, st := shapes(in, par)
	if !st.OK() {
		return st
	}
	return r.CheckShapes(par.Parameter, s)
}
