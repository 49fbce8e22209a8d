// Package transposedconv2d implements the 2-D transposed convolution layer.
//
// Data is [N, C, H, W], weights are [C, NKernels, KH, KW] and the value is
// [N, NKernels, (H-1)*stride - 2*padding + KH, (W-1)*stride - 2*padding + KW].
package transposedconv2d

import (
	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/argument"
	"github.com/born-ml/kernels/internal/check"
	"github.com/born-ml/kernels/internal/layers"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
)

// Computation methods.
const (
	DefaultDense = algorithm.DefaultDense // Direct loops
	Im2ColDense  = algorithm.Method(1)    // Patch matrices and dot products
)

// Parameter configures the layer.
type Parameter struct {
	layers.Parameter
	KernelHeight int
	KernelWidth  int
	Stride       int
	Padding      int
	NKernels     int
}

// DefaultParameter returns a 2x2 kernel with stride 2, which doubles the
// spatial size, and gradient propagation.
func DefaultParameter() Parameter {
	return Parameter{
		Parameter:    layers.Parameter{PropagateGradient: true},
		KernelHeight: 2,
		KernelWidth:  2,
		Stride:       2,
		NKernels:     1,
	}
}

// Check validates the sizes.
func (p *Parameter) Check() status.Status {
	return check.Independent(
		func() status.Status { return check.Positive("kernelHeight", p.KernelHeight) },
		func() status.Status { return check.Positive("kernelWidth", p.KernelWidth) },
		func() status.Status { return check.Positive("stride", p.Stride) },
		func() status.Status { return check.NonNegative("padding", p.Padding) },
		func() status.Status { return check.Positive("nKernels", p.NKernels) },
	)
}

// geometry holds every extent of one computation.
type geometry struct {
	n, c, h, w  int
	k, kh, kw   int
	hOut, wOut  int
	stride, pad int
}

func geometryOf(data *tensor.RawTensor, par *Parameter) geometry {
	s := data.Shape()
	g := geometry{
		n: s[0], c: s[1], h: s[2], w: s[3],
		k: par.NKernels, kh: par.KernelHeight, kw: par.KernelWidth,
		stride: par.Stride, pad: par.Padding,
	}
	g.hOut = (g.h-1)*g.stride - 2*g.pad + g.kh
	g.wOut = (g.w-1)*g.stride - 2*g.pad + g.kw
	return g
}

func (g geometry) valueShape() tensor.Shape {
	return tensor.Shape{g.n, g.k, g.hOut, g.wOut}
}

func (g geometry) weightsShape() tensor.Shape {
	return tensor.Shape{g.c, g.k, g.kh, g.kw}
}

// checkData validates the data tensor and the value size it leads to.
func checkData(data *tensor.RawTensor, name string, par *Parameter) status.Status {
	return check.Sequence(
		func() status.Status { return check.Rank(data, name, 4) },
		func() status.Status {
			g := geometryOf(data, par)
			if g.hOut <= 0 || g.wOut <= 0 {
				return status.New(status.ShapeMismatch, name, "value size %dx%d is not positive", g.hOut, g.wOut)
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

// Forward outputs. AuxData and AuxWeights are kept for the backward pass.
const (
	Value ForwardResultID = iota
	AuxData
	AuxWeights
	numForwardResults
)

var resultNames = [numForwardResults]string{"value", "auxData", "auxWeights"}

func (id ForwardResultID) String() string {
	return resultNames[id]
}

// ForwardInput holds the data, weights and biases.
type ForwardInput struct {
	*argument.Map[ForwardInputID]
}

// NewForwardInput returns an empty forward input.
func NewForwardInput() *ForwardInput {
	return &ForwardInput{argument.NewMap[ForwardInputID](int(numForwardInputs))}
}

// Check validates the data, then the weights and biases against it.
func (in *ForwardInput) Check(par *Parameter, _ algorithm.Method) status.Status {
	data := layers.Tensor(in.Map, Data)
	if st := checkData(data, "data", par); !st.OK() {
		return st
	}
	g := geometryOf(data, par)
	return check.Independent(
		func() status.Status { return check.Tensor(layers.Tensor(in.Map, Weights), "weights", g.weightsShape()) },
		func() status.Status { return check.Tensor(layers.Tensor(in.Map, Biases), "biases", tensor.Shape{g.k}) },
	)
}

// ForwardResult holds the value and the tensors the backward pass needs.
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

// Allocate creates the value and shares data and weights with the backward pass.
func (r *ForwardResult) Allocate(in *ForwardInput, par *Parameter, _ algorithm.Method, dtype tensor.DataType, prov tensor.Provider) status.Status {
	data := layers.Tensor(in.Map, Data)
	if st := checkData(data, "data", par); !st.OK() {
		return st
	}
	layers.Share(r.Map, AuxData, data)
	layers.Share(r.Map, AuxWeights, layers.Tensor(in.Map, Weights))
	return layers.Ensure(r.Map, Value, "value", geometryOf(data, par).valueShape(), dtype, prov)
}

// Check validates every output.
func (r *ForwardResult) Check(in *ForwardInput, par *Parameter, _ algorithm.Method) status.Status {
	data := layers.Tensor(in.Map, Data)
	if st := checkData(data, "data", par); !st.OK() {
		return st
	}
	g := geometryOf(data, par)
	return check.Independent(
		func() status.Status { return check.Tensor(r.Get(Value), "value", g.valueShape()) },
		func() status.Status { return check.Tensor(r.Get(AuxData), "auxData", tensor.Shape{g.n, g.c, g.h, g.w}) },
		func() status.Status { return check.Tensor(r.Get(AuxWeights), "auxWeights", g.weightsShape()) },
	)
}

// BackwardInputID identifies a backward input.
type BackwardInputID int

// Backward inputs.
const (
	InputGradient BackwardInputID = iota
	BackwardAuxData
	BackwardAuxWeights
	numBackwardInputs
)

var backwardNames = [numBackwardInputs]string{"inputGradient", "auxData", "auxWeights"}

func (id BackwardInputID) String() string {
	return backwardNames[id]
}

// BackwardInput holds the incoming gradient and the forward data and weights.
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
}

func (in *BackwardInput) get(id BackwardInputID) *tensor.RawTensor {
	return layers.Tensor(in.Map, id)
}

// Check validates the aux data and weights, then the gradient against them.
func (in *BackwardInput) Check(par *Parameter, _ algorithm.Method) status.Status {
	data := in.get(BackwardAuxData)
	st := check.Independent(
		func() status.Status { return checkData(data, "auxData", par) },
		func() status.Status { return check.Rank(in.get(BackwardAuxWeights), "auxWeights", 4) },
	)
	if !st.OK() {
		return st
	}
	g := geometryOf(data, par)
	return check.Independent(
		func() status.Status { return check.Tensor(in.get(BackwardAuxWeights), "auxWeights", g.weightsShape()) },
		func() status.Status { return check.Tensor(in.get(InputGradient), "inputGradient", g.valueShape()) },
	)
}

func shapes(in *BackwardInput, par *Parameter) (layers.Shapes, status.Status) {
	data, weights := in.get(BackwardAuxData), in.get(BackwardAuxWeights)
	st := check.Independent(
		func() status.Status { return check.Tensor(data, "auxData", nil) },
		func() status.Status { return check.Tensor(weights, "auxWeights", nil) },
	)
	if !st.OK() {
		return layers.Shapes{}, st
	}
	return layers.Shapes{
		Gradient:          data.Shape(),
		WeightDerivatives: weights.Shape(),
		BiasDerivatives:   tensor.Shape{par.NKernels},
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

// Allocate creates every missing output. The gradient is allocated only when
// gradient propagation is requested.
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
