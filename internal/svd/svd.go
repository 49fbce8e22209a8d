// Package svd computes the singular value decomposition of a dense table.
package svd

import (
	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/argument"
	"github.com/born-ml/kernels/internal/check"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
)

// InputID identifies an input of the algorithm.
type InputID int

// Inputs.
const (
	Data InputID = iota
	numInputs
)

func (id InputID) String() string {
	if id == Data {
		return "data"
	}
	return "input"
}

// ResultID identifies an output of the algorithm.
type ResultID int

// Results.
const (
	SingularValues ResultID = iota
	RightSingularMatrix
	LeftSingularMatrix
	numResults
)

var resultNames = [numResults]string{"singularValues", "rightSingularMatrix", "leftSingularMatrix"}

// String returns the output name used in status entries.
func (id ResultID) String() string {
	return resultNames[id]
}

// LeftSingular controls whether the left singular matrix is computed.
type LeftSingular int

// Left singular matrix options.
const (
	NotRequired LeftSingular = iota
	RequiredInPackedForm
)

// Parameter configures the decomposition.
type Parameter struct {
	LeftSingularMatrix LeftSingular
}

// Check validates the parameter.
func (p *Parameter) Check() status.Status {
	switch p.LeftSingularMatrix {
	case NotRequired, RequiredInPackedForm:
		return status.OK
	default:
		return status.New(status.InvalidParameter, "leftSingularMatrix", "unknown option %d", p.LeftSingularMatrix)
	}
}

func (p *Parameter) wantsLeft() bool {
	return p.LeftSingularMatrix == RequiredInPackedForm
}

// Input holds the data table, n observations by p features with n >= p.
type Input struct {
	*argument.Map[InputID]
}

// NewInput returns an empty input.
func NewInput() *Input {
	return &Input{argument.NewMap[InputID](int(numInputs))}
}

// Get returns the table stored under id.
func (in *Input) Get(id InputID) *tensor.Table {
	return argument.Get[*tensor.Table](in.Map, id)
}

// Check validates the input.
func (in *Input) Check(_ *Parameter, _ algorithm.Method) status.Status {
	data := in.Get(Data)
	return check.Sequence(
		func() status.Status {
			return check.Table(data, "data", check.Expect{UnexpectedLayouts: tensor.PackedMask})
		},
		func() status.Status {
			if data.Rows() < data.Cols() {
				return status.New(status.ShapeMismatch, "data", "need at least as many rows as columns, got %dx%d", data.Rows(), data.Cols())
			}
			return status.OK
		},
	)
}

// present reports a missing data table without reading any shape.
func (in *Input) present() status.Status {
	return check.Table(in.Get(Data), "data", check.Expect{})
}

// Result holds the decomposition.
type Result struct {
	*argument.Map[ResultID]
}

// NewResult returns an empty result.
func NewResult() *Result {
	return &Result{argument.NewMap[ResultID](int(numResults))}
}

// Get returns the table stored under id.
func (r *Result) Get(id ResultID) *tensor.Table {
	return argument.Get[*tensor.Table](r.Map, id)
}

type output struct {
	id     ResultID
	expect check.Expect
}

func outputs(in *Input, par *Parameter) []output {
	data := in.Get(Data)
	n, p := data.Rows(), data.Cols()
	out := []output{
		{SingularValues, check.Expect{Rows: min(n, p), Cols: 1, UnexpectedLayouts: tensor.PackedMask}},
		{RightSingularMatrix, check.Expect{Rows: p, Cols: p, UnexpectedLayouts: tensor.PackedMask}},
	}
	if par.wantsLeft() {
		out = append(out, output{LeftSingularMatrix, check.Expect{Rows: n, Cols: p, UnexpectedLayouts: tensor.PackedMask}})
	}
	return out
}

// Allocate creates every requested output that is not already set.
func (r *Result) Allocate(in *Input, par *Parameter, _ algorithm.Method, dtype tensor.DataType, prov tensor.Provider) status.Status {
	if st := in.present(); !st.OK() {
		return st
	}
	for _, o := range outputs(in, par) {
		if r.Has(o.id) {
			continue
		}
		t, err := prov.NewTable(o.expect.Rows, o.expect.Cols, tensor.RowMajor, dtype)
		if err != nil {
			return status.FromError(status.AllocationFailure, o.id.String(), err)
		}
		r.Set(o.id, t)
	}
	return status.OK
}

// Check validates the outputs against the input.
func (r *Result) Check(in *Input, par *Parameter, _ algorithm.Method) status.Status {
	return check.Sequence(in.present, func() status.Status {
		var rules []check.Rule
		for _, o := range outputs(in, par) {
			rules = append(rules, func() status.Status {
				return check.Table(r.Get(o.id), o.id.String(), o.expect)
			})
		}
		return check.Independent(rules...)
	})
}
