// Package qr computes the thin QR decomposition of a dense table.
package qr

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
	MatrixQ ResultID = iota
	MatrixR
	numResults
)

// String returns the output name used in status entries.
func (id ResultID) String() string {
	if id == MatrixQ {
		return "matrixQ"
	}
	return "matrixR"
}

// Parameter is empty: the decomposition has no options.
type Parameter struct{}

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

// Result holds Q (n x p) and R (p x p).
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

func expect(in *Input, id ResultID) check.Expect {
	data := in.Get(Data)
	e := check.Expect{Rows: data.Rows(), Cols: data.Cols(), UnexpectedLayouts: tensor.PackedMask}
	if id == MatrixR {
		e.Rows = data.Cols()
	}
	return e
}

// Allocate creates Q and R unless they are already set.
func (r *Result) Allocate(in *Input, _ *Parameter, _ algorithm.Method, dtype tensor.DataType, prov tensor.Provider) status.Status {
	if st := in.present(); !st.OK() {
		return st
	}
	for _, id := range []ResultID{MatrixQ, MatrixR} {
		if r.Has(id) {
			continue
		}
		e := expect(in, id)
		t, err := prov.NewTable(e.Rows, e.Cols, tensor.RowMajor, dtype)
		if err != nil {
			return status.FromError(status.AllocationFailure, id.String(), err)
		}
		r.Set(id, t)
	}
	return status.OK
}

// Check validates Q and R against the input.
func (r *Result) Check(in *Input, _ *Parameter, _ algorithm.Method) status.Status {
	return check.Sequence(in.present, func() status.Status {
		return check.Independent(
			func() status.Status { return check.Table(r.Get(MatrixQ), MatrixQ.String(), expect(in, MatrixQ)) },
			func() status.Status { return check.Table(r.Get(MatrixR), MatrixR.String(), expect(in, MatrixR)) },
		)
	})
}
