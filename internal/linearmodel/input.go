package linearmodel

import (
	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/argument"
	"github.com/born-ml/kernels/internal/check"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
)

// Parameter holds the options shared by every linear model trainer.
type Parameter struct {
	InterceptFlag bool // Whether to fit the intercept term
}

// Training returns the shared options.
func (p Parameter) Training() Parameter {
	return p
}

// CheckResponses accepts any number of responses.
func (p Parameter) CheckResponses(int) status.Status {
	return status.OK
}

// TrainingParameter is implemented by the parameter type of each trainer,
// usually by embedding Parameter.
type TrainingParameter interface {
	Training() Parameter
	// CheckResponses validates options whose shape depends on the number of
	// dependent variables.
	CheckResponses(nResponses int) status.Status
}

// InputID identifies a training input.
type InputID int

// Training inputs.
const (
	Data InputID = iota
	DependentVariables
	numInputs
)

var inputNames = [numInputs]string{"data", "dependentVariables"}

func (id InputID) String() string {
	return inputNames[id]
}

// Input holds the training data: n observations of p features and k responses.
type Input[P TrainingParameter] struct {
	*argument.Map[InputID]
}

// NewInput returns an empty training input.
func NewInput[P TrainingParameter]() *Input[P] {
	return &Input[P]{argument.NewMap[InputID](int(numInputs))}
}

// Get returns the table stored under id.
func (in *Input[P]) Get(id InputID) *tensor.Table {
	return argument.Get[*tensor.Table](in.Map, id)
}

// present reports missing tables without reading any shape.
func (in *Input[P]) present() status.Status {
	return check.Independent(
		func() status.Status { return check.Table(in.Get(Data), "data", check.Expect{}) },
		func() status.Status { return check.Table(in.Get(DependentVariables), "dependentVariables", check.Expect{}) },
	)
}

// Check validates both tables, then their consistency.
func (in *Input[P]) Check(par *P, _ algorithm.Method) status.Status {
	x, y := in.Get(Data), in.Get(DependentVariables)
	st := check.Independent(
		func() status.Status {
			return check.Table(x, "data", check.Expect{UnexpectedLayouts: tensor.PackedMask})
		},
		func() status.Status {
			return check.Table(y, "dependentVariables", check.Expect{UnexpectedLayouts: tensor.PackedMask})
		},
	)
	if !st.OK() {
		return st
	}
	return check.Independent(
		func() status.Status {
			return check.Table(y, "dependentVariables", check.Expect{Rows: x.Rows()})
		},
		func() status.Status {
			return (*par).CheckResponses(y.Cols())
		},
	)
}
