// Package algorithm implements the façade shared by every algorithm: it binds
// an Input, a Parameter and a Result to a kernel selected once at construction
// and drives validate, allocate, dispatch and (optionally) re-validate on each
// Compute call.
package algorithm

import (
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
)

// Method selects among computational strategies for the same problem. Values
// are algorithm-scoped; DefaultDense is the first method of every algorithm.
type Method int

// DefaultDense is the default method of every algorithm.
const DefaultDense Method = 0

// Input is the caller-supplied operand set of one algorithm.
type Input[P any] interface {
	// Check validates completeness and shape consistency of the operands.
	Check(par *P, method Method) status.Status
}

// Result is the output operand set. It owns the allocation policy: Allocate
// derives the shapes of missing outputs and allocates them, leaving
// caller-supplied outputs untouched.
type Result[I any, P any] interface {
	Allocate(in I, par *P, method Method, dtype tensor.DataType, p tensor.Provider) status.Status
	Check(in I, par *P, method Method) status.Status
}

// Kernel is the numeric routine: it reads validated inputs and writes into the
// already allocated result.
type Kernel[I any, P any, R any] interface {
	Compute(in I, par *P, res R) status.Status
}

// ParameterChecker is implemented by parameters that validate themselves.
type ParameterChecker interface {
	Check() status.Status
}

// PrecisionChecker is implemented by inputs and results that can report
// objects stored in another precision. Types embedding an argument map get it
// from the map.
type PrecisionChecker interface {
	CheckPrecision(dtype tensor.DataType) status.Status
}

func checkPrecision(v any, dtype tensor.DataType) status.Status {
	if pc, ok := v.(PrecisionChecker); ok {
		return pc.CheckPrecision(dtype)
	}
	return status.OK
}

// State is the position of the façade in one Compute call.
type State int

// Compute states.
const (
	Idle State = iota
	Validating
	Allocating
	Dispatching
	Validated
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Allocating:
		return "allocating"
	case Dispatching:
		return "dispatching"
	case Validated:
		return "validated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
