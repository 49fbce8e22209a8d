// Package check holds the validators run before allocation and before dispatch.
//
// Each validator compares one data object against an expectation derived from
// the algorithm's other operands. Independent checks are accumulated so a
// caller sees every defect at once; dependent checks are sequenced so a failed
// presence check never leads to a shape read.
package check

import (
	"fmt"

	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
)

// Rule is a deferred check.
type Rule func() status.Status

// Independent runs every rule and combines their statuses.
func Independent(rules ...Rule) status.Status {
	var s status.Status
	for _, r := range rules {
		s.Add(r())
	}
	return s
}

// Sequence runs rules in order and stops at the first non-empty status.
func Sequence(rules ...Rule) status.Status {
	for _, r := range rules {
		if s := r(); !s.OK() {
			return s
		}
	}
	return status.OK
}

// Expect describes the accepted shape and layout of a table.
// Zero fields are not checked.
type Expect struct {
	Rows    int
	Cols    int
	MinRows int
	MinCols int
	// UnexpectedLayouts is a mask of layouts the table must not use.
	UnexpectedLayouts tensor.Layout
}

// Table validates t against e. A nil table yields MissingRequiredInput.
func Table(t *tensor.Table, name string, e Expect) status.Status {
	if t == nil {
		return status.New(status.MissingRequiredInput, name, "")
	}
	var s status.Status
	if t.Layout()&e.UnexpectedLayouts != 0 {
		s.Add(status.New(status.UnsupportedLayout, name, "layout %s is not accepted", t.Layout()))
	}
	if e.Rows > 0 && t.Rows() != e.Rows {
		s.Add(status.New(status.ShapeMismatch, name, "expected %d rows, got %d", e.Rows, t.Rows()))
	}
	if e.Cols > 0 && t.Cols() != e.Cols {
		s.Add(status.New(status.ShapeMismatch, name, "expected %d columns, got %d", e.Cols, t.Cols()))
	}
	if e.MinRows > 0 && t.Rows() < e.MinRows {
		s.Add(status.New(status.ShapeMismatch, name, "expected at least %d rows, got %d", e.MinRows, t.Rows()))
	}
	if e.MinCols > 0 && t.Cols() < e.MinCols {
		s.Add(status.New(status.ShapeMismatch, name, "expected at least %d columns, got %d", e.MinCols, t.Cols()))
	}
	return s
}

// OptionalTable validates t only when it is present.
func OptionalTable(t *tensor.Table, name string, e Expect) status.Status {
	if t == nil {
		return status.OK
	}
	return Table(t, name, e)
}

// Tensor validates t against dims. A nil tensor yields MissingRequiredInput.
// A nil dims accepts any shape; a zero entry accepts any extent in that position.
func Tensor(t *tensor.RawTensor, name string, dims tensor.Shape) status.Status {
	if t == nil {
		return status.New(status.MissingRequiredInput, name, "")
	}
	if dims == nil {
		return status.OK
	}
	shape := t.Shape()
	if len(shape) != len(dims) {
		return status.New(status.ShapeMismatch, name, "expected rank %d, got %d", len(dims), len(shape))
	}
	for i, d := range dims {
		if d != 0 && shape[i] != d {
			return status.New(status.ShapeMismatch, name, "expected shape %v, got %v", dims, shape)
		}
	}
	return status.OK
}

// Rank validates only the rank of t.
func Rank(t *tensor.RawTensor, name string, rank int) status.Status {
	if t == nil {
		return status.New(status.MissingRequiredInput, name, "")
	}
	if t.Shape().Rank() != rank {
		return status.New(status.ShapeMismatch, name, "expected rank %d, got %d", rank, t.Shape().Rank())
	}
	return status.OK
}

// Precision validates that obj uses dtype.
func Precision(obj interface{ DType() tensor.DataType }, name string, dtype tensor.DataType) status.Status {
	if obj.DType() != dtype {
		return status.New(status.ShapeMismatch, name, "expected %s data, got %s", dtype, obj.DType())
	}
	return status.OK
}

// Count validates the number of declared arguments of a partial result or collection.
func Count(name string, got, want int) status.Status {
	if got != want {
		return status.New(status.IncorrectArgumentCount, name, "expected %d arguments, got %d", want, got)
	}
	return status.OK
}

// Positive validates a scalar parameter.
func Positive[N int | float64](name string, v N) status.Status {
	if v <= 0 {
		return status.New(status.InvalidParameter, name, "must be positive, got %v", v)
	}
	return status.OK
}

// NonNegative validates a scalar parameter.
func NonNegative[N int | float64](name string, v N) status.Status {
	if v < 0 {
		return status.New(status.InvalidParameter, name, "must be non-negative, got %v", v)
	}
	return status.OK
}

// Present returns a MissingRequiredInput status when ok is false.
func Present(ok bool, name string) status.Status {
	if !ok {
		return status.New(status.MissingRequiredInput, name, "")
	}
	return status.OK
}

// String formats an expectation for log output.
func (e Expect) String() string {
	return fmt.Sprintf("rows=%d cols=%d minRows=%d minCols=%d unexpected=%d",
		e.Rows, e.Cols, e.MinRows, e.MinCols, uint32(e.UnexpectedLayouts))
}
