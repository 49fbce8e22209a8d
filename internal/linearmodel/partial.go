package linearmodel

import (
	"fmt"

	"github.com/born-ml/kernels/internal/argument"
	"github.com/born-ml/kernels/internal/check"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
)

// PartialID identifies a table of a partial result.
type PartialID int

// Partial result tables.
const (
	XTX PartialID = iota // Cross-product of the data with a leading intercept column
	XTY                  // Cross-product of the responses with the same data
	numPartials
)

func (id PartialID) String() string {
	switch id {
	case XTX:
		return "xtx"
	case XTY:
		return "xty"
	default:
		return fmt.Sprintf("partial(%d)", int(id))
	}
}

// PartialResult holds the normal-equation sums of one data block. Partial
// results of disjoint blocks are merged by addition.
type PartialResult struct {
	*argument.Map[PartialID]
}

// NewPartialResult returns an empty partial result.
func NewPartialResult() *PartialResult {
	return &PartialResult{argument.NewMap[PartialID](int(numPartials))}
}

// Get returns the table stored under id.
func (p *PartialResult) Get(id PartialID) *tensor.Table {
	return argument.Get[*tensor.Table](p.Map, id)
}

// Shape returns the shape of XTY, or nil while it is unset.
func (p *PartialResult) Shape() tensor.Shape {
	if y := p.Get(XTY); y != nil {
		return y.Shape()
	}
	return nil
}

// DType returns the precision of XTX.
func (p *PartialResult) DType() tensor.DataType {
	if x := p.Get(XTX); x != nil {
		return x.DType()
	}
	return 0
}

// NumberOfFeatures returns the number of features summed into the partial result.
func (p *PartialResult) NumberOfFeatures() int {
	return p.Get(XTX).Rows() - 1
}

// NumberOfDependentVariables returns the number of responses.
func (p *PartialResult) NumberOfDependentVariables() int {
	return p.Get(XTY).Rows()
}

func (p *PartialResult) allocate(nFeatures, nResponses int, dtype tensor.DataType, prov tensor.Provider) status.Status {
	nBetas := nFeatures + 1
	if !p.Has(XTX) {
		t, err := prov.NewTable(nBetas, nBetas, tensor.UpperPacked, dtype)
		if err != nil {
			return status.FromError(status.AllocationFailure, "xtx", err)
		}
		p.Set(XTX, t)
	}
	if !p.Has(XTY) {
		t, err := prov.NewTable(nResponses, nBetas, tensor.RowMajor, dtype)
		if err != nil {
			return status.FromError(status.AllocationFailure, "xty", err)
		}
		p.Set(XTY, t)
	}
	return status.OK
}

func (p *PartialResult) checkPresent() status.Status {
	return check.Independent(
		func() status.Status { return check.Present(p.Has(XTX), "xtx") },
		func() status.Status { return check.Present(p.Has(XTY), "xty") },
	)
}

func (p *PartialResult) check(nFeatures, nResponses int) status.Status {
	nBetas := nFeatures + 1
	return check.Independent(
		func() status.Status {
			return check.Table(p.Get(XTX), "xtx", check.Expect{Rows: nBetas, Cols: nBetas, UnexpectedLayouts: tensor.LowerPacked})
		},
		func() status.Status {
			return check.Table(p.Get(XTY), "xty", check.Expect{Rows: nResponses, Cols: nBetas, UnexpectedLayouts: tensor.PackedMask})
		},
	)
}

// Merge adds other into p. Both must have the same shapes, layouts and precision.
func (p *PartialResult) Merge(other *PartialResult) status.Status {
	st := check.Sequence(p.checkPresent, other.checkPresent)
	if !st.OK() {
		return st
	}
	st = p.check(other.NumberOfFeatures(), other.NumberOfDependentVariables())
	if !st.OK() {
		return st
	}
	for _, id := range []PartialID{XTX, XTY} {
		dst, src := p.Get(id), other.Get(id)
		if dst.Layout() != src.Layout() {
			st.Add(status.New(status.UnsupportedLayout, "partialResult", "cannot merge %s into %s", src.Layout(), dst.Layout()))
			continue
		}
		st.Add(check.Precision(src, "partialResult", dst.DType()))
	}
	if !st.OK() {
		return st
	}
	for _, id := range []PartialID{XTX, XTY} {
		if p.DType() == tensor.Float32 {
			addInto(tensor.TableData[float32](p.Get(id)), tensor.TableData[float32](other.Get(id)))
		} else {
			addInto(tensor.TableData[float64](p.Get(id)), tensor.TableData[float64](other.Get(id)))
		}
	}
	return status.OK
}

func addInto[F tensor.Float](dst, src []F) {
	for i, v := range src {
		dst[i] += v
	}
}
