// Package linearmodel holds what linear and ridge regression training share:
// the model payload, the training input and result, the normal-equation
// partial result and the distributed two-step training.
package linearmodel

import (
	"fmt"

	"github.com/born-ml/kernels/internal/check"
	"github.com/born-ml/kernels/internal/status"
	"github.com/born-ml/kernels/internal/tensor"
)

// Variant tags which algorithm produced a model.
type Variant int

// Model variants.
const (
	LinearRegression Variant = iota + 1
	RidgeRegression
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case LinearRegression:
		return "linear regression"
	case RidgeRegression:
		return "ridge regression"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// Model is a trained linear model. Beta holds one row per response:
// the intercept followed by one coefficient per feature.
type Model struct {
	variant       Variant
	Beta          *tensor.Table
	InterceptFlag bool
}

// NewModel allocates a zero model for nFeatures features and nResponses responses.
func NewModel(v Variant, nFeatures, nResponses int, intercept bool, dtype tensor.DataType, prov tensor.Provider) (*Model, error) {
	beta, err := prov.NewTable(nResponses, nFeatures+1, tensor.RowMajor, dtype)
	if err != nil {
		return nil, fmt.Errorf("beta: %w", err)
	}
	return &Model{variant: v, Beta: beta, InterceptFlag: intercept}, nil
}

// Variant returns the algorithm that produced the model.
func (m *Model) Variant() Variant {
	return m.variant
}

// Shape returns the shape of Beta.
func (m *Model) Shape() tensor.Shape {
	return m.Beta.Shape()
}

// DType returns the precision of Beta.
func (m *Model) DType() tensor.DataType {
	return m.Beta.DType()
}

// NumberOfFeatures returns the number of features the model was trained on.
func (m *Model) NumberOfFeatures() int {
	return m.Beta.Cols() - 1
}

// NumberOfResponses returns the number of dependent variables.
func (m *Model) NumberOfResponses() int {
	return m.Beta.Rows()
}

// NumberOfBetas returns the number of coefficients per response.
func (m *Model) NumberOfBetas() int {
	return m.Beta.Cols()
}

// CheckModel validates that m is present and fits nFeatures and nResponses.
func CheckModel(m *Model, name string, nFeatures, nResponses int) status.Status {
	if m == nil {
		return status.New(status.MissingRequiredInput, name, "")
	}
	return check.Table(m.Beta, name+".beta", check.Expect{
		Rows:              nResponses,
		Cols:              nFeatures + 1,
		UnexpectedLayouts: tensor.PackedMask,
	})
}
