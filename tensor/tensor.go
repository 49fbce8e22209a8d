// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/kernels/internal/tensor"
)

// Float is the constraint of supported element types.
type Float = tensor.Float

// DataType is the runtime precision tag of a data object.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// DataTypeOf returns the precision tag of F.
func DataTypeOf[F Float]() DataType {
	return tensor.DataTypeOf[F]()
}

// Provider creates the data objects an algorithm allocates for its outputs.
type Provider = tensor.Provider

// HeapProvider allocates on the Go heap, optionally bounded by MaxBytes.
type HeapProvider = tensor.HeapProvider

// ErrAllocationLimit is returned when an allocation exceeds a provider's budget.
var ErrAllocationLimit = tensor.ErrAllocationLimit
