// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/kernels/internal/tensor"
)

// RawTensor is the n-dimensional data object.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType()
//   - Shared ownership via Clone() and Release()
//   - Reference counting for efficient memory management
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32)
//	data := tensor.Data[float32](raw) // Type-safe access
//	clone := raw.Clone()              // Shares buffer via reference counting
type RawTensor = tensor.RawTensor

// NewRaw creates a zero-initialized tensor.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromSlice creates a tensor holding a copy of data.
func FromSlice[F Float](data []F, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// Data returns a zero-copy typed view of r. It panics if F does not match
// the tensor's precision.
func Data[F Float](r *RawTensor) []F {
	return tensor.Data[F](r)
}
