// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the data objects algorithms read and write.
//
// # Overview
//
// Two kinds of data object exist:
//   - RawTensor: n-dimensional, reference-counted storage used by layers
//   - Table: 2-D observations x features, optionally packed triangular
//
// Both carry a fixed precision (Float32 or Float64). Algorithms allocate
// their outputs through a Provider; HeapProvider is the default.
//
// # Basic Usage
//
//	x, _ := tensor.TableFromSlice([]float64{1, 2, 3, 4, 5, 6}, 3, 2)
//	v := tensor.At[float64](x, 2, 1) // 6
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32)
//	data := tensor.Data[float32](raw) // zero-copy view
package tensor
