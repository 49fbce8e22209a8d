// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/kernels/internal/tensor"
)

// Table is the 2-D data object: rows are observations, columns are features.
type Table = tensor.Table

// Layout describes how a table's elements are stored.
type Layout = tensor.Layout

// Table layouts.
const (
	RowMajor    Layout = tensor.RowMajor
	UpperPacked Layout = tensor.UpperPacked
	LowerPacked Layout = tensor.LowerPacked
)

// NewTable creates a zero-initialized table.
func NewTable(rows, cols int, layout Layout, dtype DataType) (*Table, error) {
	return tensor.NewTable(rows, cols, layout, dtype)
}

// TableFromSlice creates a row-major table holding a copy of data.
func TableFromSlice[F Float](data []F, rows, cols int) (*Table, error) {
	return tensor.TableFromSlice(data, rows, cols)
}

// TableData returns the table's storage as a typed slice.
func TableData[F Float](t *Table) []F {
	return tensor.TableData[F](t)
}

// At returns element (i, j). Packed tables return the symmetric element for
// either triangle.
func At[F Float](t *Table, i, j int) F {
	return tensor.At[F](t, i, j)
}

// SetAt stores v at (i, j).
func SetAt[F Float](t *Table, i, j int, v F) {
	tensor.SetAt(t, i, j, v)
}
