// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package svd computes the singular value decomposition X = U Σ V^T of a
// tall data table.
//
// Example:
//
//	alg, _ := svd.NewBatch[float64](algorithm.DefaultDense)
//	defer alg.Close()
//	alg.Input.Set(svd.Data, x)
//	alg.Parameter.LeftSingularMatrix = svd.RequiredInPackedForm
//	if err := alg.Compute(); err != nil {
//		return err
//	}
//	sigma := alg.Result().Get(svd.SingularValues)
package svd

import (
	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/svd"
	"github.com/born-ml/kernels/internal/tensor"
)

type (
	// InputID identifies an input.
	InputID = svd.InputID
	// ResultID identifies an output.
	ResultID = svd.ResultID
	// LeftSingular selects whether U is computed.
	LeftSingular = svd.LeftSingular
	// Parameter configures the decomposition.
	Parameter = svd.Parameter
	// Input holds the data table.
	Input = svd.Input
	// Result holds the factors.
	Result = svd.Result
	// Batch is the decomposition algorithm.
	Batch = svd.Batch
)

// Inputs and outputs.
const (
	Data                InputID  = svd.Data
	SingularValues      ResultID = svd.SingularValues
	RightSingularMatrix ResultID = svd.RightSingularMatrix
	LeftSingularMatrix  ResultID = svd.LeftSingularMatrix
)

// Left singular matrix options.
const (
	NotRequired          LeftSingular = svd.NotRequired
	RequiredInPackedForm LeftSingular = svd.RequiredInPackedForm
)

// NewBatch returns the decomposition computing in precision F.
func NewBatch[F tensor.Float](method algorithm.Method, opts ...algorithm.Option) (*Batch, error) {
	return svd.NewBatch[F](method, opts...)
}
