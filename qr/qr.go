// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package qr computes the thin QR decomposition X = QR of a tall data table.
package qr

import (
	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/qr"
	"github.com/born-ml/kernels/internal/tensor"
)

type (
	// InputID identifies an input.
	InputID = qr.InputID
	// ResultID identifies an output.
	ResultID = qr.ResultID
	// Parameter configures the decomposition.
	Parameter = qr.Parameter
	// Input holds the data table.
	Input = qr.Input
	// Result holds Q and R.
	Result = qr.Result
	// Batch is the decomposition algorithm.
	Batch = qr.Batch
)

// Inputs and outputs.
const (
	Data    InputID  = qr.Data
	MatrixQ ResultID = qr.MatrixQ
	MatrixR ResultID = qr.MatrixR
)

// NewBatch returns the decomposition computing in precision F.
func NewBatch[F tensor.Float](method algorithm.Method, opts ...algorithm.Option) (*Batch, error) {
	return qr.NewBatch[F](method, opts...)
}
