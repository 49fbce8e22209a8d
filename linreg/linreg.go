// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package linreg trains linear regression models by least squares.
//
// Training runs in one batch, or distributed: every data block computes its
// partial cross-products (step 1) and a master merges them and solves
// (step 2). TrainDistributed runs both steps with concurrent blocks.
package linreg

import (
	"context"

	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/linearmodel"
	"github.com/born-ml/kernels/internal/linreg"
	"github.com/born-ml/kernels/internal/tensor"
)

// Training methods.
const (
	NormEqDense = linreg.NormEqDense
	QRDense     = linreg.QRDense
)

// Inputs and outputs.
const (
	Data               = linearmodel.Data
	DependentVariables = linearmodel.DependentVariables
	TrainedModel       = linearmodel.TrainedModel
	XTX                = linearmodel.XTX
	XTY                = linearmodel.XTY
)

type (
	// Parameter configures training.
	Parameter = linreg.Parameter
	// Input holds the data and dependent variables.
	Input = linreg.Input
	// Result holds the trained model.
	Result = linreg.Result
	// Batch is the batch training algorithm.
	Batch = linreg.Batch
	// Model holds the coefficients [nResponses, nFeatures+1]; column 0 is
	// the intercept.
	Model = linearmodel.Model
	// Block is one block of distributed training data.
	Block = linearmodel.Block
	// PartialResult holds the cross-products of one or more blocks.
	PartialResult = linearmodel.PartialResult
	// Step1Local is the local step of distributed training.
	Step1Local = algorithm.Batch[*Input, Parameter, *linearmodel.LocalResult[Parameter]]
	// Step2Master is the master step of distributed training.
	Step2Master = algorithm.Batch[*linearmodel.MasterInput[Parameter], Parameter, *linearmodel.MasterResult[Parameter]]
)

// DefaultParameter fits an intercept.
func DefaultParameter() Parameter {
	return linreg.DefaultParameter()
}

// NewBatch returns a training algorithm computing in precision F.
func NewBatch[F tensor.Float](method algorithm.Method, opts ...algorithm.Option) (*Batch, error) {
	return linreg.NewBatch[F](method, opts...)
}

// NewStep1Local returns the local step of distributed training.
func NewStep1Local[F tensor.Float](opts ...algorithm.Option) (*Step1Local, error) {
	return linreg.NewStep1Local[F](opts...)
}

// NewStep2Master returns the master step of distributed training.
func NewStep2Master[F tensor.Float](opts ...algorithm.Option) (*Step2Master, error) {
	return linreg.NewStep2Master[F](opts...)
}

// TrainDistributed trains on blocks concurrently and merges their partial results.
func TrainDistributed[F tensor.Float](ctx context.Context, par Parameter, blocks []Block, opts ...algorithm.Option) (*Result, error) {
	return linreg.TrainDistributed[F](ctx, par, blocks, opts...)
}

// ModelFrom returns the linear regression model held by res.
func ModelFrom(res *Result) (*Model, error) {
	return linreg.ModelFrom(res)
}
