// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ridge trains ridge regression models: least squares with an L2
// penalty on every coefficient except the intercept.
package ridge

import (
	"context"

	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/linearmodel"
	"github.com/born-ml/kernels/internal/ridge"
	"github.com/born-ml/kernels/internal/tensor"
)

// NormEqDense solves the penalized normal equations by Cholesky.
const NormEqDense = ridge.NormEqDense

// Inputs and outputs.
const (
	Data               = linearmodel.Data
	DependentVariables = linearmodel.DependentVariables
	TrainedModel       = linearmodel.TrainedModel
)

type (
	// Parameter configures training.
	Parameter = ridge.Parameter
	// Input holds the data and dependent variables.
	Input = ridge.Input
	// Result holds the trained model.
	Result = ridge.Result
	// Batch is the batch training algorithm.
	Batch = ridge.Batch
	// Model holds the coefficients [nResponses, nFeatures+1].
	Model = linearmodel.Model
	// Block is one block of distributed training data.
	Block = linearmodel.Block
	// Step1Local is the local step of distributed training.
	Step1Local = algorithm.Batch[*Input, Parameter, *linearmodel.LocalResult[Parameter]]
	// Step2Master is the master step of distributed training.
	Step2Master = algorithm.Batch[*linearmodel.MasterInput[Parameter], Parameter, *linearmodel.MasterResult[Parameter]]
)

// DefaultParameter fits an intercept with a unit penalty.
func DefaultParameter() Parameter {
	return ridge.DefaultParameter()
}

// NewBatch returns a training algorithm computing in precision F.
func NewBatch[F tensor.Float](method algorithm.Method, opts ...algorithm.Option) (*Batch, error) {
	return ridge.NewBatch[F](method, opts...)
}

// NewStep1Local returns the local step of distributed training.
func NewStep1Local[F tensor.Float](opts ...algorithm.Option) (*Step1Local, error) {
	return ridge.NewStep1Local[F](opts...)
}

// NewStep2Master returns the master step of distributed training.
func NewStep2Master[F tensor.Float](opts ...algorithm.Option) (*Step2Master, error) {
	return ridge.NewStep2Master[F](opts...)
}

// TrainDistributed trains on blocks concurrently and merges their partial results.
func TrainDistributed[F tensor.Float](ctx context.Context, par Parameter, blocks []Block, opts ...algorithm.Option) (*Result, error) {
	return ridge.TrainDistributed[F](ctx, par, blocks, opts...)
}

// ModelFrom returns the ridge regression model held by res.
func ModelFrom(res *Result) (*Model, error) {
	return ridge.ModelFrom(res)
}
