// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package batchnorm provides the batch normalization layer.
package batchnorm

import (
	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/layers/batchnorm"
	"github.com/born-ml/kernels/internal/tensor"
)

type (
	// Parameter configures the layer.
	Parameter = batchnorm.Parameter
	// Forward is the forward layer algorithm.
	Forward = batchnorm.Forward
	// Backward is the backward layer algorithm.
	Backward = batchnorm.Backward
)

// Forward inputs and outputs.
const (
	Data                  = batchnorm.Data
	Weights               = batchnorm.Weights
	Biases                = batchnorm.Biases
	Value                 = batchnorm.Value
	AuxData               = batchnorm.AuxData
	AuxWeights            = batchnorm.AuxWeights
	AuxMean               = batchnorm.AuxMean
	AuxStandardDeviation  = batchnorm.AuxStandardDeviation
	AuxPopulationMean     = batchnorm.AuxPopulationMean
	AuxPopulationVariance = batchnorm.AuxPopulationVariance
)

// Backward inputs.
const (
	InputGradient                = batchnorm.InputGradient
	BackwardAuxData              = batchnorm.BackwardAuxData
	BackwardAuxWeights           = batchnorm.BackwardAuxWeights
	BackwardAuxMean              = batchnorm.BackwardAuxMean
	BackwardAuxStandardDeviation = batchnorm.BackwardAuxStandardDeviation
)

// DefaultParameter normalizes over dimension 1 with gradient propagation.
func DefaultParameter() Parameter {
	return batchnorm.DefaultParameter()
}

// NewForward returns a forward layer computing in precision F.
func NewForward[F tensor.Float](method algorithm.Method, opts ...algorithm.Option) (*Forward, error) {
	return batchnorm.NewForward[F](method, opts...)
}

// NewBackward returns a backward layer computing in precision F.
func NewBackward[F tensor.Float](method algorithm.Method, opts ...algorithm.Option) (*Backward, error) {
	return batchnorm.NewBackward[F](method, opts...)
}
