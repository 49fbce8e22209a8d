// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package elu provides the exponential linear unit layer.
package elu

import (
	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/layers/elu"
	"github.com/born-ml/kernels/internal/tensor"
)

type (
	// Parameter configures the layer.
	Parameter = elu.Parameter
	// Forward is the forward layer algorithm.
	Forward = elu.Forward
	// Backward is the backward layer algorithm.
	Backward = elu.Backward
)

// Inputs and outputs.
const (
	Data             = elu.Data
	Value            = elu.Value
	AuxData          = elu.AuxData
	InputGradient    = elu.InputGradient
	InputFromForward = elu.InputFromForward
)

// DefaultParameter returns alpha = 1 with gradient propagation.
func DefaultParameter() Parameter {
	return elu.DefaultParameter()
}

// NewForward returns a forward layer computing in precision F.
func NewForward[F tensor.Float](method algorithm.Method, opts ...algorithm.Option) (*Forward, error) {
	return elu.NewForward[F](method, opts...)
}

// NewBackward returns a backward layer computing in precision F.
func NewBackward[F tensor.Float](method algorithm.Method, opts ...algorithm.Option) (*Backward, error) {
	return elu.NewBackward[F](method, opts...)
}
