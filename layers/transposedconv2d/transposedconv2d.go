// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package transposedconv2d provides the 2-D transposed convolution layer.
//
// Data is [N, C, H, W] and weights are [C, NKernels, KH, KW]. Two methods
// compute the same result: DefaultDense loops over the windows directly and
// Im2ColDense unrolls patches into rows of dot products.
package transposedconv2d

import (
	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/layers/transposedconv2d"
	"github.com/born-ml/kernels/internal/tensor"
)

// Computation methods.
const (
	DefaultDense = transposedconv2d.DefaultDense
	Im2ColDense  = transposedconv2d.Im2ColDense
)

type (
	// Parameter configures the layer.
	Parameter = transposedconv2d.Parameter
	// Forward is the forward layer algorithm.
	Forward = transposedconv2d.Forward
	// Backward is the backward layer algorithm.
	Backward = transposedconv2d.Backward
)

// Inputs and outputs.
const (
	Data               = transposedconv2d.Data
	Weights            = transposedconv2d.Weights
	Biases             = transposedconv2d.Biases
	Value              = transposedconv2d.Value
	AuxData            = transposedconv2d.AuxData
	AuxWeights         = transposedconv2d.AuxWeights
	InputGradient      = transposedconv2d.InputGradient
	BackwardAuxData    = transposedconv2d.BackwardAuxData
	BackwardAuxWeights = transposedconv2d.BackwardAuxWeights
)

// DefaultParameter returns a 2x2 kernel with stride 2 and gradient propagation.
func DefaultParameter() Parameter {
	return transposedconv2d.DefaultParameter()
}

// NewForward returns a forward layer computing in precision F.
func NewForward[F tensor.Float](method algorithm.Method, opts ...algorithm.Option) (*Forward, error) {
	return transposedconv2d.NewForward[F](method, opts...)
}

// NewBackward returns a backward layer computing in precision F.
func NewBackward[F tensor.Float](method algorithm.Method, opts ...algorithm.Option) (*Backward, error) {
	return transposedconv2d.NewBackward[F](method, opts...)
}
