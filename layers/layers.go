// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package layers holds what the neural-network layer packages share.
//
// Each layer has a forward and a backward algorithm. The forward result keeps
// the tensors the backward pass needs; SetFromForward hands them to the
// backward input without copying:
//
//	fwd, _ := elu.NewForward[float32](algorithm.DefaultDense)
//	fwd.Input.Set(elu.Data, x)
//	_ = fwd.Compute()
//
//	bwd, _ := elu.NewBackward[float32](algorithm.DefaultDense)
//	bwd.Input.Set(elu.InputGradient, dy)
//	bwd.Input.SetFromForward(fwd.Result())
//	_ = bwd.Compute()
//	dx := bwd.Result().Get(layers.Gradient)
package layers

import (
	"github.com/born-ml/kernels/internal/layers"
)

// Parameter holds the options every layer shares.
type Parameter = layers.Parameter

// BackwardResultID identifies an output of a backward layer.
type BackwardResultID = layers.BackwardResultID

// Backward outputs.
const (
	Gradient          BackwardResultID = layers.Gradient
	WeightDerivatives BackwardResultID = layers.WeightDerivatives
	BiasDerivatives   BackwardResultID = layers.BiasDerivatives
)
