// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package algorithm exposes the options and states shared by every algorithm
// façade.
//
// Every algorithm package (svd, qr, linreg, ridge and the layers) builds a
// Batch for one precision and computation method:
//
//	alg, _ := svd.NewBatch[float64](algorithm.DefaultDense, algorithm.WithVariant(algorithm.Generic))
//	defer alg.Close()
//	alg.Input.Set(svd.Data, x)
//	err := alg.Compute() // validates, allocates, dispatches
package algorithm

import (
	"github.com/born-ml/kernels/internal/algorithm"
	"github.com/born-ml/kernels/internal/cpuid"
)

// Method identifies a computation method of an algorithm.
type Method = algorithm.Method

// DefaultDense is the default method of every algorithm.
const DefaultDense = algorithm.DefaultDense

// State is the position of a façade in one Compute call.
type State = algorithm.State

// Façade states.
const (
	Idle        State = algorithm.Idle
	Validating  State = algorithm.Validating
	Allocating  State = algorithm.Allocating
	Dispatching State = algorithm.Dispatching
	Validated   State = algorithm.Validated
	Failed      State = algorithm.Failed
)

// Option configures a façade at construction.
type Option = algorithm.Option

// WithVariant selects the kernel for isa instead of the detected CPU.
func WithVariant(isa ISA) Option {
	return algorithm.WithVariant(isa)
}

// WithPostCheck validates the result again after the kernel ran.
func WithPostCheck(enabled bool) Option {
	return algorithm.WithPostCheck(enabled)
}

// WithProvider sets the provider outputs are allocated from.
func WithProvider(p Provider) Option {
	return algorithm.WithProvider(p)
}

// ISA is a CPU instruction-set variant.
type ISA = cpuid.ISA

// CPU variants.
const (
	Generic ISA = cpuid.Generic
	SSE42   ISA = cpuid.SSE42
	AVX2    ISA = cpuid.AVX2
	AVX512  ISA = cpuid.AVX512
	NEON    ISA = cpuid.NEON
	SVE2    ISA = cpuid.SVE2
)

// ActiveISA returns the variant façades select by default.
func ActiveISA() ISA {
	return cpuid.Active()
}

// SupportedISAs lists the variants this CPU can run.
func SupportedISAs() []ISA {
	return cpuid.Supported()
}
