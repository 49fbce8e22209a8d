// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package status exposes the error report algorithms return.
//
// Compute returns an error that unwraps to every entry, so a failure kind is
// matched with errors.Is and the entries are listed with Of:
//
//	if errors.Is(err, status.ShapeMismatch) {
//		for _, e := range status.Of(err).Errors() {
//			log.Println(e.Argument, e.Details)
//		}
//	}
package status

import (
	"github.com/born-ml/kernels/internal/status"
)

// Kind classifies an error entry.
type Kind = status.Kind

// Error kinds.
const (
	MissingRequiredInput      Kind = status.MissingRequiredInput
	ShapeMismatch             Kind = status.ShapeMismatch
	UnsupportedLayout         Kind = status.UnsupportedLayout
	AllocationFailure         Kind = status.AllocationFailure
	KernelComputationFailure  Kind = status.KernelComputationFailure
	IncorrectArgumentCount    Kind = status.IncorrectArgumentCount
	IncompatibleResultVariant Kind = status.IncompatibleResultVariant
	InvalidParameter          Kind = status.InvalidParameter
	UnsupportedKernel         Kind = status.UnsupportedKernel
)

// Error is one entry: a kind plus the argument it concerns.
type Error = status.Error

// Status is an ordered list of entries.
type Status = status.Status

// Of recovers the status carried by err.
func Of(err error) Status {
	return status.Of(err)
}
