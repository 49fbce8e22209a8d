// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package algorithm

import (
	"github.com/born-ml/kernels/internal/tensor"
)

// Provider creates the data objects a result allocates.
type Provider = tensor.Provider
