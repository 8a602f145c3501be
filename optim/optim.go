// Copyright 2025 NamiNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/naminet-ml/naminet/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Param is one flat parameter buffer with its gradient and moment buffers.
type Param = optim.Param

// ErrUnknownOptimizer is returned by FromConfig for an unrecognized name.
var ErrUnknownOptimizer = optim.ErrUnknownOptimizer

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// DefaultAdamConfig returns the standard NamiNet Adam configuration.
func DefaultAdamConfig() AdamConfig {
	return optim.DefaultAdamConfig()
}

// NewAdam creates a new Adam optimizer with bias correction.
//
// Example:
//
//	cfg := optim.DefaultAdamConfig()
//	cfg.Noise = 0 // deterministic updates
//	adam := optim.NewAdam(cfg)
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// FromConfig rebuilds an optimizer from its name and hyperparameters.
func FromConfig(name string, hp map[string]float64) (Optimizer, error) {
	return optim.FromConfig(name, hp)
}
