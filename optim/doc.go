// Copyright 2025 NamiNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the per-parameter update rules for NamiNet layers.
//
// # Overview
//
// This package contains:
//   - Adam: Adaptive Moment Estimation with L2 decay, gradient clipping and
//     a small random perturbation of weights after each step
//   - SGD: Stochastic Gradient Descent with momentum
//   - Optimizer interface for custom optimizers
//
// Moment buffers and step counters belong to the layers, so one optimizer
// value can be shared by every layer of a network.
//
// # Basic Usage
//
//	adam := optim.NewAdam(optim.DefaultAdamConfig())
//	net, err := nn.NewNetwork(sizes, rates, rng, nn.WithOptimizer(adam))
//
// The defaults are beta1 0.99, beta2 0.999, eps 1e-8, weight decay 5e-5,
// clip value 5 and perturbation 1e-6.
package optim
