// Copyright 2025 NamiNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/naminet-ml/naminet/internal/nn"
	"github.com/naminet-ml/naminet/internal/optim"
	"github.com/naminet-ml/naminet/internal/random"
)

// LeakySlope is the negative-side slope of the hidden activation.
const LeakySlope = nn.LeakySlope

// Errors returned by network construction and state restore.
var (
	ErrNoLayers         = nn.ErrNoLayers
	ErrInvalidLayerSize = nn.ErrInvalidLayerSize
	ErrDropoutLength    = nn.ErrDropoutLength
	ErrInvalidDropout   = nn.ErrInvalidDropout
	ErrStateMismatch    = nn.ErrStateMismatch
)

// Layers

// Dense is a fully connected layer with its own optimizer state.
type Dense = nn.Dense

// ForwardResult caches one layer's forward pass for the backward pass.
type ForwardResult = nn.ForwardResult

// NewDense creates a dense layer. Hidden layers are He-initialized, the
// output layer Xavier-initialized. Biases start at zero.
func NewDense(inputSize, outputSize int, output bool, opt optim.Optimizer, rng random.Source) *Dense {
	return nn.NewDense(inputSize, outputSize, output, opt, rng)
}

// Networks

// Network is a stack of dense layers trained one sample at a time.
type Network = nn.Network

// Trace holds the per-layer caches of one training-mode forward pass.
type Trace = nn.Trace

// Option configures a Network.
type Option = nn.Option

// WithOptimizer sets the optimizer used by every layer (default: Adam).
func WithOptimizer(opt optim.Optimizer) Option {
	return nn.WithOptimizer(opt)
}

// NewNetwork creates a network with the given layer sizes (input first) and
// one dropout rate per layer.
//
// Example:
//
//	net, err := nn.NewNetwork([]int{784, 128, 64, 10}, []float64{0.1, 0.05, 0}, random.New(1))
func NewNetwork(sizes []int, dropoutRates []float64, rng random.Source, opts ...Option) (*Network, error) {
	return nn.NewNetwork(sizes, dropoutRates, rng, opts...)
}

// Snapshots

// LayerState is a deep copy of one layer's parameters and optimizer state.
type LayerState = nn.LayerState

// NetworkState is a deep copy of a whole network.
type NetworkState = nn.NetworkState

// NewNetworkFromState rebuilds a network from a snapshot.
func NewNetworkFromState(s *NetworkState, opts ...Option) (*Network, error) {
	return nn.NewNetworkFromState(s, opts...)
}

// Functions

// OneHot returns a vector of length classes with a 1 at label.
func OneHot(label, classes int) []float64 {
	return nn.OneHot(label, classes)
}

// Softmax returns the numerically stable softmax of z.
func Softmax(z []float64) []float64 {
	return nn.Softmax(z)
}

// CrossEntropyLoss returns -sum(t * log(p)) with p clamped away from zero.
func CrossEntropyLoss(p, t []float64) float64 {
	return nn.CrossEntropyLoss(p, t)
}
