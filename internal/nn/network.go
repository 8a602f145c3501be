// Package nn provides the dense layers and feed-forward networks that
// NamiNet trains one sample at a time, with activations, losses and
// snapshot support.
package nn

import (
	"fmt"

	"github.com/naminet-ml/naminet/internal/optim"
	"github.com/naminet-ml/naminet/internal/random"
)

// Network is an ordered stack of Dense layers with per-layer dropout rates.
//
// The last layer is the softmax output layer; every other layer uses
// LeakyReLU. A Network is mutated in place by Train and Backward and does not
// synchronize: concurrent Predict calls are safe, concurrent training is not.
//
// Example:
//
//	rng := random.New(1)
//	net, err := nn.NewNetwork([]int{784, 128, 64, 10}, []float64{0.1, 0.05, 0}, rng)
//	if err != nil {
//	    return err
//	}
//	net.Train(pixels, nn.OneHot(label, 10), 0.002, rng)
//	probs := net.Predict(pixels)
type Network struct {
	sizes     []int
	dropout   []float64
	layers    []*Dense
	optimizer optim.Optimizer
}

// Option configures a Network at construction.
type Option func(*Network)

// WithOptimizer replaces the default Adam optimizer for every layer.
func WithOptimizer(opt optim.Optimizer) Option {
	return func(n *Network) {
		n.optimizer = opt
	}
}

// Trace is the list of per-layer forward results of one pass, input layer
// first.
type Trace []*ForwardResult

// Output returns the activation of the last layer.
func (t Trace) Output() []float64 {
	return t[len(t)-1].Activation
}

// NewNetwork creates a network for the given layer sizes.
//
// sizes lists the input size followed by each layer's output size, so
// {784, 128, 64, 10} builds three layers. dropoutRates needs one entry per
// layer, each in [0, 1). The output layer's rate is conventionally 0.
func NewNetwork(sizes []int, dropoutRates []float64, rng random.Source, opts ...Option) (*Network, error) {
	if err := validateArchitecture(sizes, dropoutRates); err != nil {
		return nil, err
	}

	n := &Network{
		sizes:   append([]int(nil), sizes...),
		dropout: append([]float64(nil), dropoutRates...),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.optimizer == nil {
		n.optimizer = optim.NewAdam(optim.DefaultAdamConfig())
	}

	n.layers = make([]*Dense, len(sizes)-1)
	for i := range n.layers {
		output := i == len(n.layers)-1
		n.layers[i] = NewDense(sizes[i], sizes[i+1], output, n.optimizer, rng)
	}

	return n, nil
}

func validateArchitecture(sizes []int, dropoutRates []float64) error {
	if len(sizes) < 2 {
		return ErrNoLayers
	}
	for i, s := range sizes {
		if s <= 0 {
			return fmt.Errorf("%w: sizes[%d] = %d", ErrInvalidLayerSize, i, s)
		}
	}
	if len(dropoutRates) != len(sizes)-1 {
		return fmt.Errorf("%w: got %d rates for %d layers", ErrDropoutLength, len(dropoutRates), len(sizes)-1)
	}
	for i, r := range dropoutRates {
		if r < 0 || r >= 1 {
			return fmt.Errorf("%w: rates[%d] = %g", ErrInvalidDropout, i, r)
		}
	}
	return nil
}

// Forward runs a training-mode pass using each layer's dropout rate.
func (n *Network) Forward(input []float64, rng random.Source) Trace {
	trace := make(Trace, len(n.layers))
	a := input
	for i, l := range n.layers {
		trace[i] = l.Forward(a, n.dropout[i], rng)
		a = trace[i].Activation
	}
	return trace
}

// Predict runs an inference pass with dropout disabled and returns the class
// distribution. It does not modify the network.
func (n *Network) Predict(input []float64) []float64 {
	a := input
	for _, l := range n.layers {
		a = l.Forward(a, 0, nil).Activation
	}
	return a
}

// Backward propagates dA (the gradient with respect to the output layer's
// pre-activation) through trace in reverse order, updating every layer.
func (n *Network) Backward(trace Trace, dA []float64, lr float64, rng random.Source) {
	for i := len(n.layers) - 1; i >= 0; i-- {
		dA = n.layers[i].Backward(trace[i], dA, lr, rng)
	}
}

// Train performs one stochastic update on a single sample.
//
// target is the one-hot (or any probability) vector for input.
func (n *Network) Train(input, target []float64, lr float64, rng random.Source) {
	n.TrainStep(input, target, lr, rng)
}

// TrainStep is Train that also returns the training-mode output and its
// cross-entropy loss, both computed before the update.
func (n *Network) TrainStep(input, target []float64, lr float64, rng random.Source) ([]float64, float64) {
	trace := n.Forward(input, rng)
	out := trace.Output()
	loss := CrossEntropyLoss(out, target)

	n.Backward(trace, CrossEntropyLossDerivative(out, target), lr, rng)
	return out, loss
}

// Loss returns the inference-mode cross-entropy loss for one sample.
func (n *Network) Loss(input, target []float64) float64 {
	return CrossEntropyLoss(n.Predict(input), target)
}

// Layers returns the layers, input side first.
func (n *Network) Layers() []*Dense {
	return n.layers
}

// Sizes returns a copy of the layer sizes including the input size.
func (n *Network) Sizes() []int {
	return append([]int(nil), n.sizes...)
}

// DropoutRates returns a copy of the per-layer dropout rates.
func (n *Network) DropoutRates() []float64 {
	return append([]float64(nil), n.dropout...)
}

// InputSize returns the expected input length.
func (n *Network) InputSize() int {
	return n.sizes[0]
}

// NumClasses returns the output length.
func (n *Network) NumClasses() int {
	return n.sizes[len(n.sizes)-1]
}

// Optimizer returns the optimizer shared by all layers.
func (n *Network) Optimizer() optim.Optimizer {
	return n.optimizer
}

// OneHot returns a vector of length classes with a 1 at label.
func OneHot(label, classes int) []float64 {
	v := make([]float64, classes)
	v[label] = 1
	return v
}
