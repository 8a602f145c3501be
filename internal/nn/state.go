package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/naminet-ml/naminet/internal/optim"
)

// LayerState is a deep copy of one Dense layer's trainable and optimizer
// state. Weights and their moments are row-major [OutputSize, InputSize].
type LayerState struct {
	InputSize  int
	OutputSize int
	Output     bool
	Step       int
	Weights    []float64
	Bias       []float64
	MW, VW     []float64
	MB, VB     []float64
}

// NetworkState is the full snapshot of a Network. It holds no references
// into the network it was taken from.
type NetworkState struct {
	Sizes           []int
	DropoutRates    []float64
	Optimizer       string
	OptimizerConfig map[string]float64
	Layers          []LayerState
}

// State returns a deep copy of the layer's state.
func (l *Dense) State() LayerState {
	return LayerState{
		InputSize:  l.inputSize,
		OutputSize: l.outputSize,
		Output:     l.output,
		Step:       l.step,
		Weights:    append([]float64(nil), l.weights.RawMatrix().Data...),
		Bias:       append([]float64(nil), l.bias...),
		MW:         append([]float64(nil), l.mW...),
		VW:         append([]float64(nil), l.vW...),
		MB:         append([]float64(nil), l.mB...),
		VB:         append([]float64(nil), l.vB...),
	}
}

// LoadState copies s into the layer.
func (l *Dense) LoadState(s LayerState) error {
	if err := s.validate(l.inputSize, l.outputSize); err != nil {
		return err
	}
	if s.Output != l.output {
		return fmt.Errorf("%w: output flag %v, layer has %v", ErrStateMismatch, s.Output, l.output)
	}

	copy(l.weights.RawMatrix().Data, s.Weights)
	copy(l.bias, s.Bias)
	copy(l.mW, s.MW)
	copy(l.vW, s.VW)
	copy(l.mB, s.MB)
	copy(l.vB, s.VB)
	l.step = s.Step
	return nil
}

func (s LayerState) validate(in, out int) error {
	if s.InputSize != in || s.OutputSize != out {
		return fmt.Errorf("%w: layer %dx%d, state %dx%d",
			ErrStateMismatch, out, in, s.OutputSize, s.InputSize)
	}
	if in <= 0 || out <= 0 || in > math.MaxInt/out {
		return fmt.Errorf("%w: invalid layer size %dx%d", ErrStateMismatch, out, in)
	}
	nw := in * out
	buffers := []struct {
		name string
		buf  []float64
		want int
	}{
		{"weights", s.Weights, nw},
		{"mW", s.MW, nw},
		{"vW", s.VW, nw},
		{"bias", s.Bias, out},
		{"mB", s.MB, out},
		{"vB", s.VB, out},
	}
	for _, b := range buffers {
		if len(b.buf) != b.want {
			return fmt.Errorf("%w: %s has %d values, want %d", ErrStateMismatch, b.name, len(b.buf), b.want)
		}
	}
	if s.Step < 0 {
		return fmt.Errorf("%w: negative step %d", ErrStateMismatch, s.Step)
	}
	return nil
}

// State returns a deep copy of the network's parameters and optimizer state.
func (n *Network) State() *NetworkState {
	s := &NetworkState{
		Sizes:           n.Sizes(),
		DropoutRates:    n.DropoutRates(),
		Optimizer:       n.optimizer.Name(),
		OptimizerConfig: n.optimizer.Hyperparameters(),
		Layers:          make([]LayerState, len(n.layers)),
	}
	for i, l := range n.layers {
		s.Layers[i] = l.State()
	}
	return s
}

// LoadState overwrites the network's parameters with s. The architecture
// must match exactly; on error the network may be partially updated.
func (n *Network) LoadState(s *NetworkState) error {
	if len(s.Layers) != len(n.layers) {
		return fmt.Errorf("%w: %d layers, state has %d", ErrStateMismatch, len(n.layers), len(s.Layers))
	}
	for i, l := range n.layers {
		if err := l.LoadState(s.Layers[i]); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}

// NewNetworkFromState builds a network directly from a snapshot.
//
// The snapshot's sizes and dropout rates define the architecture. Weights
// are taken from the snapshot, so no randomness source is needed. Unless
// WithOptimizer is given, the optimizer is rebuilt from the snapshot's
// optimizer name and configuration.
func NewNetworkFromState(s *NetworkState, opts ...Option) (*Network, error) {
	if err := validateArchitecture(s.Sizes, s.DropoutRates); err != nil {
		return nil, err
	}
	if len(s.Layers) != len(s.Sizes)-1 {
		return nil, fmt.Errorf("%w: %d sizes, %d layers", ErrStateMismatch, len(s.Sizes), len(s.Layers))
	}

	n := &Network{
		sizes:   append([]int(nil), s.Sizes...),
		dropout: append([]float64(nil), s.DropoutRates...),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.optimizer == nil {
		opt, err := restoreOptimizer(s)
		if err != nil {
			return nil, err
		}
		n.optimizer = opt
	}

	// Buffer lengths are checked before anything is allocated from Sizes.
	for i := range s.Layers {
		if err := s.Layers[i].validate(s.Sizes[i], s.Sizes[i+1]); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
	}

	n.layers = make([]*Dense, len(s.Layers))
	for i := range n.layers {
		in, out := s.Sizes[i], s.Sizes[i+1]
		l := &Dense{
			inputSize:  in,
			outputSize: out,
			output:     i == len(n.layers)-1,
			weights:    mat.NewDense(out, in, nil),
			bias:       make([]float64, out),
			mW:         make([]float64, in*out),
			vW:         make([]float64, in*out),
			mB:         make([]float64, out),
			vB:         make([]float64, out),
			optimizer:  n.optimizer,
		}
		if err := l.LoadState(s.Layers[i]); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		n.layers[i] = l
	}

	return n, nil
}

func restoreOptimizer(s *NetworkState) (optim.Optimizer, error) {
	if s.Optimizer == "" {
		return optim.NewAdam(optim.DefaultAdamConfig()), nil
	}
	opt, err := optim.FromConfig(s.Optimizer, s.OptimizerConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStateMismatch, err)
	}
	return opt, nil
}
