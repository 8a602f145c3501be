// Package optim implements the per-parameter update rules used by NamiNet
// dense layers.
//
// This package provides:
//   - Optimizer interface: a single in-place Step over flat parameter buffers
//   - Adam: Adaptive Moment Estimation with L2 decay, clipping and perturbation
//   - SGD: Stochastic Gradient Descent with momentum
//
// Optimizers are stateless with respect to parameters: moment buffers and the
// step counter are owned by the layer that owns the parameters and are passed
// in on every call. This keeps a layer's full training state in one place so
// it can be snapshotted and restored.
//
// Example usage:
//
//	adam := optim.NewAdam(optim.DefaultAdamConfig())
//	step++
//	adam.Step(optim.Param{
//	    Values: weights,
//	    Grads:  dW,
//	    M:      mW,
//	    V:      vW,
//	    Decay:  true,
//	}, step, lr, rng)
package optim

import (
	"github.com/naminet-ml/naminet/internal/random"
)

// Param is one flat parameter buffer together with its gradient and
// optimizer moment buffers. All four slices must have the same length.
type Param struct {
	Values []float64 // Parameter values, updated in place
	Grads  []float64 // Gradient for this step
	M      []float64 // First moment (Adam) or velocity (SGD)
	V      []float64 // Second moment (Adam), unused by SGD
	Decay  bool      // Weight-style update: L2 decay, clipping and perturbation
}

// Optimizer is the base interface for all optimization algorithms.
//
// All optimizers must implement:
//   - Step: apply one update to a parameter buffer in place
//   - Name: identify the algorithm in snapshots
//   - Hyperparameters: report the configuration for snapshots
type Optimizer interface {
	// Step applies one update. t is the 1-based step counter of the owning
	// layer, already incremented for this call. rng may be nil, in which
	// case no random perturbation is applied.
	Step(p Param, t int, lr float64, rng random.Source)

	// Name returns the algorithm name ("Adam", "SGD").
	Name() string

	// Hyperparameters returns the optimizer configuration.
	Hyperparameters() map[string]float64
}

// clip limits g to [-limit, limit]. A non-positive limit disables clipping.
func clip(g, limit float64) float64 {
	if limit <= 0 {
		return g
	}
	return max(-limit, min(limit, g))
}
