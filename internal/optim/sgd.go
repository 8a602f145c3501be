package optim

import (
	"github.com/naminet-ml/naminet/internal/random"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// The velocity lives in Param.M. Weight buffers (Param.Decay) get the L2
// term and clipping before the velocity update.
type SGD struct {
	momentum    float64
	weightDecay float64
	clipValue   float64
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	Momentum    float64 // Momentum factor (default: 0.0, range: [0, 1))
	WeightDecay float64 // L2 coefficient added to weight gradients
	ClipValue   float64 // Weight gradient clip bound, 0 disables clipping
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	return &SGD{
		momentum:    config.Momentum,
		weightDecay: config.WeightDecay,
		clipValue:   config.ClipValue,
	}
}

// Step performs a single SGD update on p in place. t and rng are unused.
func (s *SGD) Step(p Param, _ int, lr float64, _ random.Source) {
	for i := range p.Values {
		g := p.Grads[i]
		if p.Decay {
			g = clip(g+s.weightDecay*p.Values[i], s.clipValue)
		}

		if s.momentum != 0 {
			p.M[i] = s.momentum*p.M[i] + g
			g = p.M[i]
		}

		p.Values[i] -= lr * g
	}
}

// Name returns "SGD".
func (s *SGD) Name() string {
	return "SGD"
}

// Hyperparameters returns the SGD configuration.
func (s *SGD) Hyperparameters() map[string]float64 {
	return map[string]float64{
		"momentum":     s.momentum,
		"weight_decay": s.weightDecay,
		"clip_value":   s.clipValue,
	}
}
