package optim

import (
	"math"

	"github.com/naminet-ml/naminet/internal/random"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule for one element:
//
//	g     = grad + decay * param           // weights only
//	g     = clamp(g, -clip, clip)          // weights only
//	m_t   = beta1 * m_{t-1} + (1-beta1) * g
//	v_t   = beta2 * v_{t-1} + (1-beta2) * g²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//	param = param + U(-noise, noise)       // weights only
//
// Biases (Param.Decay == false) receive the plain Adam update.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	beta1       float64
	beta2       float64
	eps         float64
	weightDecay float64
	clipValue   float64
	noise       float64
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	Beta1       float64 // First moment decay (default: 0.99)
	Beta2       float64 // Second moment decay (default: 0.999)
	Eps         float64 // Term for numerical stability (default: 1e-8)
	WeightDecay float64 // L2 coefficient added to weight gradients
	ClipValue   float64 // Weight gradient clip bound, 0 disables clipping
	Noise       float64 // Half-width of the uniform weight perturbation, 0 disables it
}

// DefaultAdamConfig returns the configuration NamiNet trains with.
func DefaultAdamConfig() AdamConfig {
	return AdamConfig{
		Beta1:       0.99,
		Beta2:       0.999,
		Eps:         1e-8,
		WeightDecay: 5e-5,
		ClipValue:   5.0,
		Noise:       1e-6,
	}
}

// NewAdam creates a new Adam optimizer.
//
// Beta1, Beta2 and Eps fall back to their defaults when zero. WeightDecay,
// ClipValue and Noise are used as given, so zero disables each of them.
func NewAdam(config AdamConfig) *Adam {
	def := DefaultAdamConfig()
	if config.Beta1 == 0 {
		config.Beta1 = def.Beta1
	}
	if config.Beta2 == 0 {
		config.Beta2 = def.Beta2
	}
	if config.Eps == 0 {
		config.Eps = def.Eps
	}

	return &Adam{
		beta1:       config.Beta1,
		beta2:       config.Beta2,
		eps:         config.Eps,
		weightDecay: config.WeightDecay,
		clipValue:   config.ClipValue,
		noise:       config.Noise,
	}
}

// Step performs a single Adam update on p in place.
func (a *Adam) Step(p Param, t int, lr float64, rng random.Source) {
	// bias_correction = 1 - beta^t
	biasCorrection1 := 1.0 - math.Pow(a.beta1, float64(t))
	biasCorrection2 := 1.0 - math.Pow(a.beta2, float64(t))
	perturb := p.Decay && a.noise > 0 && rng != nil

	for i := range p.Values {
		g := p.Grads[i]
		if p.Decay {
			g = clip(g+a.weightDecay*p.Values[i], a.clipValue)
		}

		p.M[i] = a.beta1*p.M[i] + (1.0-a.beta1)*g
		p.V[i] = a.beta2*p.V[i] + (1.0-a.beta2)*g*g

		mHat := p.M[i] / biasCorrection1
		vHat := p.V[i] / biasCorrection2

		p.Values[i] -= lr * mHat / (math.Sqrt(vHat) + a.eps)
		if perturb {
			p.Values[i] += (rng.Float64()*2 - 1) * a.noise
		}
	}
}

// Name returns "Adam".
func (a *Adam) Name() string {
	return "Adam"
}

// Hyperparameters returns the Adam configuration.
func (a *Adam) Hyperparameters() map[string]float64 {
	return map[string]float64{
		"beta1":        a.beta1,
		"beta2":        a.beta2,
		"eps":          a.eps,
		"weight_decay": a.weightDecay,
		"clip_value":   a.clipValue,
		"noise":        a.noise,
	}
}
