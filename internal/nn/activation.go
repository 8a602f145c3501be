package nn

import (
	"math"
)

// LeakySlope is the negative-side slope of LeakyReLU.
const LeakySlope = 0.05

// LeakyReLU applies f(z) = z for z >= 0, 0.05*z otherwise.
//
// This is the hidden-layer activation of every NamiNet network.
func LeakyReLU(z float64) float64 {
	if z >= 0 {
		return z
	}
	return LeakySlope * z
}

// LeakyReLUDerivative returns 1 for z >= 0, 0.05 otherwise.
func LeakyReLUDerivative(z float64) float64 {
	if z >= 0 {
		return 1
	}
	return LeakySlope
}

// ReLU applies f(z) = max(0, z).
func ReLU(z float64) float64 {
	if z >= 0 {
		return z
	}
	return 0
}

// ReLUDerivative returns 1 for z >= 0, 0 otherwise.
func ReLUDerivative(z float64) float64 {
	if z >= 0 {
		return 1
	}
	return 0
}

// Sigmoid applies σ(z) = 1 / (1 + exp(-z)).
func Sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// SigmoidDerivative returns σ(z) * (1 - σ(z)).
func SigmoidDerivative(z float64) float64 {
	s := Sigmoid(z)
	return s * (1 - s)
}

// Tanh applies the hyperbolic tangent.
func Tanh(z float64) float64 {
	return math.Tanh(z)
}

// TanhDerivative returns 1 - tanh²(z).
func TanhDerivative(z float64) float64 {
	t := math.Tanh(z)
	return 1 - t*t
}

// Softmax converts z into a probability distribution.
//
// The maximum is subtracted before exponentiating, so large-magnitude inputs
// of either sign do not overflow:
//
//	softmax(z)_i = exp(z_i - max(z)) / Σ_j exp(z_j - max(z))
//
// Returns a new slice; z is not modified.
func Softmax(z []float64) []float64 {
	maxVal := math.Inf(-1)
	for _, v := range z {
		if v > maxVal {
			maxVal = v
		}
	}

	out := make([]float64, len(z))
	var sum float64
	for i, v := range z {
		out[i] = math.Exp(v - maxVal)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}

	return out
}
