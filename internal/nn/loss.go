package nn

import (
	"math"
)

// LossEpsilon is the probability floor used by CrossEntropyLoss to avoid log(0).
const LossEpsilon = 1e-8

// CrossEntropyLoss computes -Σ t_i * log(max(p_i, ε)).
//
// p is a probability vector (softmax output) and t the target distribution,
// normally one-hot.
func CrossEntropyLoss(p, t []float64) float64 {
	var loss float64
	for i := range p {
		if t[i] == 0 {
			continue
		}
		loss -= t[i] * math.Log(math.Max(p[i], LossEpsilon))
	}
	return loss
}

// CrossEntropyLossDerivative returns p - t.
//
// This is the gradient of cross-entropy with respect to the softmax
// pre-activation, not with respect to p. Pair it only with a softmax output
// layer, whose backward pass treats it as dZ directly.
func CrossEntropyLossDerivative(p, t []float64) []float64 {
	grad := make([]float64, len(p))
	for i := range p {
		grad[i] = p[i] - t[i]
	}
	return grad
}

// MeanSquaredError computes mean((p - t)²).
func MeanSquaredError(p, t []float64) float64 {
	var loss float64
	for i := range p {
		d := p[i] - t[i]
		loss += d * d
	}
	return loss / float64(len(p))
}

// MeanSquaredErrorDerivative returns 2 * (p - t) / n.
func MeanSquaredErrorDerivative(p, t []float64) []float64 {
	grad := make([]float64, len(p))
	n := float64(len(p))
	for i := range p {
		grad[i] = 2 * (p[i] - t[i]) / n
	}
	return grad
}
