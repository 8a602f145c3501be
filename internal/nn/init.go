package nn

import (
	"math"

	"github.com/naminet-ml/naminet/internal/random"
)

// HeNormal fills w with draws from N(0, 2/fanIn).
//
// Used for LeakyReLU hidden layers.
func HeNormal(w []float64, fanIn int, rng random.Source) {
	std := math.Sqrt(2.0 / float64(fanIn))
	for i := range w {
		w[i] = rng.NormFloat64() * std
	}
}

// XavierNormal fills w with draws from N(0, 1/fanIn).
//
// Used for the softmax output layer.
func XavierNormal(w []float64, fanIn int, rng random.Source) {
	std := math.Sqrt(1.0 / float64(fanIn))
	for i := range w {
		w[i] = rng.NormFloat64() * std
	}
}
