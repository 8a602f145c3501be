// Package random provides the injectable randomness source used by every
// stochastic operation in NamiNet: weight initialization, dropout, the Adam
// perturbation term, augmentation and dataset shuffling.
//
// Nothing in the module draws from a process-wide generator. Callers create a
// Source once (usually with New and a fixed seed) and thread it through.
package random

import "math/rand/v2"

// Source is the minimal set of draws the training engine needs.
//
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// NormFloat64 returns a standard normal value.
	NormFloat64() float64
	// IntN returns a uniform value in [0, n). Panics if n <= 0.
	IntN(n int) int
}

// New returns a PCG-backed generator seeded from seed.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Uniform returns a value drawn uniformly from [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Bernoulli reports true with probability p.
func Bernoulli(src Source, p float64) bool {
	return src.Float64() < p
}

// Shuffle permutes n elements with Fisher-Yates using swap.
func Shuffle(src Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		swap(i, j)
	}
}
