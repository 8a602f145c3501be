package augment

import (
	"github.com/naminet-ml/naminet/internal/random"
)

// Policy controls which transforms ApplyRandom may apply and with what
// magnitude. Each Prob field is an independent inclusion probability.
type Policy struct {
	ShiftProb float64
	MaxShift  int // dx, dy drawn uniformly from [-MaxShift, MaxShift]

	RotateProb float64
	MaxAngle   float64 // degrees, angle drawn uniformly from [-MaxAngle, MaxAngle)

	JitterProb  float64
	JitterScale float64

	NoiseProb   float64
	NoiseStdDev float64

	OccludeProb float64
	OccludeSize int

	ScaleProb float64
	MinScale  float64
	MaxScale  float64

	ElasticProb  float64
	ElasticAlpha float64
	ElasticSigma float64
}

// DefaultPolicy returns the policy NamiNet trains with.
func DefaultPolicy() Policy {
	return Policy{
		ShiftProb:    0.7,
		MaxShift:     1,
		RotateProb:   0.4,
		MaxAngle:     15,
		JitterProb:   0.2,
		JitterScale:  0.02,
		NoiseProb:    0.05,
		NoiseStdDev:  0.01,
		OccludeProb:  0.10,
		OccludeSize:  3,
		ScaleProb:    0.3,
		MinScale:     0.9,
		MaxScale:     1.1,
		ElasticProb:  0.2,
		ElasticAlpha: 1.5,
		ElasticSigma: 1.0,
	}
}

// ApplyRandom applies a random subset of transforms in a fixed order:
// shift, rotate, jitter, noise, occlude, scale, elastic. Each stage works on
// the output of the previous one. The result is always a new buffer.
func (e *Engine) ApplyRandom(img []float64, rng random.Source) []float64 {
	p := e.policy
	out := append([]float64(nil), img...)

	if random.Bernoulli(rng, p.ShiftProb) {
		span := 2*p.MaxShift + 1
		dx := rng.IntN(span) - p.MaxShift
		dy := rng.IntN(span) - p.MaxShift
		out = e.Shift(out, dx, dy)
	}

	if random.Bernoulli(rng, p.RotateProb) {
		out = e.Rotate(out, random.Uniform(rng, -p.MaxAngle, p.MaxAngle))
	}

	if random.Bernoulli(rng, p.JitterProb) {
		out = e.Jitter(out, p.JitterScale, rng)
	}

	if random.Bernoulli(rng, p.NoiseProb) {
		out = e.AddNoise(out, p.NoiseStdDev, rng)
	}

	if random.Bernoulli(rng, p.OccludeProb) {
		out = e.Occlude(out, p.OccludeSize, rng)
	}

	if random.Bernoulli(rng, p.ScaleProb) {
		out = e.Scale(out, random.Uniform(rng, p.MinScale, p.MaxScale))
	}

	if random.Bernoulli(rng, p.ElasticProb) {
		out = e.ElasticDistort(out, p.ElasticAlpha, p.ElasticSigma, rng)
	}

	return out
}
