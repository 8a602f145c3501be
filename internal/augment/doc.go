// Package augment synthesizes training variety for square grayscale images.
//
// Images are flat row-major []float64 buffers of Size*Size pixels with values
// in [0, 1], 0 being background. Every transform returns a new buffer and
// leaves its input untouched. Transforms that need randomness take an
// explicit random.Source.
//
// The transforms:
//   - Shift: integer translation, vacated pixels become background
//   - Scale: centered nearest-neighbor resize
//   - Rotate: nearest-neighbor rotation about the image center
//   - AddNoise / Jitter: Gaussian / uniform per-pixel noise, clamped
//   - Occlude: zero a random square patch
//   - ElasticDistort: smoothed random displacement with bilinear sampling
//   - Smooth: 3x3 mean filter applied to every sample before inference
//   - Invert: 1 - pixel
//
// ApplyRandom composes a random subset of them in a fixed order driven by a
// Policy.
//
// Example:
//
//	eng := augment.NewEngine(augment.DefaultSize, augment.DefaultPolicy())
//	x := eng.Smooth(eng.ApplyRandom(sample.Pixels, rng))
package augment
