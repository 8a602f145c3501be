// Package dataset loads labeled 28x28 digit images for training and
// evaluation.
//
// Supported sources:
//   - CSV (Kaggle-style): header row, then label,pixel0,...,pixel783
//   - IDX: the official MNIST binary files, optionally gzip-compressed
//   - Synthetic: simple bar patterns for smoke runs without data files
//
// Pixels are normalized to [0, 1] on load.
package dataset

import (
	"github.com/naminet-ml/naminet/internal/random"
)

// Image geometry and label space of MNIST.
const (
	Width      = 28
	Height     = 28
	NumPixels  = Width * Height
	NumClasses = 10
)

// Sample is one labeled image.
type Sample struct {
	Pixels []float64 // NumPixels values in [0, 1], row-major
	Label  int       // Class index in [0, NumClasses)
}

// Dataset is an ordered collection of samples.
type Dataset struct {
	Samples []Sample
	Classes int
}

// New wraps samples into a dataset with NumClasses classes.
func New(samples []Sample) *Dataset {
	return &Dataset{Samples: samples, Classes: NumClasses}
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Samples)
}

// Shuffle permutes the samples in place.
func (d *Dataset) Shuffle(rng random.Source) {
	random.Shuffle(rng, len(d.Samples), func(i, j int) {
		d.Samples[i], d.Samples[j] = d.Samples[j], d.Samples[i]
	})
}

// Split divides the dataset into a training part and a validation part
// holding the last validationRatio of the samples. The parts share the
// underlying sample slice.
func (d *Dataset) Split(validationRatio float64) (train, validation *Dataset) {
	splitIdx := int(float64(len(d.Samples)) * (1.0 - validationRatio))
	splitIdx = max(0, min(len(d.Samples), splitIdx))

	return &Dataset{Samples: d.Samples[:splitIdx], Classes: d.Classes},
		&Dataset{Samples: d.Samples[splitIdx:], Classes: d.Classes}
}

// Limit returns a dataset with at most n samples. n <= 0 means no limit.
func (d *Dataset) Limit(n int) *Dataset {
	if n <= 0 || n >= len(d.Samples) {
		return d
	}
	return &Dataset{Samples: d.Samples[:n], Classes: d.Classes}
}

// ClassCounts returns how many samples carry each label.
func (d *Dataset) ClassCounts() []int {
	counts := make([]int, d.Classes)
	for _, s := range d.Samples {
		if s.Label >= 0 && s.Label < d.Classes {
			counts[s.Label]++
		}
	}
	return counts
}
