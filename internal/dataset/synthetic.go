package dataset

import (
	"github.com/naminet-ml/naminet/internal/random"
)

// Synthetic generates n bar-pattern samples cycling through all classes.
//
// Class k lights rows 2k..2k+7 across columns 5..22 with brightness around
// 0.8. This is NOT realistic digit data; it exists to exercise the pipeline
// without dataset files.
func Synthetic(n int, rng random.Source) *Dataset {
	samples := make([]Sample, n)
	for i := range samples {
		label := i % NumClasses
		pixels := make([]float64, NumPixels)

		startRow := label * 2
		for row := startRow; row < startRow+8 && row < Height; row++ {
			for col := 5; col < 23; col++ {
				pixels[row*Width+col] = 0.7 + 0.2*rng.Float64()
			}
		}

		samples[i] = Sample{Pixels: pixels, Label: label}
	}
	return New(samples)
}
