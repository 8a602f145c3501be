package augment

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/naminet-ml/naminet/internal/random"
)

// smoothKernel is the 3x3 binomial kernel applied to displacement fields.
var smoothKernel = [3][3]float64{
	{1, 2, 1},
	{2, 4, 2},
	{1, 2, 1},
}

// smoothNorm divides every kernel sum, including at the edges where part of
// the kernel falls outside the field.
const smoothNorm = 16.0

// DisplacementField holds per-pixel horizontal and vertical offsets for a
// Size x Size image, row-major.
type DisplacementField struct {
	Size   int
	DX, DY []float64
}

// NewDisplacementField draws both components uniformly from [-1, 1).
//
// Draws are interleaved per pixel: dx then dy.
func NewDisplacementField(size int, rng random.Source) *DisplacementField {
	f := &DisplacementField{
		Size: size,
		DX:   make([]float64, size*size),
		DY:   make([]float64, size*size),
	}
	for i := range f.DX {
		f.DX[i] = rng.Float64()*2 - 1
		f.DY[i] = rng.Float64()*2 - 1
	}
	return f
}

// Smoothed returns a copy of f with both components convolved once with the
// 3x3 binomial kernel. Out-of-bounds taps contribute 0 and the sum is always
// divided by 16, so borders are attenuated.
func (f *DisplacementField) Smoothed() *DisplacementField {
	return &DisplacementField{
		Size: f.Size,
		DX:   smoothComponent(f.DX, f.Size),
		DY:   smoothComponent(f.DY, f.Size),
	}
}

// Scale multiplies both components by alpha in place.
func (f *DisplacementField) Scale(alpha float64) {
	floats.Scale(alpha, f.DX)
	floats.Scale(alpha, f.DY)
}

func smoothComponent(src []float64, size int) []float64 {
	out := make([]float64, len(src))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			var sum float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					nx, ny := x+kx, y+ky
					if nx >= 0 && nx < size && ny >= 0 && ny < size {
						sum += src[ny*size+nx] * smoothKernel[ky+1][kx+1]
					}
				}
			}
			out[y*size+x] = sum / smoothNorm
		}
	}
	return out
}

// ElasticDistort warps the image with a random smooth displacement field.
//
// A fresh field is drawn, smoothed once, scaled by alpha, and every
// destination pixel (x, y) samples the source at (x+dx, y+dy) with bilinear
// interpolation. sigma is accepted for API symmetry with Gaussian-kernel
// implementations; the smoothing kernel is fixed.
func (e *Engine) ElasticDistort(img []float64, alpha, sigma float64, rng random.Source) []float64 {
	field := NewDisplacementField(e.size, rng).Smoothed()
	field.Scale(alpha)
	return e.Displace(img, field)
}

// Displace samples img at every pixel position offset by field.
func (e *Engine) Displace(img []float64, field *DisplacementField) []float64 {
	out := make([]float64, len(img))
	for y := 0; y < e.size; y++ {
		for x := 0; x < e.size; x++ {
			i := y*e.size + x
			out[i] = e.bilinear(img, float64(x)+field.DX[i], float64(y)+field.DY[i])
		}
	}
	return out
}

// bilinear interpolates img at (x, y) from its four neighboring pixels.
// Neighbors outside the image count as 0.
func (e *Engine) bilinear(img []float64, x, y float64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	wx := x - float64(x0)
	wy := y - float64(y0)

	v00 := e.at(img, x0, y0)
	v10 := e.at(img, x0+1, y0)
	v01 := e.at(img, x0, y0+1)
	v11 := e.at(img, x0+1, y0+1)

	return (1-wx)*(1-wy)*v00 +
		wx*(1-wy)*v10 +
		(1-wx)*wy*v01 +
		wx*wy*v11
}
