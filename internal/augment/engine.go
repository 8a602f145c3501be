package augment

import (
	"math"

	"github.com/naminet-ml/naminet/internal/random"
)

// DefaultSize is the side length of MNIST digits.
const DefaultSize = 28

// Engine applies transforms to Size x Size images.
//
// An Engine holds no mutable state and is safe for concurrent use as long
// as each goroutine supplies its own random.Source.
type Engine struct {
	size   int
	policy Policy
}

// NewEngine creates an engine for size x size images. A non-positive size
// selects DefaultSize.
func NewEngine(size int, policy Policy) *Engine {
	if size <= 0 {
		size = DefaultSize
	}
	return &Engine{size: size, policy: policy}
}

// Size returns the image side length.
func (e *Engine) Size() int {
	return e.size
}

// Policy returns the policy used by ApplyRandom.
func (e *Engine) Policy() Policy {
	return e.policy
}

// at returns the pixel at (x, y), or 0 outside the image.
func (e *Engine) at(img []float64, x, y int) float64 {
	if x < 0 || x >= e.size || y < 0 || y >= e.size {
		return 0
	}
	return img[y*e.size+x]
}

func (e *Engine) inBounds(x, y int) bool {
	return x >= 0 && x < e.size && y >= 0 && y < e.size
}

// Shift translates the image by (dx, dy) pixels. Pixels pushed past an edge
// are lost.
func (e *Engine) Shift(img []float64, dx, dy int) []float64 {
	out := make([]float64, len(img))
	for y := 0; y < e.size; y++ {
		for x := 0; x < e.size; x++ {
			nx, ny := x+dx, y+dy
			if e.inBounds(nx, ny) {
				out[ny*e.size+nx] = img[y*e.size+x]
			}
		}
	}
	return out
}

// Scale resizes the image by factor about its center using nearest-neighbor
// sampling. The resized extent is truncated to whole pixels, so a factor of
// exactly 1 is the identity.
func (e *Engine) Scale(img []float64, factor float64) []float64 {
	out := make([]float64, len(img))

	extent := int(float64(e.size) * factor)
	offset := (e.size - extent) / 2

	for y := 0; y < extent; y++ {
		srcY := int(float64(y) / factor)
		for x := 0; x < extent; x++ {
			srcX := int(float64(x) / factor)
			if !e.inBounds(srcX, srcY) {
				continue
			}
			destX, destY := x+offset, y+offset
			if e.inBounds(destX, destY) {
				out[destY*e.size+destX] = img[srcY*e.size+srcX]
			}
		}
	}
	return out
}

// Rotate rotates the image by angle degrees about (Size/2, Size/2).
//
// Destination pixel t (relative to the center) samples the source at R(angle)·t,
// rounded half up to the nearest pixel. Sources outside the image are
// background. In image coordinates (y down) a positive angle turns the
// content counter-clockwise.
func (e *Engine) Rotate(img []float64, angle float64) []float64 {
	rad := angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	c := e.size / 2

	out := make([]float64, len(img))
	for y := 0; y < e.size; y++ {
		ty := float64(y - c)
		for x := 0; x < e.size; x++ {
			tx := float64(x - c)
			sx := roundHalfUp(cos*tx-sin*ty) + c
			sy := roundHalfUp(sin*tx+cos*ty) + c
			out[y*e.size+x] = e.at(img, sx, sy)
		}
	}
	return out
}

// AddNoise adds N(0, stdDev²) noise to every pixel and clamps to [0, 1].
func (e *Engine) AddNoise(img []float64, stdDev float64, rng random.Source) []float64 {
	out := make([]float64, len(img))
	for i, v := range img {
		out[i] = clamp01(v + rng.NormFloat64()*stdDev)
	}
	return out
}

// Jitter adds U(-scale, scale) noise to every pixel and clamps to [0, 1].
func (e *Engine) Jitter(img []float64, scale float64, rng random.Source) []float64 {
	out := make([]float64, len(img))
	for i, v := range img {
		out[i] = clamp01(v + (rng.Float64()*2-1)*scale)
	}
	return out
}

// Occlude zeroes a boxSize x boxSize square at a uniformly random position
// that lies fully inside the image. boxSize must not exceed Size.
func (e *Engine) Occlude(img []float64, boxSize int, rng random.Source) []float64 {
	out := append([]float64(nil), img...)
	x0 := rng.IntN(e.size - boxSize + 1)
	y0 := rng.IntN(e.size - boxSize + 1)

	for y := y0; y < y0+boxSize; y++ {
		for x := x0; x < x0+boxSize; x++ {
			out[y*e.size+x] = 0
		}
	}
	return out
}

// Invert maps every pixel p to 1 - p.
func (e *Engine) Invert(img []float64) []float64 {
	out := make([]float64, len(img))
	for i, v := range img {
		out[i] = 1 - v
	}
	return out
}

// Smooth applies a 3x3 mean filter. Edge pixels average over their in-bounds
// neighbors only.
func (e *Engine) Smooth(img []float64) []float64 {
	out := make([]float64, len(img))
	for y := 0; y < e.size; y++ {
		for x := 0; x < e.size; x++ {
			var sum float64
			count := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if e.inBounds(nx, ny) {
						sum += img[ny*e.size+nx]
						count++
					}
				}
			}
			out[y*e.size+x] = sum / float64(count)
		}
	}
	return out
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
