package augment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naminet-ml/naminet/internal/random"
)

func TestElasticDistortZeroAlphaIsIdentity(t *testing.T) {
	e := newTestEngine()
	img := randomImage(11)

	out := e.ElasticDistort(img, 0, 1.0, random.New(12))

	assert.InDeltaSlice(t, img, out, 1e-12)
}

func TestElasticDistortStaysInRange(t *testing.T) {
	e := newTestEngine()
	img := randomImage(13)

	out := e.ElasticDistort(img, 1.5, 1.0, random.New(14))

	require.Len(t, out, len(img))
	for _, v := range out {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0+1e-12)
	}
	assert.NotEqual(t, img, out)
}

func TestElasticDistortIsReproducible(t *testing.T) {
	e := newTestEngine()
	img := randomImage(15)

	a := e.ElasticDistort(img, 1.5, 1.0, random.New(16))
	b := e.ElasticDistort(img, 1.5, 1.0, random.New(16))
	assert.Equal(t, a, b)
}

func TestDisplacementFieldRange(t *testing.T) {
	f := NewDisplacementField(DefaultSize, random.New(17))
	require.Len(t, f.DX, DefaultSize*DefaultSize)
	require.Len(t, f.DY, DefaultSize*DefaultSize)
	for i := range f.DX {
		assert.GreaterOrEqual(t, f.DX[i], -1.0)
		assert.Less(t, f.DX[i], 1.0)
		assert.GreaterOrEqual(t, f.DY[i], -1.0)
		assert.Less(t, f.DY[i], 1.0)
	}
}

// TestDisplacementFieldSmoothingEdges pins the fixed divisor: border taps
// outside the field count as zero and are not renormalized.
func TestDisplacementFieldSmoothingEdges(t *testing.T) {
	const n = 5
	f := &DisplacementField{Size: n, DX: make([]float64, n*n), DY: make([]float64, n*n)}
	for i := range f.DX {
		f.DX[i] = 1
		f.DY[i] = -2
	}

	s := f.Smoothed()

	assert.InDelta(t, 9.0/16, s.DX[0], 1e-12)        // corner
	assert.InDelta(t, 12.0/16, s.DX[2], 1e-12)       // top edge
	assert.InDelta(t, 1.0, s.DX[2*n+2], 1e-12)       // interior
	assert.InDelta(t, -2*9.0/16, s.DY[n*n-1], 1e-12) // opposite corner
	assert.Equal(t, 1.0, f.DX[0], "source field must not change")
}

func TestDisplacementFieldScale(t *testing.T) {
	f := &DisplacementField{Size: 1, DX: []float64{0.5}, DY: []float64{-0.25}}
	f.Scale(2)
	assert.Equal(t, []float64{1}, f.DX)
	assert.Equal(t, []float64{-0.5}, f.DY)
}

func TestDisplaceWholePixel(t *testing.T) {
	e := newTestEngine()
	img := blank()
	img[5*DefaultSize+6] = 1

	field := &DisplacementField{Size: DefaultSize, DX: blank(), DY: blank()}
	for i := range field.DX {
		field.DX[i] = 1
	}

	out := e.Displace(img, field)
	assert.Equal(t, []int{5*DefaultSize + 5}, litPixels(out))
}

func TestBilinearHalfway(t *testing.T) {
	e := newTestEngine()
	img := blank()
	img[0] = 1
	img[1] = 0.5

	assert.InDelta(t, 0.75, e.bilinear(img, 0.5, 0), 1e-12)
	assert.InDelta(t, 0.375, e.bilinear(img, 0.5, 0.5), 1e-12)
	assert.InDelta(t, 0.5, e.bilinear(img, -0.5, 0), 1e-12)
}
