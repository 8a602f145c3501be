package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/naminet-ml/naminet/internal/augment"
	"github.com/naminet-ml/naminet/internal/nn"
	"github.com/naminet-ml/naminet/internal/random"
)

func TestPredict(t *testing.T) {
	net, err := nn.NewNetwork([]int{16, 8, 3}, []float64{0.2, 0}, random.New(5))
	require.NoError(t, err)
	engine := augment.NewEngine(4, augment.DefaultPolicy())
	p := NewPredictor(net, engine)

	pixels := make([]float64, 16)
	pixels[5], pixels[6], pixels[9], pixels[10] = 1, 1, 1, 1

	got, err := p.Predict(pixels)
	require.NoError(t, err)

	want := net.Predict(engine.Smooth(pixels))
	assert.Equal(t, want, got.Probabilities)
	assert.Equal(t, floats.MaxIdx(want), got.Class)
	assert.Equal(t, want[got.Class], got.Confidence)
	assert.InDelta(t, 1.0, floats.Sum(got.Probabilities), 1e-12)

	again, err := p.Predict(pixels)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestPredictWithoutSmoothing(t *testing.T) {
	net, err := nn.NewNetwork([]int{4, 2}, []float64{0}, random.New(1))
	require.NoError(t, err)

	input := []float64{0.1, 0.2, 0.3, 0.4}
	got, err := NewPredictor(net, nil).Predict(input)
	require.NoError(t, err)
	assert.Equal(t, net.Predict(input), got.Probabilities)
}

func TestPredictInputSize(t *testing.T) {
	net, err := nn.NewNetwork([]int{4, 2}, []float64{0}, random.New(1))
	require.NoError(t, err)

	_, err = NewPredictor(net, nil).Predict([]float64{1, 2})
	assert.ErrorIs(t, err, ErrInputSize)
}

func TestConfidentAndVerdict(t *testing.T) {
	tests := []struct {
		class      int
		confidence float64
		confident  bool
		verdict    string
	}{
		{3, 0.1, false, "Sorry, no idea..."},
		{3, 0.3, true, "Uhh, is it a 3?"},
		{8, 0.45, true, "Uhh, is it an 8?"},
		{7, 0.5, true, "It's probably a 7"},
		{8, 0.95, true, "I think it's an 8!"},
	}
	for _, tt := range tests {
		p := Prediction{Class: tt.class, Confidence: tt.confidence}
		assert.Equal(t, tt.confident, p.Confident(NoIdeaThreshold), "confidence %v", tt.confidence)
		assert.Equal(t, tt.verdict, p.Verdict())
	}
}

func TestRender(t *testing.T) {
	got := Render([]float64{0, 1, 0.6, 0.5}, 2)
	assert.Equal(t, ". # \n# . \n", got)
}
