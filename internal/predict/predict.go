// Package predict classifies single images with a trained network.
package predict

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/naminet-ml/naminet/internal/augment"
	"github.com/naminet-ml/naminet/internal/nn"
)

// Confidence bands for Verdict.
const (
	NoIdeaThreshold   = 0.3 // Below this the prediction is not trusted at all
	UnsureThreshold   = 0.5
	ProbableThreshold = 0.8
)

// ErrInputSize is returned when an image does not match the network input.
var ErrInputSize = errors.New("input size does not match network")

// Prediction is the network's answer for one image.
type Prediction struct {
	Class         int       // Most probable class
	Confidence    float64   // Probability of Class
	Probabilities []float64 // Full class distribution
}

// Confident reports whether the top probability reaches threshold.
func (p Prediction) Confident(threshold float64) bool {
	return p.Confidence >= threshold
}

// Verdict describes the prediction in words, hedged by confidence.
func (p Prediction) Verdict() string {
	article := "a"
	if p.Class == 8 {
		article = "an"
	}
	switch {
	case p.Confidence < NoIdeaThreshold:
		return "Sorry, no idea..."
	case p.Confidence < UnsureThreshold:
		return fmt.Sprintf("Uhh, is it %s %d?", article, p.Class)
	case p.Confidence < ProbableThreshold:
		return fmt.Sprintf("It's probably %s %d", article, p.Class)
	default:
		return fmt.Sprintf("I think it's %s %d!", article, p.Class)
	}
}

// Predictor smooths raw images and runs them through a network.
// It is safe for concurrent use.
type Predictor struct {
	net    *nn.Network
	engine *augment.Engine
}

// NewPredictor creates a predictor. engine may be nil to skip smoothing.
func NewPredictor(net *nn.Network, engine *augment.Engine) *Predictor {
	return &Predictor{net: net, engine: engine}
}

// Predict classifies pixels, a row-major image with values in [0, 1].
func (p *Predictor) Predict(pixels []float64) (Prediction, error) {
	if len(pixels) != p.net.InputSize() {
		return Prediction{}, fmt.Errorf("%w: got %d values, want %d", ErrInputSize, len(pixels), p.net.InputSize())
	}

	input := pixels
	if p.engine != nil {
		input = p.engine.Smooth(pixels)
	}
	probs := p.net.Predict(input)
	class := floats.MaxIdx(probs)

	return Prediction{
		Class:         class,
		Confidence:    probs[class],
		Probabilities: probs,
	}, nil
}

// Render draws an image as text, one row per line, marking pixels above
// 0.5 with '#'.
func Render(pixels []float64, width int) string {
	var sb strings.Builder
	for i, v := range pixels {
		if i > 0 && i%width == 0 {
			sb.WriteByte('\n')
		}
		if v > 0.5 {
			sb.WriteString("# ")
		} else {
			sb.WriteString(". ")
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}
