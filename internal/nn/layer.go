package nn

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/naminet-ml/naminet/internal/optim"
	"github.com/naminet-ml/naminet/internal/random"
)

// Dense implements a fully connected layer with its own optimizer state.
//
// Performs the transformation: a = f(W·x + b)
// where:
//   - x is the input vector with length inputSize
//   - W is the weight matrix with shape [outputSize, inputSize], row-major
//   - b is the bias vector with length outputSize
//   - f is softmax for the output layer and LeakyReLU otherwise
//
// The layer owns the Adam moment buffers for W and b and a step counter that
// is incremented exactly once per Backward call. It holds no per-sample
// state: Forward returns a ForwardResult which the caller hands back to
// Backward, so several forward passes may be in flight at once.
type Dense struct {
	inputSize  int
	outputSize int
	output     bool
	weights    *mat.Dense // [outputSize, inputSize]
	bias       []float64  // [outputSize]
	mW, vW     []float64  // Adam moments for weights, row-major like weights
	mB, vB     []float64  // Adam moments for bias
	step       int
	optimizer  optim.Optimizer
}

// ForwardResult carries the intermediate values of one Forward call that the
// matching Backward call needs.
type ForwardResult struct {
	Input         []float64 // x, as passed to Forward
	PreActivation []float64 // z = W·x + b
	Activation    []float64 // f(z) after dropout
	Keep          []bool    // Dropout keep mask, nil when dropout was disabled
}

// NewDense creates a new dense layer.
//
// Hidden layers use He normal initialization, the output layer Xavier
// normal. Biases start at zero.
func NewDense(inputSize, outputSize int, output bool, opt optim.Optimizer, rng random.Source) *Dense {
	w := make([]float64, outputSize*inputSize)
	if output {
		XavierNormal(w, inputSize, rng)
	} else {
		HeNormal(w, inputSize, rng)
	}

	return &Dense{
		inputSize:  inputSize,
		outputSize: outputSize,
		output:     output,
		weights:    mat.NewDense(outputSize, inputSize, w),
		bias:       make([]float64, outputSize),
		mW:         make([]float64, len(w)),
		vW:         make([]float64, len(w)),
		mB:         make([]float64, outputSize),
		vB:         make([]float64, outputSize),
		optimizer:  opt,
	}
}

// Forward computes the layer activation for one sample.
//
// With dropoutRate > 0 every unit is dropped independently with that
// probability; survivors are divided by (1 - dropoutRate). rng is only drawn
// from when dropoutRate > 0 and may be nil otherwise.
//
// input must have length InputSize. It is retained by the result, not copied.
func (l *Dense) Forward(input []float64, dropoutRate float64, rng random.Source) *ForwardResult {
	z := make([]float64, l.outputSize)
	zv := mat.NewVecDense(l.outputSize, z)
	zv.MulVec(l.weights, mat.NewVecDense(l.inputSize, input))
	floats.Add(z, l.bias)

	var a []float64
	if l.output {
		a = Softmax(z)
	} else {
		a = make([]float64, l.outputSize)
		for i, v := range z {
			a[i] = LeakyReLU(v)
		}
	}

	var keep []bool
	if dropoutRate > 0 {
		keep = make([]bool, l.outputSize)
		for i := range a {
			if rng.Float64() < dropoutRate {
				a[i] = 0
				continue
			}
			a[i] /= 1 - dropoutRate
			keep[i] = true
		}
	}

	return &ForwardResult{
		Input:         input,
		PreActivation: z,
		Activation:    a,
		Keep:          keep,
	}
}

// Backward propagates dA through the layer and updates its parameters.
//
// res must be the result of the Forward call for the same sample. For the
// output layer dA is taken as the gradient with respect to z (softmax plus
// cross-entropy), otherwise it is multiplied by LeakyReLU'(z). Units dropped
// in the forward pass receive no gradient.
//
// The returned gradient for the previous layer is computed from the weights
// as they were before this call's update.
func (l *Dense) Backward(res *ForwardResult, dA []float64, lr float64, rng random.Source) []float64 {
	dZ := make([]float64, l.outputSize)
	if l.output {
		copy(dZ, dA)
	} else {
		for i := range dZ {
			dZ[i] = dA[i] * LeakyReLUDerivative(res.PreActivation[i])
		}
	}
	if res.Keep != nil {
		for i, kept := range res.Keep {
			if !kept {
				dZ[i] = 0
			}
		}
	}

	dZv := mat.NewVecDense(l.outputSize, dZ)

	// dA_prev = Wᵀ·dZ, before W changes.
	dAPrev := make([]float64, l.inputSize)
	mat.NewVecDense(l.inputSize, dAPrev).MulVec(l.weights.T(), dZv)

	// dW = dZ ⊗ x, dB = dZ
	dW := mat.NewDense(l.outputSize, l.inputSize, nil)
	dW.Outer(1, dZv, mat.NewVecDense(l.inputSize, res.Input))

	l.step++
	l.optimizer.Step(optim.Param{
		Values: l.weights.RawMatrix().Data,
		Grads:  dW.RawMatrix().Data,
		M:      l.mW,
		V:      l.vW,
		Decay:  true,
	}, l.step, lr, rng)
	l.optimizer.Step(optim.Param{
		Values: l.bias,
		Grads:  dZ,
		M:      l.mB,
		V:      l.vB,
	}, l.step, lr, rng)

	return dAPrev
}

// Gradients computes dL/dW and dL/db for res and dA without touching any
// layer state. Used for gradient checking and diagnostics.
func (l *Dense) Gradients(res *ForwardResult, dA []float64) (dW *mat.Dense, dB []float64) {
	dB = make([]float64, l.outputSize)
	for i := range dB {
		if l.output {
			dB[i] = dA[i]
		} else {
			dB[i] = dA[i] * LeakyReLUDerivative(res.PreActivation[i])
		}
		if res.Keep != nil && !res.Keep[i] {
			dB[i] = 0
		}
	}

	dW = mat.NewDense(l.outputSize, l.inputSize, nil)
	dW.Outer(1, mat.NewVecDense(l.outputSize, dB), mat.NewVecDense(l.inputSize, res.Input))
	return dW, dB
}

// Weights returns the weight matrix. Mutating it mutates the layer.
func (l *Dense) Weights() *mat.Dense {
	return l.weights
}

// Bias returns the bias vector. Mutating it mutates the layer.
func (l *Dense) Bias() []float64 {
	return l.bias
}

// InputSize returns the number of inputs.
func (l *Dense) InputSize() int {
	return l.inputSize
}

// OutputSize returns the number of units.
func (l *Dense) OutputSize() int {
	return l.outputSize
}

// IsOutput reports whether this is the softmax output layer.
func (l *Dense) IsOutput() bool {
	return l.output
}

// Step returns the number of Backward calls applied so far.
func (l *Dense) Step() int {
	return l.step
}
