package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naminet-ml/naminet/internal/optim"
	"github.com/naminet-ml/naminet/internal/random"
)

func trainedNetwork(t *testing.T) *Network {
	t.Helper()
	rng := random.New(21)
	net, err := NewNetwork([]int{6, 5, 3}, []float64{0.1, 0}, rng)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		net.Train(randomInput(6, uint64(i)), OneHot(i%3, 3), 0.01, rng)
	}
	return net
}

func TestStateIsDeepCopy(t *testing.T) {
	net := trainedNetwork(t)
	state := net.State()
	saved := append([]float64(nil), state.Layers[0].Weights...)

	net.Train(randomInput(6, 99), OneHot(0, 3), 0.1, random.New(1))

	assert.Equal(t, saved, state.Layers[0].Weights)
	assert.Equal(t, 5, state.Layers[0].Step)
	assert.Equal(t, 6, net.Layers()[0].Step())
}

func TestStateContents(t *testing.T) {
	net := trainedNetwork(t)
	state := net.State()

	assert.Equal(t, []int{6, 5, 3}, state.Sizes)
	assert.Equal(t, []float64{0.1, 0}, state.DropoutRates)
	assert.Equal(t, "Adam", state.Optimizer)
	assert.Equal(t, optim.DefaultAdamConfig().Beta1, state.OptimizerConfig["beta1"])
	require.Len(t, state.Layers, 2)

	l := state.Layers[1]
	assert.True(t, l.Output)
	assert.Len(t, l.Weights, 15)
	assert.Len(t, l.MW, 15)
	assert.Len(t, l.VW, 15)
	assert.Len(t, l.Bias, 3)
	assert.Len(t, l.MB, 3)
	assert.Len(t, l.VB, 3)
}

func TestNewNetworkFromStateRestoresPredictions(t *testing.T) {
	net := trainedNetwork(t)
	restored, err := NewNetworkFromState(net.State())
	require.NoError(t, err)

	input := randomInput(6, 42)
	assert.Equal(t, net.Predict(input), restored.Predict(input))
}

// TestRestoredNetworkTrainsIdentically checks that optimizer moments and
// step counters survive the snapshot.
func TestRestoredNetworkTrainsIdentically(t *testing.T) {
	net := trainedNetwork(t)
	restored, err := NewNetworkFromState(net.State())
	require.NoError(t, err)

	a, b := random.New(5), random.New(5)
	for i := 0; i < 3; i++ {
		input := randomInput(6, uint64(100+i))
		net.Train(input, OneHot(1, 3), 0.01, a)
		restored.Train(input, OneHot(1, 3), 0.01, b)
	}

	assert.Equal(t, net.State(), restored.State())
}

func TestLoadStateMismatch(t *testing.T) {
	net := trainedNetwork(t)
	other, err := NewNetwork([]int{6, 4, 3}, []float64{0, 0}, random.New(1))
	require.NoError(t, err)

	err = other.LoadState(net.State())
	require.ErrorIs(t, err, ErrStateMismatch)

	state := net.State()
	state.Layers[0].Bias = state.Layers[0].Bias[:2]
	_, err = NewNetworkFromState(state)
	require.ErrorIs(t, err, ErrStateMismatch)

	state = net.State()
	state.Layers = state.Layers[:1]
	require.ErrorIs(t, net.LoadState(state), ErrStateMismatch)
}

func TestLoadStateOverwrites(t *testing.T) {
	net := trainedNetwork(t)
	fresh, err := NewNetwork([]int{6, 5, 3}, []float64{0.1, 0}, random.New(77))
	require.NoError(t, err)

	require.NoError(t, fresh.LoadState(net.State()))
	assert.Equal(t, net.State(), fresh.State())
}

func TestNewNetworkFromStateRestoresOptimizer(t *testing.T) {
	net, err := NewNetwork([]int{3, 2}, []float64{0}, random.New(4),
		WithOptimizer(optim.NewSGD(optim.SGDConfig{Momentum: 0.5})))
	require.NoError(t, err)

	restored, err := NewNetworkFromState(net.State())
	require.NoError(t, err)
	assert.Equal(t, "SGD", restored.Optimizer().Name())
	assert.Equal(t, 0.5, restored.Optimizer().Hyperparameters()["momentum"])

	state := net.State()
	state.Optimizer = "Lion"
	_, err = NewNetworkFromState(state)
	require.ErrorIs(t, err, ErrStateMismatch)
	require.ErrorIs(t, err, optim.ErrUnknownOptimizer)
}

func TestNewNetworkFromStateRejectsOversizedLayers(t *testing.T) {
	tests := []struct {
		name  string
		sizes []int
	}{
		{"huge input", []int{math.MaxInt / 2, 1}},
		{"huge product", []int{1 << 20, 1 << 20, 1 << 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layers := make([]LayerState, len(tt.sizes)-1)
			for i := range layers {
				layers[i] = LayerState{InputSize: tt.sizes[i], OutputSize: tt.sizes[i+1], Output: i == len(layers)-1}
			}
			state := &NetworkState{
				Sizes:        tt.sizes,
				DropoutRates: make([]float64, len(layers)),
				Layers:       layers,
			}

			var err error
			require.NotPanics(t, func() { _, err = NewNetworkFromState(state) })
			require.ErrorIs(t, err, ErrStateMismatch)
		})
	}
}
