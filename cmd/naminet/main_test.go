package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naminet-ml/naminet/internal/optim"
	"github.com/naminet-ml/naminet/internal/random"
	"github.com/naminet-ml/naminet/internal/serialization"
)

func TestParseLists(t *testing.T) {
	ints, err := parseInts("128, 64")
	require.NoError(t, err)
	assert.Equal(t, []int{128, 64}, ints)

	ints, err = parseInts("")
	require.NoError(t, err)
	assert.Empty(t, ints)

	_, err = parseInts("12,x")
	assert.Error(t, err)

	rates, err := parseFloats("0.1,0.05,0")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.05, 0}, rates)
}

func TestDetectFormat(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "mnist_train.csv")
	require.NoError(t, os.WriteFile(file, []byte("label\n"), 0o600))

	assert.Equal(t, "synthetic", detectFormat(""))
	assert.Equal(t, "idx", detectFormat(dir))
	assert.Equal(t, "csv", detectFormat(file))
}

func TestBuildNetwork(t *testing.T) {
	net, err := buildNetwork("", "32,16", "0.1,0.05,0", nil, random.New(1))
	require.NoError(t, err)
	assert.Equal(t, []int{784, 32, 16, 10}, net.Sizes())
	assert.Equal(t, "784-32-16-10", formatSizes(net.Sizes()))

	_, err = buildNetwork("", "32", "0.1,0.05,0", nil, random.New(1))
	assert.Error(t, err, "dropout count must match layer count")

	path := filepath.Join(t.TempDir(), "model.pb")
	_, err = serialization.SaveFile(path, net.State(), nil)
	require.NoError(t, err)

	resumed, err := buildNetwork(path, "", "", nil, random.New(2))
	require.NoError(t, err)
	assert.Equal(t, net.State(), resumed.State())
}

func TestNewOptimizer(t *testing.T) {
	opt, err := newOptimizer("", 0.9)
	require.NoError(t, err)
	assert.Nil(t, opt)

	opt, err = newOptimizer("Adam", 0.9)
	require.NoError(t, err)
	assert.Equal(t, "Adam", opt.Name())
	assert.Equal(t, 5e-5, opt.Hyperparameters()["weight_decay"])

	opt, err = newOptimizer("sgd", 0.8)
	require.NoError(t, err)
	assert.Equal(t, "SGD", opt.Name())
	assert.Equal(t, 0.8, opt.Hyperparameters()["momentum"])

	_, err = newOptimizer("lion", 0)
	require.ErrorIs(t, err, optim.ErrUnknownOptimizer)
}

func TestBuildNetworkWithSGD(t *testing.T) {
	opt, err := newOptimizer("sgd", 0.5)
	require.NoError(t, err)

	net, err := buildNetwork("", "8", "0,0", opt, random.New(3))
	require.NoError(t, err)
	assert.Equal(t, "SGD", net.Optimizer().Name())

	path := filepath.Join(t.TempDir(), "model.nami")
	_, err = serialization.SaveFile(path, net.State(), nil)
	require.NoError(t, err)

	resumed, err := buildNetwork(path, "", "", nil, random.New(4))
	require.NoError(t, err)
	assert.Equal(t, "SGD", resumed.Optimizer().Name())
	assert.Equal(t, 0.5, resumed.Optimizer().Hyperparameters()["momentum"])

	switched, err := buildNetwork(path, "", "", optim.NewAdam(optim.DefaultAdamConfig()), random.New(4))
	require.NoError(t, err)
	assert.Equal(t, "Adam", switched.Optimizer().Name())
}

func TestSyntheticDataFlags(t *testing.T) {
	d := dataFlags{format: "synthetic", samples: 25}
	ds, err := d.load(random.New(3))
	require.NoError(t, err)
	assert.Equal(t, 25, ds.Len())
	assert.Equal(t, "synthetic", d.describe())

	d.format = "parquet"
	_, err = d.load(random.New(3))
	assert.Error(t, err)
}

func TestFormatConfusion(t *testing.T) {
	got := formatConfusion([][]int{{3, 1}, {0, 4}})
	want := "\nlabel\\pred     0     1\n" +
		"         0     3     1\n" +
		"         1     0     4\n"
	assert.Equal(t, want, got)
}
