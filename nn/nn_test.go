// Copyright 2025 NamiNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naminet-ml/naminet/nn"
	"github.com/naminet-ml/naminet/optim"
	"github.com/naminet-ml/naminet/random"
)

func TestPublicNetwork(t *testing.T) {
	rng := random.New(1)
	net, err := nn.NewNetwork([]int{4, 3, 2}, []float64{0.1, 0}, rng,
		nn.WithOptimizer(optim.NewAdam(optim.DefaultAdamConfig())))
	require.NoError(t, err)

	input := []float64{0.2, 0.4, 0.6, 0.8}
	net.Train(input, nn.OneHot(1, 2), 0.01, rng)

	restored, err := nn.NewNetworkFromState(net.State())
	require.NoError(t, err)
	assert.Equal(t, net.Predict(input), restored.Predict(input))
}

func TestPublicErrors(t *testing.T) {
	_, err := nn.NewNetwork([]int{4}, nil, random.New(1))
	assert.ErrorIs(t, err, nn.ErrNoLayers)
}
