// Copyright 2025 NamiNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the dense feed-forward networks NamiNet trains.
//
// # Overview
//
// A Network is a stack of Dense layers. Hidden layers use LeakyReLU
// (slope 0.05) and the last layer uses softmax. Each layer may apply inverted
// dropout during training. Training is one sample at a time: Forward returns
// a Trace of per-layer caches, and Backward consumes it to update every layer
// with the network's optimizer.
//
// # Basic Usage
//
//	import (
//	    "github.com/naminet-ml/naminet/nn"
//	    "github.com/naminet-ml/naminet/random"
//	)
//
//	func main() {
//	    rng := random.New(42)
//	    net, err := nn.NewNetwork([]int{784, 128, 64, 10}, []float64{0.1, 0.05, 0}, rng)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    for _, s := range samples {
//	        net.Train(s.Pixels, nn.OneHot(s.Label, 10), 0.002, rng)
//	    }
//
//	    probs := net.Predict(image)
//	}
//
// # Snapshots
//
// Network.State returns a deep copy of all weights, optimizer moments and
// step counters. NewNetworkFromState rebuilds an equivalent network.
package nn
