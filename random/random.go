// Copyright 2025 NamiNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package random exposes the randomness source threaded through every
// stochastic NamiNet operation.
package random

import (
	"math/rand/v2"

	"github.com/naminet-ml/naminet/internal/random"
)

// Source is the set of draws NamiNet needs. *rand.Rand satisfies it.
type Source = random.Source

// New returns a seeded generator. The same seed always gives the same
// training run.
func New(seed uint64) *rand.Rand {
	return random.New(seed)
}
