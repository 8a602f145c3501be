// Copyright 2025 NamiNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package augment

import (
	"github.com/naminet-ml/naminet/internal/augment"
)

// DefaultSize is the image side length used when none is given.
const DefaultSize = augment.DefaultSize

// Engine applies transforms to square images of a fixed size.
type Engine = augment.Engine

// Policy holds the probabilities and ranges used by Engine.ApplyRandom.
type Policy = augment.Policy

// DisplacementField is a per-pixel offset map for elastic distortion.
type DisplacementField = augment.DisplacementField

// NewEngine creates an engine for size x size images.
func NewEngine(size int, policy Policy) *Engine {
	return augment.NewEngine(size, policy)
}

// DefaultPolicy returns the standard training augmentation policy.
func DefaultPolicy() Policy {
	return augment.DefaultPolicy()
}
