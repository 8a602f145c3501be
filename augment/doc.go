// Copyright 2025 NamiNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package augment provides image transforms for 28x28 digit images.
//
// Every transform returns a new image and leaves its input untouched.
// Randomized transforms draw from an explicit random.Source.
//
// # Basic Usage
//
//	engine := augment.NewEngine(28, augment.DefaultPolicy())
//	augmented := engine.ApplyRandom(pixels, rng)
//	input := engine.Smooth(augmented)
package augment
