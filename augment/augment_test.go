// Copyright 2025 NamiNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package augment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/naminet-ml/naminet/augment"
	"github.com/naminet-ml/naminet/random"
)

func TestPublicEngine(t *testing.T) {
	engine := augment.NewEngine(0, augment.DefaultPolicy())
	assert.Equal(t, augment.DefaultSize, engine.Size())

	img := make([]float64, augment.DefaultSize*augment.DefaultSize)
	img[14*28+14] = 1

	out := engine.ApplyRandom(img, random.New(9))
	assert.Len(t, out, len(img))
	assert.Equal(t, 1.0, img[14*28+14], "input must not be modified")
}
