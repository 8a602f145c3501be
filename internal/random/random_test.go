package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsReproducible(t *testing.T) {
	a := New(7)
	b := New(7)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Float64(), b.Float64())
	}
}

func TestUniformRange(t *testing.T) {
	src := New(1)
	for i := 0; i < 1000; i++ {
		v := Uniform(src, -15, 15)
		assert.GreaterOrEqual(t, v, -15.0)
		assert.Less(t, v, 15.0)
	}
}

func TestBernoulliExtremes(t *testing.T) {
	src := New(2)
	for i := 0; i < 100; i++ {
		assert.False(t, Bernoulli(src, 0))
		assert.True(t, Bernoulli(src, 1))
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	src := New(3)
	xs := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	Shuffle(src, len(xs), func(i, j int) { xs[i], xs[j] = xs[j], xs[i] })

	seen := make(map[int]bool)
	for _, x := range xs {
		seen[x] = true
	}
	assert.Len(t, seen, 10)
}
