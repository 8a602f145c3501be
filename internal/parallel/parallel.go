// Package parallel provides parallel execution utilities for NamiNet.
//
// It is used for read-only work over many samples, such as evaluating a
// trained network. Training itself is strictly sequential.
package parallel

import (
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on the physical core count.
// Hyper-threads add little to the float-heavy inner loops, so logical CPUs
// are only used when the core count is unknown.
func DefaultConfig() Config {
	n := cpuid.CPU.PhysicalCores
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64,
	}
}

// Sequential returns a config that runs everything on the calling goroutine.
func Sequential() Config {
	return Config{NumWorkers: 1}
}

// Workers returns the number of chunks For will split n items into.
func (c Config) Workers(n int) int {
	if !c.Enabled || n < c.MinChunkSize || c.NumWorkers <= 1 {
		return 1
	}
	chunk := c.chunkSize(n)
	return (n + chunk - 1) / chunk
}

func (c Config) chunkSize(n int) int {
	return max((n+c.NumWorkers-1)/c.NumWorkers, c.MinChunkSize, 1)
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	ForWorker(n, func(_, i int) { f(i) }, cfg)
}

// ForWorker is For that also passes the index of the chunk running i, in
// [0, cfg.Workers(n)). Items of one chunk run sequentially, so per-worker
// accumulators need no locking.
func ForWorker(n int, f func(worker, i int), cfg Config) {
	if cfg.Workers(n) == 1 {
		for i := 0; i < n; i++ {
			f(0, i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := cfg.chunkSize(n)

	for worker, start := 0, 0; start < n; worker, start = worker+1, start+chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(w, s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(w, i)
			}
		}(worker, start, end)
	}
	wg.Wait()
}
