package parallel

import (
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Sequential()

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestFor_SmallN(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 8, MinChunkSize: 100}

	results := make([]int, 10)
	For(10, func(i int) {
		results[i] = i * 2
	}, cfg)

	for i, v := range results {
		if v != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, v, i*2)
		}
	}
}

func TestForWorker_PerWorkerAccumulators(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 10}
	n := 1000

	workers := cfg.Workers(n)
	if workers != 4 {
		t.Fatalf("Workers(%d) = %d, want 4", n, workers)
	}

	sums := make([]int, workers)
	ForWorker(n, func(w, i int) {
		sums[w] += i
	}, cfg)

	total := 0
	for _, s := range sums {
		total += s
	}
	if want := n * (n - 1) / 2; total != want {
		t.Errorf("total = %d, want %d", total, want)
	}
}

func TestWorkers(t *testing.T) {
	tests := []struct {
		cfg  Config
		n    int
		want int
	}{
		{Config{Enabled: false, NumWorkers: 8, MinChunkSize: 1}, 100, 1},
		{Config{Enabled: true, NumWorkers: 8, MinChunkSize: 64}, 10, 1},
		{Config{Enabled: true, NumWorkers: 8, MinChunkSize: 64}, 128, 2},
		{Config{Enabled: true, NumWorkers: 2, MinChunkSize: 1}, 5, 2},
	}
	for _, tt := range tests {
		if got := tt.cfg.Workers(tt.n); got != tt.want {
			t.Errorf("%+v.Workers(%d) = %d, want %d", tt.cfg, tt.n, got, tt.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.NumWorkers < 1 {
		t.Errorf("NumWorkers = %d, want >= 1", cfg.NumWorkers)
	}
	if cfg.Enabled != (cfg.NumWorkers > 1) {
		t.Errorf("Enabled = %v with %d workers", cfg.Enabled, cfg.NumWorkers)
	}
}
