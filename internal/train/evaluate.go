package train

import (
	"fmt"
	"io"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/naminet-ml/naminet/internal/augment"
	"github.com/naminet-ml/naminet/internal/dataset"
	"github.com/naminet-ml/naminet/internal/nn"
	"github.com/naminet-ml/naminet/internal/parallel"
)

// Result holds evaluation metrics over a dataset.
type Result struct {
	Loss      float64 // Mean cross-entropy
	Accuracy  float64 // Percentage correct, in [0, 100]
	Correct   int
	Total     int
	Confusion [][]int // Confusion[label][predicted]
}

// Evaluate runs the network in inference mode over ds. Inputs are smoothed
// with engine first unless engine is nil.
//
// Forward passes are spread over cfg's workers. Each worker accumulates into
// its own partial result, merged at the end.
func Evaluate(net *nn.Network, ds *dataset.Dataset, engine *augment.Engine, cfg parallel.Config) (Result, error) {
	if err := checkShape(net, engine, ds); err != nil {
		return Result{}, err
	}

	n := ds.Len()
	parts := make([]Result, cfg.Workers(n))
	for i := range parts {
		parts[i].Confusion = newConfusion(ds.Classes)
	}

	parallel.ForWorker(n, func(w, i int) {
		s := ds.Samples[i]
		input := s.Pixels
		if engine != nil {
			input = engine.Smooth(input)
		}
		output := net.Predict(input)
		predicted := floats.MaxIdx(output)

		p := &parts[w]
		p.Loss += nn.CrossEntropyLoss(output, nn.OneHot(s.Label, ds.Classes))
		p.Confusion[s.Label][predicted]++
		if predicted == s.Label {
			p.Correct++
		}
	}, cfg)

	res := Result{Total: n, Confusion: newConfusion(ds.Classes)}
	for _, p := range parts {
		res.Loss += p.Loss
		res.Correct += p.Correct
		for i, row := range p.Confusion {
			for j, c := range row {
				res.Confusion[i][j] += c
			}
		}
	}
	res.Loss /= float64(n)
	res.Accuracy = 100 * float64(res.Correct) / float64(n)
	return res, nil
}

func newConfusion(classes int) [][]int {
	m := make([][]int, classes)
	for i := range m {
		m[i] = make([]int, classes)
	}
	return m
}

// WriteLog writes the training log: per-epoch losses and accuracies in rows
// of ten, then the total time and sample count.
func WriteLog(w io.Writer, stats []EpochStats, elapsed time.Duration, samples int) error {
	ew := &errWriter{w: w}

	ew.printf("Training log:\n")
	ew.printf("\n~ Loss")
	writeRows(ew, stats, "%.6f", func(s EpochStats) float64 { return s.AvgLoss })
	ew.printf("\n~ Accuracy (%%)")
	writeRows(ew, stats, "%.2f", func(s EpochStats) float64 { return s.Accuracy })
	ew.printf("\n\n- Finished in %.2f seconds. (%d samples)\n", elapsed.Seconds(), samples)

	return ew.err
}

func writeRows(ew *errWriter, stats []EpochStats, format string, value func(EpochStats) float64) {
	for i, s := range stats {
		if i%10 == 0 {
			ew.printf("\n")
		}
		ew.printf(format, value(s))
		if i != len(stats)-1 {
			ew.printf(", ")
		}
	}
	ew.printf("\n")
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
