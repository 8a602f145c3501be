package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/naminet-ml/naminet/internal/augment"
	"github.com/naminet-ml/naminet/internal/dataset"
	"github.com/naminet-ml/naminet/internal/nn"
	"github.com/naminet-ml/naminet/internal/parallel"
	"github.com/naminet-ml/naminet/internal/predict"
	"github.com/naminet-ml/naminet/internal/random"
	"github.com/naminet-ml/naminet/internal/serialization"
	"github.com/naminet-ml/naminet/internal/train"
)

func loadNetwork(path string) (*nn.Network, *serialization.Header, error) {
	state, header, err := serialization.LoadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load model: %w", err)
	}
	net, err := nn.NewNetworkFromState(state)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid model: %w", err)
	}
	return net, header, nil
}

func runEval(args []string) error {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	var data dataFlags
	data.register(fs, true)
	model := fs.String("model", "naminet_model.nami", "Snapshot to evaluate")
	workers := fs.Int("workers", 0, "Worker goroutines (0 = one per physical core)")
	confusion := fs.Bool("confusion", false, "Print the confusion matrix")
	_ = fs.Parse(args)

	net, header, err := loadNetwork(*model)
	if err != nil {
		return err
	}
	ds, err := data.load(random.New(1))
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	cfg := parallel.DefaultConfig()
	if *workers > 0 {
		cfg.NumWorkers = *workers
		cfg.Enabled = *workers > 1
	}

	engine := augment.NewEngine(dataset.Width, augment.DefaultPolicy())
	res, err := train.Evaluate(net, ds, engine, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Model: %s (run %s, %s)\n", *model, header.RunID, formatSizes(net.Sizes()))
	fmt.Printf("Samples: %d\n", res.Total)
	fmt.Printf("Loss: %.4f\n", res.Loss)
	fmt.Printf("Accuracy: %.2f%% (%d/%d)\n", res.Accuracy, res.Correct, res.Total)
	if *confusion {
		fmt.Print(formatConfusion(res.Confusion))
	}
	return nil
}

func formatConfusion(m [][]int) string {
	var sb strings.Builder
	sb.WriteString("\nlabel\\pred")
	for j := range m {
		fmt.Fprintf(&sb, "%6d", j)
	}
	sb.WriteByte('\n')
	for i, row := range m {
		fmt.Fprintf(&sb, "%10d", i)
		for _, c := range row {
			fmt.Fprintf(&sb, "%6d", c)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func runPredict(args []string) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	var data dataFlags
	data.register(fs, true)
	model := fs.String("model", "naminet_model.nami", "Snapshot to use")
	index := fs.Int("index", 0, "Index of the sample to classify")
	threshold := fs.Float64("threshold", predict.NoIdeaThreshold, "Minimum confidence to trust the answer")
	_ = fs.Parse(args)

	net, _, err := loadNetwork(*model)
	if err != nil {
		return err
	}
	ds, err := data.load(random.New(1))
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	if *index < 0 || *index >= ds.Len() {
		return fmt.Errorf("index %d out of range [0, %d)", *index, ds.Len())
	}
	sample := ds.Samples[*index]

	engine := augment.NewEngine(dataset.Width, augment.DefaultPolicy())
	p, err := predict.NewPredictor(net, engine).Predict(sample.Pixels)
	if err != nil {
		return err
	}

	fmt.Print(predict.Render(engine.Smooth(sample.Pixels), dataset.Width))
	fmt.Println("\nProbabilities:")
	for i, v := range p.Probabilities {
		fmt.Printf("%d: %.4f  ", i, v)
	}
	fmt.Println()

	fmt.Printf("\n%s (%.2f%% confidence)\n", p.Verdict(), 100*p.Confidence)
	if !p.Confident(*threshold) {
		fmt.Printf("Confidence below %.2f, answer not trusted.\n", *threshold)
	}
	fmt.Printf("Label: %d\n", sample.Label)
	return nil
}
