package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/naminet-ml/naminet/internal/augment"
	"github.com/naminet-ml/naminet/internal/dataset"
	"github.com/naminet-ml/naminet/internal/nn"
	"github.com/naminet-ml/naminet/internal/optim"
	"github.com/naminet-ml/naminet/internal/parallel"
	"github.com/naminet-ml/naminet/internal/random"
	"github.com/naminet-ml/naminet/internal/serialization"
	"github.com/naminet-ml/naminet/internal/train"
)

//nolint:funlen // flag wiring
func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	var data dataFlags
	data.register(fs, false)

	def := train.DefaultConfig()
	epochs := fs.Int("epochs", def.Epochs, "Number of training epochs")
	lr := fs.Float64("lr", def.InitialLR, "Initial learning rate")
	decay := fs.Float64("decay", def.DecayRate, "Per-epoch learning rate decay")
	minLR := fs.Float64("min-lr", def.MinLR, "Learning rate floor")
	hidden := fs.String("hidden", "128,64", "Comma-separated hidden layer sizes")
	dropout := fs.String("dropout", "0.1,0.05,0", "Comma-separated dropout rate per layer")
	optName := fs.String("optimizer", "", "adam or sgd (default adam, or the snapshot's optimizer with -resume)")
	momentum := fs.Float64("momentum", 0.9, "Momentum for -optimizer sgd")
	augmentOn := fs.Bool("augment", def.Augment, "Apply random augmentation")
	cooldown := fs.Duration("cooldown", 0, "Pause between epochs")
	longCooldown := fs.Duration("long-cooldown", 0, "Longer pause every -long-cooldown-every epochs")
	longEvery := fs.Int("long-cooldown-every", 10, "Epoch interval for the long pause")
	valRatio := fs.Float64("val", 0, "Fraction of samples held out for validation")
	out := fs.String("out", "naminet_model.nami", "Snapshot path (.nami, or .pb for protobuf)")
	logPath := fs.String("log", "naminet_training_log.txt", "Training log path (empty to skip)")
	resume := fs.String("resume", "", "Continue training from this snapshot")
	seed := fs.Uint64("seed", 0, "Random seed (0 = time based)")
	_ = fs.Parse(args)

	rng := random.New(seedOrNow(*seed))

	ds, err := data.load(rng)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	trainSet, valSet := ds, (*dataset.Dataset)(nil)
	if *valRatio > 0 {
		trainSet, valSet = ds.Split(*valRatio)
	}
	fmt.Printf("Loaded: %d samples.\n\n", trainSet.Len())

	opt, err := newOptimizer(*optName, *momentum)
	if err != nil {
		return err
	}
	net, err := buildNetwork(*resume, *hidden, *dropout, opt, rng)
	if err != nil {
		return err
	}
	fmt.Printf("Network: %s, optimizer %s\n\n", formatSizes(net.Sizes()), net.Optimizer().Name())

	engine := augment.NewEngine(dataset.Width, augment.DefaultPolicy())
	cfg := train.Config{
		Epochs:            *epochs,
		InitialLR:         *lr,
		DecayRate:         *decay,
		MinLR:             *minLR,
		Augment:           *augmentOn,
		Cooldown:          *cooldown,
		LongCooldown:      *longCooldown,
		LongCooldownEvery: *longEvery,
		Progress:          func(s train.EpochStats) { fmt.Println(s) },
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("~ Training Session ~")
	start := time.Now()
	stats, err := train.NewTrainer(net, engine, cfg, rng).Run(ctx, trainSet)
	elapsed := time.Since(start)
	switch {
	case errors.Is(err, context.Canceled):
		log.Printf("interrupted after %d epochs, saving progress", len(stats))
	case err != nil:
		return fmt.Errorf("training failed: %w", err)
	}
	fmt.Printf("\nTraining complete in %.2f seconds. (%d samples)\n", elapsed.Seconds(), trainSet.Len())

	meta := map[string]string{
		"dataset": data.describe(),
		"epochs":  strconv.Itoa(len(stats)),
		"samples": strconv.Itoa(trainSet.Len()),
		"seed":    strconv.FormatUint(*seed, 10),
	}
	if n := len(stats); n > 0 {
		meta["final_loss"] = strconv.FormatFloat(stats[n-1].AvgLoss, 'f', 6, 64)
		meta["final_accuracy"] = strconv.FormatFloat(stats[n-1].Accuracy, 'f', 2, 64)
	}
	header, err := serialization.SaveFile(*out, net.State(), meta)
	if err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	fmt.Printf("Model saved to %s (run %s)\n", *out, header.RunID)

	if *logPath != "" {
		if err := writeLogFile(*logPath, stats, elapsed, trainSet.Len()); err != nil {
			return err
		}
		fmt.Printf("(Training session logged into %s)\n", *logPath)
	}

	if valSet != nil && valSet.Len() > 0 {
		res, err := train.Evaluate(net, valSet, engine, parallel.DefaultConfig())
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Printf("\nValidation: loss %.4f, accuracy %.2f%% (%d/%d)\n", res.Loss, res.Accuracy, res.Correct, res.Total)
	}
	return nil
}

// newOptimizer maps the -optimizer flag to an optimizer. An empty name
// returns nil so the network keeps its default or restored optimizer.
func newOptimizer(name string, momentum float64) (optim.Optimizer, error) {
	switch strings.ToLower(name) {
	case "":
		return nil, nil
	case "adam":
		return optim.NewAdam(optim.DefaultAdamConfig()), nil
	case "sgd":
		return optim.FromConfig("SGD", map[string]float64{"momentum": momentum})
	default:
		return nil, fmt.Errorf("invalid -optimizer: %w", optim.ErrUnknownOptimizer)
	}
}

// buildNetwork restores a snapshot when resume is set, otherwise creates a
// fresh 784-...-10 network with the given hidden sizes. A non-nil opt
// replaces the network's optimizer in both cases.
func buildNetwork(resume, hidden, dropout string, opt optim.Optimizer, rng random.Source) (*nn.Network, error) {
	var opts []nn.Option
	if opt != nil {
		opts = append(opts, nn.WithOptimizer(opt))
	}

	if resume != "" {
		state, header, err := serialization.LoadFile(resume)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		log.Printf("resuming run %s", header.RunID)
		return nn.NewNetworkFromState(state, opts...)
	}

	hiddenSizes, err := parseInts(hidden)
	if err != nil {
		return nil, fmt.Errorf("invalid -hidden: %w", err)
	}
	rates, err := parseFloats(dropout)
	if err != nil {
		return nil, fmt.Errorf("invalid -dropout: %w", err)
	}

	sizes := append([]int{dataset.NumPixels}, hiddenSizes...)
	sizes = append(sizes, dataset.NumClasses)
	return nn.NewNetwork(sizes, rates, rng, opts...)
}

func writeLogFile(path string, stats []train.EpochStats, elapsed time.Duration, samples int) error {
	//nolint:gosec // G304: File path comes from user input
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create log: %w", err)
	}
	if err := train.WriteLog(f, stats, elapsed, samples); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write log: %w", err)
	}
	return f.Close()
}

func seedOrNow(seed uint64) uint64 {
	if seed != 0 {
		return seed
	}
	return uint64(time.Now().UnixNano()) //nolint:gosec // G115: any bits make a seed
}

func parseInts(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func formatSizes(sizes []int) string {
	parts := make([]string, len(sizes))
	for i, s := range sizes {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, "-")
}
