package train

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/naminet-ml/naminet/internal/augment"
	"github.com/naminet-ml/naminet/internal/dataset"
	"github.com/naminet-ml/naminet/internal/nn"
	"github.com/naminet-ml/naminet/internal/random"
)

// ErrShapeMismatch is returned when a dataset does not fit the network.
var ErrShapeMismatch = errors.New("dataset does not match network shape")

// Config controls a training run.
//
// Zero numeric fields are replaced by the DefaultConfig values in
// NewTrainer. Augment and the cooldowns are used as given.
type Config struct {
	Epochs    int     // Number of passes over the dataset (default: 100)
	InitialLR float64 // Learning rate before decay (default: 0.002)
	DecayRate float64 // Per-epoch multiplicative decay (default: 0.998)
	MinLR     float64 // Learning rate floor (default: 0.0005)
	Augment   bool    // Apply random augmentation before smoothing

	// Pause between epochs. Every LongCooldownEvery-th epoch pauses for
	// LongCooldown instead. No pause follows the last epoch.
	Cooldown          time.Duration
	LongCooldown      time.Duration
	LongCooldownEvery int

	// Progress, if set, is called after every epoch.
	Progress func(EpochStats)
}

// DefaultConfig returns the standard training schedule.
func DefaultConfig() Config {
	return Config{
		Epochs:    100,
		InitialLR: 0.002,
		DecayRate: 0.998,
		MinLR:     0.0005,
		Augment:   true,
	}
}

// EpochStats summarizes one epoch.
type EpochStats struct {
	Epoch    int     // 1-based epoch number
	AvgLoss  float64 // Mean cross-entropy over the epoch
	Accuracy float64 // Percentage of samples classified correctly, in [0, 100]
	LR       float64 // Learning rate used for the epoch
	Delta    float64 // Previous AvgLoss minus this AvgLoss, 0 for the first epoch
}

// String formats the stats as a progress line.
func (s EpochStats) String() string {
	sign := "+"
	if s.Delta < 0 {
		sign = "-"
	}
	return fmt.Sprintf("Epoch %03d - Avg loss: %.6f (%s%.2f%%) - Accuracy: %.2f%%",
		s.Epoch, s.AvgLoss, sign, math.Abs(100*s.Delta), s.Accuracy)
}

// Trainer runs sample-at-a-time training of a network.
type Trainer struct {
	net    *nn.Network
	engine *augment.Engine
	cfg    Config
	rng    random.Source
}

// NewTrainer creates a trainer. engine supplies augmentation and smoothing
// and must match the network's input size.
func NewTrainer(net *nn.Network, engine *augment.Engine, cfg Config, rng random.Source) *Trainer {
	def := DefaultConfig()
	if cfg.Epochs <= 0 {
		cfg.Epochs = def.Epochs
	}
	if cfg.InitialLR == 0 {
		cfg.InitialLR = def.InitialLR
	}
	if cfg.DecayRate == 0 {
		cfg.DecayRate = def.DecayRate
	}
	if cfg.MinLR == 0 {
		cfg.MinLR = def.MinLR
	}

	return &Trainer{net: net, engine: engine, cfg: cfg, rng: rng}
}

// Config returns the effective configuration.
func (t *Trainer) Config() Config {
	return t.cfg
}

// LearningRate returns the rate for a 1-based epoch:
// max(MinLR, InitialLR * DecayRate^epoch).
func (t *Trainer) LearningRate(epoch int) float64 {
	return max(t.cfg.MinLR, t.cfg.InitialLR*math.Pow(t.cfg.DecayRate, float64(epoch)))
}

// Run trains for the configured number of epochs. ds is shuffled in place.
//
// On cancellation Run returns the stats of the completed epochs together
// with the context error.
func (t *Trainer) Run(ctx context.Context, ds *dataset.Dataset) ([]EpochStats, error) {
	if err := checkShape(t.net, t.engine, ds); err != nil {
		return nil, err
	}

	stats := make([]EpochStats, 0, t.cfg.Epochs)
	prevLoss := 0.0
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		s, err := t.RunEpoch(ctx, ds, epoch)
		if err != nil {
			return stats, err
		}
		if epoch > 1 {
			s.Delta = prevLoss - s.AvgLoss
		}
		prevLoss = s.AvgLoss
		stats = append(stats, s)

		if t.cfg.Progress != nil {
			t.cfg.Progress(s)
		}

		if epoch < t.cfg.Epochs {
			if err := wait(ctx, t.cooldown(epoch)); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

// RunEpoch performs one pass over ds at the learning rate of epoch.
// Delta is left at zero.
func (t *Trainer) RunEpoch(ctx context.Context, ds *dataset.Dataset, epoch int) (EpochStats, error) {
	if err := checkShape(t.net, t.engine, ds); err != nil {
		return EpochStats{}, err
	}

	ds.Shuffle(t.rng)
	lr := t.LearningRate(epoch)
	classes := t.net.NumClasses()

	var totalLoss float64
	correct := 0
	for _, sample := range ds.Samples {
		if err := ctx.Err(); err != nil {
			return EpochStats{}, err
		}

		input := sample.Pixels
		if t.cfg.Augment {
			input = t.engine.ApplyRandom(input, t.rng)
		}
		input = t.engine.Smooth(input)

		output, loss := t.net.TrainStep(input, nn.OneHot(sample.Label, classes), lr, t.rng)
		totalLoss += loss
		if floats.MaxIdx(output) == sample.Label {
			correct++
		}
	}

	n := float64(ds.Len())
	return EpochStats{
		Epoch:    epoch,
		AvgLoss:  totalLoss / n,
		Accuracy: 100 * float64(correct) / n,
		LR:       lr,
	}, nil
}

func (t *Trainer) cooldown(epoch int) time.Duration {
	if t.cfg.LongCooldownEvery > 0 && epoch%t.cfg.LongCooldownEvery == 0 {
		return t.cfg.LongCooldown
	}
	return t.cfg.Cooldown
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func checkShape(net *nn.Network, engine *augment.Engine, ds *dataset.Dataset) error {
	if ds.Len() == 0 {
		return dataset.ErrEmptyDataset
	}
	if engine != nil && engine.Size()*engine.Size() != net.InputSize() {
		return fmt.Errorf("%w: %dx%d images, network expects %d inputs",
			ErrShapeMismatch, engine.Size(), engine.Size(), net.InputSize())
	}
	if ds.Classes != net.NumClasses() {
		return fmt.Errorf("%w: %d classes, network has %d outputs", ErrShapeMismatch, ds.Classes, net.NumClasses())
	}
	for i, s := range ds.Samples {
		if len(s.Pixels) != net.InputSize() {
			return fmt.Errorf("%w: sample %d has %d pixels, network expects %d",
				ErrShapeMismatch, i, len(s.Pixels), net.InputSize())
		}
		if s.Label < 0 || s.Label >= ds.Classes {
			return fmt.Errorf("%w: sample %d", dataset.ErrLabelRange, i)
		}
	}
	return nil
}
