// Package train drives NamiNet training and evaluation over a dataset.
//
// A Trainer runs the per-epoch loop: shuffle, decay the learning rate,
// augment and smooth each sample, then update the network one sample at a
// time. Evaluate measures a trained network on held-out data, spreading the
// read-only forward passes over a worker pool.
//
// Example usage:
//
//	cfg := train.DefaultConfig()
//	cfg.Epochs = 10
//	cfg.Progress = func(s train.EpochStats) { fmt.Println(s) }
//
//	trainer := train.NewTrainer(net, augment.NewEngine(28, augment.DefaultPolicy()), cfg, rng)
//	stats, err := trainer.Run(ctx, ds)
package train
