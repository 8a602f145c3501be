package optim

import (
	"errors"
	"fmt"
)

// ErrUnknownOptimizer is returned by FromConfig for an unrecognized name.
var ErrUnknownOptimizer = errors.New("unknown optimizer")

// FromConfig rebuilds an optimizer from the name and hyperparameters it
// reported. Missing hyperparameters fall back to the constructor defaults.
func FromConfig(name string, hp map[string]float64) (Optimizer, error) {
	switch name {
	case "Adam":
		return NewAdam(AdamConfig{
			Beta1:       hp["beta1"],
			Beta2:       hp["beta2"],
			Eps:         hp["eps"],
			WeightDecay: hp["weight_decay"],
			ClipValue:   hp["clip_value"],
			Noise:       hp["noise"],
		}), nil
	case "SGD":
		return NewSGD(SGDConfig{
			Momentum:    hp["momentum"],
			WeightDecay: hp["weight_decay"],
			ClipValue:   hp["clip_value"],
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOptimizer, name)
	}
}
