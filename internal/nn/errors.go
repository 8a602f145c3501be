package nn

import "errors"

// Construction errors.
var (
	ErrNoLayers         = errors.New("network needs at least an input and an output size")
	ErrInvalidLayerSize = errors.New("layer size must be positive")
	ErrDropoutLength    = errors.New("dropout rates must have one entry per layer")
	ErrInvalidDropout   = errors.New("dropout rate must be in [0, 1)")
	ErrStateMismatch    = errors.New("state does not match network architecture")
)
