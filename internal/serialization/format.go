package serialization

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/naminet-ml/naminet/internal/nn"
)

// Format constants.
const (
	MagicBytes      = "NAMI"
	FormatVersion   = 1    // Fixed header with SHA-256 checksum
	HeaderAlignment = 64   // Align tensor data to 64 bytes
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size (32 bytes)
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
	DTypeFloat64    = "float64"
	bytesPerValue   = 8
	writerVersion   = "0.1.0" // NamiNet version recorded in new headers
)

// Flags for the .nami format.
const (
	FlagHasOptimizer uint32 = 1 << 1 // bit 1: optimizer moments included
	FlagHasMetadata  uint32 = 1 << 2 // bit 2: custom metadata included
)

// Header represents the JSON header in a .nami file.
type Header struct {
	FormatVersion   int                `json:"format_version"`   // Version of the .nami format
	NamiNetVersion  string             `json:"naminet_version"`  // Version of NamiNet that wrote the file
	RunID           string             `json:"run_id"`           // Unique id of this snapshot
	CreatedAt       time.Time          `json:"created_at"`       // When the file was created
	Sizes           []int              `json:"sizes"`            // Layer sizes, input first
	DropoutRates    []float64          `json:"dropout_rates"`    // Per-layer dropout rates
	Steps           []int              `json:"steps"`            // Per-layer optimizer step counters
	Optimizer       string             `json:"optimizer"`        // Optimizer name ("Adam", "SGD")
	OptimizerConfig map[string]float64 `json:"optimizer_config"` // Optimizer hyperparameters
	Tensors         []TensorMeta       `json:"tensors"`          // Tensor metadata
	Metadata        map[string]string  `json:"metadata"`         // Custom metadata
}

// TensorMeta describes a tensor in the .nami file.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "layers.0.weight")
	DType  string `json:"dtype"`  // Always "float64"
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Offset in bytes from the start of tensor data
	Size   int64  `json:"size"`   // Size in bytes
}

// NewHeader builds the header for a new snapshot of state. Tensors are
// filled in by the encoder.
func NewHeader(state *nn.NetworkState, metadata map[string]string) *Header {
	h := &Header{
		FormatVersion:   FormatVersion,
		NamiNetVersion:  writerVersion,
		RunID:           uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		Sizes:           append([]int(nil), state.Sizes...),
		DropoutRates:    append([]float64(nil), state.DropoutRates...),
		Steps:           make([]int, len(state.Layers)),
		Optimizer:       state.Optimizer,
		OptimizerConfig: make(map[string]float64, len(state.OptimizerConfig)),
		Metadata:        make(map[string]string, len(metadata)),
	}
	for i, l := range state.Layers {
		h.Steps[i] = l.Step
	}
	for k, v := range state.OptimizerConfig {
		h.OptimizerConfig[k] = v
	}
	for k, v := range metadata {
		h.Metadata[k] = v
	}
	return h
}

// layerTensor names one of the six buffers stored per layer.
type layerTensor struct {
	suffix string
	values func(*nn.LayerState) *[]float64
	matrix bool // [out, in] when true, [out] otherwise
}

var layerTensors = []layerTensor{
	{"weight", func(l *nn.LayerState) *[]float64 { return &l.Weights }, true},
	{"bias", func(l *nn.LayerState) *[]float64 { return &l.Bias }, false},
	{"weight.m", func(l *nn.LayerState) *[]float64 { return &l.MW }, true},
	{"weight.v", func(l *nn.LayerState) *[]float64 { return &l.VW }, true},
	{"bias.m", func(l *nn.LayerState) *[]float64 { return &l.MB }, false},
	{"bias.v", func(l *nn.LayerState) *[]float64 { return &l.VB }, false},
}

func tensorName(layer int, suffix string) string {
	return fmt.Sprintf("layers.%d.%s", layer, suffix)
}

func tensorShape(t layerTensor, in, out int) []int {
	if t.matrix {
		return []int{out, in}
	}
	return []int{out}
}

func alignUp(n int64) int64 {
	return n + (HeaderAlignment-(n%HeaderAlignment))%HeaderAlignment
}
