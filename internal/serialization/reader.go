package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/naminet-ml/naminet/internal/nn"
)

// Load reads a .nami file and returns the network state and its header.
func Load(path string) (*nn.NetworkState, *Header, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return Decode(file)
}

// Decode reads a .nami snapshot from r.
//
// The checksum and the tensor table are verified before any tensor data is
// interpreted.
func Decode(r io.Reader) (*nn.NetworkState, *Header, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, nil, fmt.Errorf("%w: fixed header: %w", ErrTruncated, err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, nil, ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(fixed[4:8]); version != FormatVersion {
		return nil, nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	var stored [32]byte
	copy(stored[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return nil, nil, ErrHeaderTooLarge
	}
	if dataSize > MaxDataSize {
		return nil, nil, &ValidationError{
			Type:    "data_too_large",
			Details: fmt.Sprintf("data size %d > max %d", dataSize, int64(MaxDataSize)),
		}
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, nil, fmt.Errorf("%w: header: %w", ErrTruncated, err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	currentPos := int64(FixedHeaderSize) + int64(headerSize)
	if _, err := io.CopyN(io.Discard, r, alignUp(currentPos)-currentPos); err != nil {
		return nil, nil, fmt.Errorf("%w: padding: %w", ErrTruncated, err)
	}

	// Grow the buffer as bytes arrive rather than trusting dataSize up front.
	//nolint:gosec // G115: dataSize is bounded by MaxDataSize
	cr := newChecksumReader(r, int64(dataSize))
	data, err := io.ReadAll(cr)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: tensor data: %w", ErrTruncated, err)
	}
	if uint64(len(data)) != dataSize {
		return nil, nil, fmt.Errorf("%w: tensor data: got %d of %d bytes", ErrTruncated, len(data), dataSize)
	}
	if err := cr.Verify(stored); err != nil {
		return nil, nil, err
	}

	var h Header
	if err := json.Unmarshal(headerBytes, &h); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}
	//nolint:gosec // G115: dataSize is bounded by MaxDataSize
	if err := ValidateHeader(&h, int64(dataSize)); err != nil {
		return nil, nil, fmt.Errorf("validation failed: %w", err)
	}

	state, err := unpackTensors(&h, data)
	if err != nil {
		return nil, nil, err
	}
	return state, &h, nil
}

// unpackTensors rebuilds the network state from a validated header.
func unpackTensors(h *Header, data []byte) (*nn.NetworkState, error) {
	byName := make(map[string]TensorMeta, len(h.Tensors))
	for _, t := range h.Tensors {
		byName[t.Name] = t
	}

	numLayers := len(h.Sizes) - 1
	state := &nn.NetworkState{
		Sizes:           append([]int(nil), h.Sizes...),
		DropoutRates:    append([]float64(nil), h.DropoutRates...),
		Optimizer:       h.Optimizer,
		OptimizerConfig: h.OptimizerConfig,
		Layers:          make([]nn.LayerState, numLayers),
	}

	for i := range state.Layers {
		l := &state.Layers[i]
		l.InputSize = h.Sizes[i]
		l.OutputSize = h.Sizes[i+1]
		l.Output = i == numLayers-1
		l.Step = h.Steps[i]

		for _, lt := range layerTensors {
			name := tensorName(i, lt.suffix)
			meta, ok := byName[name]
			if !ok {
				return nil, &ValidationError{Type: "missing_tensor", Tensor: name, Details: "not present in header"}
			}
			want := tensorShape(lt, l.InputSize, l.OutputSize)
			if !slices.Equal(meta.Shape, want) {
				return nil, &ValidationError{
					Type:    "shape_mismatch",
					Tensor:  name,
					Details: fmt.Sprintf("shape %v, architecture needs %v", meta.Shape, want),
				}
			}
			*lt.values(l) = decodeFloats(data[meta.Offset : meta.Offset+meta.Size])
		}
	}
	return state, nil
}

func decodeFloats(b []byte) []float64 {
	out := make([]float64, len(b)/bytesPerValue)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*bytesPerValue:]))
	}
	return out
}
