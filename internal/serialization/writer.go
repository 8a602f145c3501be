package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/naminet-ml/naminet/internal/nn"
)

// Save writes state to path in .nami format and returns the header it wrote.
func Save(path string, state *nn.NetworkState, metadata map[string]string) (*Header, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	h := NewHeader(state, metadata)
	if err := Encode(file, state, h); err != nil {
		_ = file.Close()
		return nil, err
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return h, nil
}

// Encode writes state to w in .nami format using h as the JSON header.
// h.Tensors is overwritten with the layout actually written.
func Encode(w io.Writer, state *nn.NetworkState, h *Header) error {
	if state == nil || len(state.Layers) == 0 {
		return ErrEmptyState
	}

	data, tensors := packTensors(state)
	h.Tensors = tensors
	if h.Metadata == nil {
		h.Metadata = make(map[string]string)
	}

	headerJSON, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	flags := FlagHasOptimizer
	if len(h.Metadata) > 0 {
		flags |= FlagHasMetadata
	}

	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	checksum := ComputeChecksum(data)
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := bw.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	currentPos := int64(FixedHeaderSize + len(headerJSON))
	if padding := alignUp(currentPos) - currentPos; padding > 0 {
		if _, err := bw.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := bw.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return nil
}

// packTensors lays out every layer buffer back to back and returns the
// data section with its tensor table.
func packTensors(state *nn.NetworkState) ([]byte, []TensorMeta) {
	var data []byte
	tensors := make([]TensorMeta, 0, len(state.Layers)*len(layerTensors))

	for i := range state.Layers {
		l := &state.Layers[i]
		for _, lt := range layerTensors {
			values := *lt.values(l)
			offset := int64(len(data))
			for _, v := range values {
				data = binary.LittleEndian.AppendUint64(data, math.Float64bits(v))
			}
			tensors = append(tensors, TensorMeta{
				Name:   tensorName(i, lt.suffix),
				DType:  DTypeFloat64,
				Shape:  tensorShape(lt, l.InputSize, l.OutputSize),
				Offset: offset,
				Size:   int64(len(data)) - offset,
			})
		}
	}
	return data, tensors
}
