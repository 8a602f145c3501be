package serialization

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/naminet-ml/naminet/internal/nn"
	"github.com/naminet-ml/naminet/internal/random"
)

// trainedState returns the state of a small network after a few updates, so
// moment buffers and step counters are non-trivial.
func trainedState(t *testing.T) (*nn.Network, *nn.NetworkState) {
	t.Helper()
	rng := random.New(3)
	net, err := nn.NewNetwork([]int{5, 4, 3}, []float64{0.1, 0}, rng)
	if err != nil {
		t.Fatalf("NewNetwork failed: %v", err)
	}
	for i := 0; i < 4; i++ {
		input := make([]float64, 5)
		for j := range input {
			input[j] = rng.Float64()
		}
		net.Train(input, nn.OneHot(i%3, 3), 0.01, rng)
	}
	return net, net.State()
}

func TestSaveLoadRoundTrip(t *testing.T) {
	net, state := trainedState(t)
	path := filepath.Join(t.TempDir(), "model.nami")

	written, err := Save(path, state, map[string]string{"dataset": "synthetic"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, header, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !reflect.DeepEqual(state, loaded) {
		t.Errorf("Loaded state differs from saved state")
	}
	if header.RunID != written.RunID {
		t.Errorf("RunID = %q, want %q", header.RunID, written.RunID)
	}
	if _, err := uuid.Parse(header.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", header.RunID, err)
	}
	if header.Metadata["dataset"] != "synthetic" {
		t.Errorf("Metadata = %v", header.Metadata)
	}
	if !reflect.DeepEqual(header.Steps, []int{4, 4}) {
		t.Errorf("Steps = %v, want [4 4]", header.Steps)
	}
	if len(header.Tensors) != 12 {
		t.Errorf("Expected 12 tensors, got %d", len(header.Tensors))
	}

	restored, err := nn.NewNetworkFromState(loaded)
	if err != nil {
		t.Fatalf("NewNetworkFromState failed: %v", err)
	}
	input := []float64{0.1, 0.9, 0.3, 0.5, 0.7}
	if !reflect.DeepEqual(net.Predict(input), restored.Predict(input)) {
		t.Error("Restored network predicts differently")
	}
}

func TestEncodeLayout(t *testing.T) {
	_, state := trainedState(t)

	var buf bytes.Buffer
	if err := Encode(&buf, state, NewHeader(state, nil)); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	b := buf.Bytes()

	if string(b[:4]) != MagicBytes {
		t.Errorf("magic = %q", b[:4])
	}
	if v := binary.LittleEndian.Uint32(b[4:8]); v != FormatVersion {
		t.Errorf("version = %d", v)
	}
	if flags := binary.LittleEndian.Uint32(b[8:12]); flags&FlagHasOptimizer == 0 || flags&FlagHasMetadata != 0 {
		t.Errorf("flags = %b", flags)
	}

	headerSize := int64(binary.LittleEndian.Uint64(b[16:24]))
	dataSize := int64(binary.LittleEndian.Uint64(b[24:32]))
	dataOffset := alignUp(FixedHeaderSize + headerSize)
	if dataOffset%HeaderAlignment != 0 {
		t.Errorf("data offset %d not aligned", dataOffset)
	}
	// 5*4 + 4 and 4*3 + 3 values, each stored three times.
	if want := int64((20+4+12+3)*3) * 8; dataSize != want {
		t.Errorf("data size = %d, want %d", dataSize, want)
	}
	if int64(len(b)) != dataOffset+dataSize {
		t.Errorf("file size = %d, want %d", len(b), dataOffset+dataSize)
	}
}

func TestDecodeDetectsCorruption(t *testing.T) {
	_, state := trainedState(t)
	var buf bytes.Buffer
	if err := Encode(&buf, state, NewHeader(state, nil)); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	good := buf.Bytes()

	tests := []struct {
		name    string
		mutate  func([]byte) []byte
		wantErr error
	}{
		{"flipped data byte", func(b []byte) []byte { b[len(b)-1] ^= 0xff; return b }, ErrChecksumMismatch},
		{"bad magic", func(b []byte) []byte { copy(b, "BORN"); return b }, ErrInvalidMagic},
		{"future version", func(b []byte) []byte { binary.LittleEndian.PutUint32(b[4:8], 9); return b }, ErrUnsupportedVersion},
		{"truncated data", func(b []byte) []byte { return b[:len(b)-3] }, ErrTruncated},
		{"truncated fixed header", func(b []byte) []byte { return b[:10] }, ErrTruncated},
		{"data size past end of stream", func(b []byte) []byte {
			binary.LittleEndian.PutUint64(b[24:32], MaxDataSize/2)
			return b
		}, ErrTruncated},
		{"huge header", func(b []byte) []byte {
			binary.LittleEndian.PutUint64(b[16:24], MaxHeaderSize+1)
			return b
		}, ErrHeaderTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.mutate(append([]byte(nil), good...))
			_, _, err := Decode(bytes.NewReader(b))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestDecodeRejectsShapeMismatch(t *testing.T) {
	_, state := trainedState(t)
	h := NewHeader(state, nil)
	h.Sizes = []int{5, 4, 2}

	var buf bytes.Buffer
	if err := Encode(&buf, state, h); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	_, _, err := Decode(&buf)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Type != "shape_mismatch" {
		t.Errorf("Expected shape_mismatch, got: %v", err)
	}
}

func TestEncodeEmptyState(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, &nn.NetworkState{}, &Header{}); !errors.Is(err, ErrEmptyState) {
		t.Errorf("Expected ErrEmptyState, got: %v", err)
	}
	if _, err := MarshalProto(nil, nil); !errors.Is(err, ErrEmptyState) {
		t.Errorf("Expected ErrEmptyState, got: %v", err)
	}
}

func TestProtoRoundTrip(t *testing.T) {
	_, state := trainedState(t)
	h := NewHeader(state, map[string]string{"epochs": "3", "note": "proto"})

	data, err := MarshalProto(state, h)
	if err != nil {
		t.Fatalf("MarshalProto failed: %v", err)
	}

	loaded, header, err := UnmarshalProto(data)
	if err != nil {
		t.Fatalf("UnmarshalProto failed: %v", err)
	}
	if !reflect.DeepEqual(state, loaded) {
		t.Errorf("Proto round trip changed the state")
	}
	if header.RunID != h.RunID || !header.CreatedAt.Equal(h.CreatedAt) {
		t.Errorf("header identity = %s %v, want %s %v", header.RunID, header.CreatedAt, h.RunID, h.CreatedAt)
	}
	if !reflect.DeepEqual(header.Metadata, h.Metadata) {
		t.Errorf("Metadata = %v, want %v", header.Metadata, h.Metadata)
	}
	if !reflect.DeepEqual(header.Steps, h.Steps) {
		t.Errorf("Steps = %v, want %v", header.Steps, h.Steps)
	}
}

func TestProtoIsDeterministic(t *testing.T) {
	_, state := trainedState(t)
	h := NewHeader(state, map[string]string{"b": "2", "a": "1"})

	first, err := MarshalProto(state, h)
	if err != nil {
		t.Fatalf("MarshalProto failed: %v", err)
	}
	second, err := MarshalProto(state, h)
	if err != nil {
		t.Fatalf("MarshalProto failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("Encoding the same snapshot twice gave different bytes")
	}
}

func TestUnmarshalProtoMalformed(t *testing.T) {
	_, state := trainedState(t)
	data, err := MarshalProto(state, nil)
	if err != nil {
		t.Fatalf("MarshalProto failed: %v", err)
	}

	if _, _, err := UnmarshalProto(data[:len(data)-5]); !errors.Is(err, ErrMalformedProto) {
		t.Errorf("Expected ErrMalformedProto for truncated data, got: %v", err)
	}
	if _, _, err := UnmarshalProto(nil); !errors.Is(err, ErrEmptyState) {
		t.Errorf("Expected ErrEmptyState for empty input, got: %v", err)
	}
}

func TestSaveFileDispatch(t *testing.T) {
	_, state := trainedState(t)
	dir := t.TempDir()

	for _, name := range []string{"model.nami", "model.pb", "MODEL.PB"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if _, err := SaveFile(path, state, nil); err != nil {
				t.Fatalf("SaveFile failed: %v", err)
			}
			loaded, _, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile failed: %v", err)
			}
			if !reflect.DeepEqual(state, loaded) {
				t.Error("Round trip changed the state")
			}
		})
	}

	// A .pb file is not a valid .nami file.
	if _, _, err := Load(filepath.Join(dir, "model.pb")); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("Expected ErrInvalidMagic, got: %v", err)
	}
}

// oversizedState declares a layer far larger than its (empty) buffers.
func oversizedState() *nn.NetworkState {
	const huge = math.MaxInt / 4
	return &nn.NetworkState{
		Sizes:        []int{huge, 1},
		DropoutRates: []float64{0},
		Layers:       []nn.LayerState{{InputSize: huge, OutputSize: 1, Output: true}},
	}
}

func TestDecodeRejectsOversizedShape(t *testing.T) {
	state := oversizedState()
	var buf bytes.Buffer
	if err := Encode(&buf, state, NewHeader(state, nil)); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	_, _, err := Decode(&buf)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Type != "tensor_too_large" {
		t.Fatalf("Expected tensor_too_large error, got: %v", err)
	}
	if !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("Expected ErrInvalidHeader in chain, got: %v", err)
	}
}

func TestUnmarshalProtoRejectsOversizedLayer(t *testing.T) {
	data, err := MarshalProto(oversizedState(), nil)
	if err != nil {
		t.Fatalf("MarshalProto failed: %v", err)
	}

	if _, _, err := UnmarshalProto(data); !errors.Is(err, ErrMalformedProto) {
		t.Errorf("Expected ErrMalformedProto, got: %v", err)
	}
}

func TestUnmarshalProtoRejectsBufferMismatch(t *testing.T) {
	_, state := trainedState(t)
	state.Layers[1].VW = state.Layers[1].VW[:5]
	data, err := MarshalProto(state, nil)
	if err != nil {
		t.Fatalf("MarshalProto failed: %v", err)
	}

	if _, _, err := UnmarshalProto(data); !errors.Is(err, ErrMalformedProto) {
		t.Errorf("Expected ErrMalformedProto, got: %v", err)
	}
}
