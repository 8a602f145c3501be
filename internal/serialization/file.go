package serialization

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/naminet-ml/naminet/internal/nn"
)

// ProtoExt is the file extension that selects the protobuf encoding.
const ProtoExt = ".pb"

// SaveFile writes state to path, using the protobuf encoding for ".pb"
// files and the .nami format otherwise.
func SaveFile(path string, state *nn.NetworkState, metadata map[string]string) (*Header, error) {
	if !isProto(path) {
		return Save(path, state, metadata)
	}

	h := NewHeader(state, metadata)
	data, err := MarshalProto(state, h)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	return h, nil
}

// LoadFile reads a snapshot written by SaveFile.
func LoadFile(path string) (*nn.NetworkState, *Header, error) {
	if !isProto(path) {
		return Load(path)
	}

	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return UnmarshalProto(data)
}

func isProto(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ProtoExt)
}
