package serialization

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"testing"
)

// TestComputeChecksum verifies SHA-256 checksum computation.
func TestComputeChecksum(t *testing.T) {
	data := []byte("test data")
	checksum1 := ComputeChecksum(data)
	checksum2 := ComputeChecksum(data)

	if checksum1 != checksum2 {
		t.Error("Checksums should match for identical data")
	}

	if ComputeChecksum([]byte("different data")) == checksum1 {
		t.Error("Checksums should differ for different data")
	}
}

// TestChecksumReader verifies streaming verification of a data section.
func TestChecksumReader(t *testing.T) {
	data := []byte("tensor bytes streamed through the hash")
	stored := ComputeChecksum(data[:10])

	cr := newChecksumReader(bytes.NewReader(data), 10)
	got, err := io.ReadAll(cr)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !bytes.Equal(got, data[:10]) {
		t.Errorf("Read %q, want the first 10 bytes", got)
	}
	if err := cr.Verify(stored); err != nil {
		t.Errorf("Verify failed: %v", err)
	}
	if err := cr.Verify(ComputeChecksum(data)); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Expected ErrChecksumMismatch, got: %v", err)
	}
}

// TestValidateChecksum verifies checksum validation.
func TestValidateChecksum(t *testing.T) {
	checksum := ComputeChecksum([]byte("test data"))

	if err := ValidateChecksum(checksum, checksum); err != nil {
		t.Errorf("Expected no error for matching checksums, got: %v", err)
	}

	wrong := [32]byte{1, 2, 3, 4, 5, 6, 7, 8}
	if err := ValidateChecksum(checksum, wrong); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Expected ErrChecksumMismatch, got: %v", err)
	}
}

// TestKnownVectorSHA256 verifies SHA-256 produces correct known vectors.
func TestKnownVectorSHA256(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"hello world", "hello world", "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checksum := ComputeChecksum([]byte(tt.input))
			if got := hex.EncodeToString(checksum[:]); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}
