package serialization

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize    = 16 * 1024 * 1024   // 16MB - maximum header size
	MaxDataSize      = 1024 * 1024 * 1024 // 1GB - maximum tensor data size
	MaxTensorCount   = 100_000            // Maximum number of tensors in a file
	MaxTensorNameLen = 4096               // Maximum tensor name length
)

// ValidateTensorOffsets checks for overlapping tensor offsets and out-of-bounds access.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", t.Offset, t.Size),
			}
		}

		if t.Offset+t.Size > dataSize {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}

	return nil
}

// ValidateTensorName rejects names that are too long or contain path
// separators, ".." or null bytes.
func ValidateTensorName(name string) error {
	if len(name) > MaxTensorNameLen {
		return &ValidationError{
			Type:    "name_too_long",
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxTensorNameLen),
		}
	}

	if strings.Contains(name, "..") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains '..' (path traversal attempt)",
		}
	}

	if strings.ContainsAny(name, `/\`) {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains path separator (/ or \\)",
		}
	}

	if strings.Contains(name, "\x00") {
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: "contains null byte",
		}
	}

	return nil
}

// ValidateTensorSize checks that a tensor is float64 and that its byte size
// agrees with its shape.
func ValidateTensorSize(t TensorMeta) error {
	if t.DType != DTypeFloat64 {
		return &ValidationError{
			Type:    "unsupported_dtype",
			Tensor:  t.Name,
			Details: fmt.Sprintf("dtype %q, only %q is supported", t.DType, DTypeFloat64),
		}
	}

	const maxElements = MaxDataSize / bytesPerValue
	elements := int64(1)
	for _, d := range t.Shape {
		if d <= 0 {
			return &ValidationError{
				Type:    "invalid_shape",
				Tensor:  t.Name,
				Details: fmt.Sprintf("shape %v has non-positive dimension", t.Shape),
			}
		}
		if int64(d) > maxElements/elements {
			return &ValidationError{
				Type:    "tensor_too_large",
				Tensor:  t.Name,
				Details: fmt.Sprintf("shape %v exceeds %d elements", t.Shape, int64(maxElements)),
			}
		}
		elements *= int64(d)
	}
	if want := elements * bytesPerValue; t.Size != want {
		return &ValidationError{
			Type:    "size_mismatch",
			Tensor:  t.Name,
			Details: fmt.Sprintf("size %d bytes, shape %v needs %d", t.Size, t.Shape, want),
		}
	}
	return nil
}

// ValidateArchitecture checks that the header's per-layer fields agree with
// its layer sizes.
func ValidateArchitecture(h *Header) error {
	if len(h.Sizes) < 2 {
		return &ValidationError{
			Type:    "architecture",
			Details: fmt.Sprintf("need at least 2 layer sizes, got %d", len(h.Sizes)),
		}
	}
	for i, s := range h.Sizes {
		if s <= 0 {
			return &ValidationError{
				Type:    "architecture",
				Details: fmt.Sprintf("layer %d has size %d", i, s),
			}
		}
	}

	layers := len(h.Sizes) - 1
	if len(h.DropoutRates) != layers || len(h.Steps) != layers {
		return &ValidationError{
			Type: "architecture",
			Details: fmt.Sprintf("%d layers but %d dropout rates and %d step counters",
				layers, len(h.DropoutRates), len(h.Steps)),
		}
	}
	return nil
}

// ValidateHeader performs comprehensive header validation.
func ValidateHeader(h *Header, dataSize int64) error {
	if err := ValidateArchitecture(h); err != nil {
		return err
	}

	if len(h.Tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(h.Tensors), MaxTensorCount),
		}
	}

	seen := make(map[string]bool, len(h.Tensors))
	for _, t := range h.Tensors {
		if err := ValidateTensorName(t.Name); err != nil {
			return err
		}
		if seen[t.Name] {
			return &ValidationError{Type: "duplicate_tensor", Tensor: t.Name, Details: "name appears twice"}
		}
		seen[t.Name] = true
		if err := ValidateTensorSize(t); err != nil {
			return err
		}
	}

	return ValidateTensorOffsets(h.Tensors, dataSize)
}
