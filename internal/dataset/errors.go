package dataset

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrEmptyDataset   = errors.New("dataset is empty")
	ErrInvalidMagic   = errors.New("invalid IDX magic number")
	ErrCountMismatch  = errors.New("image and label counts differ")
	ErrLabelRange     = errors.New("label out of range")
	ErrPixelRange     = errors.New("pixel out of range [0, 255]")
	ErrRecordLength   = errors.New("invalid record length")
	ErrImageSize      = errors.New("unexpected image size")
	ErrTooManySamples = errors.New("sample count exceeds limit")
)

// RecordError locates a parse failure in a CSV file.
type RecordError struct {
	Row    int // 1-based data row, header excluded
	Column int // 0-based column, -1 when the whole record is at fault
	Err    error
}

// Error implements the error interface.
func (e *RecordError) Error() string {
	if e.Column < 0 {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d, column %d: %v", e.Row, e.Column, e.Err)
}

// Unwrap returns the underlying error.
func (e *RecordError) Unwrap() error {
	return e.Err
}
