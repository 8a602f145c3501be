package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// LoadCSV loads samples from a CSV file.
//
// CSV Format (Kaggle-style):
//
//	label,pixel0,pixel1,...,pixel783
//	5,0,0,12,...,0
//	0,0,0,0,...,0
//
// The first row is always skipped as a header. maxSamples <= 0 loads all.
func LoadCSV(path string, maxSamples int) (*Dataset, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for dataset loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadCSV(file, maxSamples)
}

// ReadCSV is LoadCSV over an arbitrary reader.
func ReadCSV(r io.Reader, maxSamples int) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDataset
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var samples []Sample
	for row := 1; maxSamples <= 0 || len(samples) < maxSamples; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		s, err := parseRecord(record, row)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	if len(samples) == 0 {
		return nil, ErrEmptyDataset
	}
	return New(samples), nil
}

func parseRecord(record []string, row int) (Sample, error) {
	if len(record) != NumPixels+1 {
		return Sample{}, &RecordError{
			Row:    row,
			Column: -1,
			Err:    fmt.Errorf("%w: got %d, want %d", ErrRecordLength, len(record), NumPixels+1),
		}
	}

	label, err := strconv.Atoi(record[0])
	if err != nil {
		return Sample{}, &RecordError{Row: row, Column: 0, Err: err}
	}
	if label < 0 || label >= NumClasses {
		return Sample{}, &RecordError{Row: row, Column: 0, Err: fmt.Errorf("%w: %d", ErrLabelRange, label)}
	}

	pixels := make([]float64, NumPixels)
	for j := range pixels {
		v, err := strconv.Atoi(record[j+1])
		if err != nil {
			return Sample{}, &RecordError{Row: row, Column: j + 1, Err: err}
		}
		if v < 0 || v > 255 {
			return Sample{}, &RecordError{Row: row, Column: j + 1, Err: fmt.Errorf("%w: %d", ErrPixelRange, v)}
		}
		pixels[j] = float64(v) / 255.0
	}

	return Sample{Pixels: pixels, Label: label}, nil
}
