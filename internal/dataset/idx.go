package dataset

import (
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// IDX magic numbers.
const (
	idxImagesMagic = 2051 // 0x00000803
	idxLabelsMagic = 2049 // 0x00000801
)

// MaxSamples bounds the sample count an IDX header may declare. The official
// training set has 60,000.
const MaxSamples = 1_000_000

// LoadIDX loads MNIST data from official IDX binary files in dir.
//
// Expected files in dir (each may also carry a .gz suffix):
//   - train-images-idx3-ubyte, train-labels-idx1-ubyte when train is true
//   - t10k-images-idx3-ubyte, t10k-labels-idx1-ubyte otherwise
//
// maxSamples <= 0 loads all.
func LoadIDX(dir string, train bool, maxSamples int) (*Dataset, error) {
	prefix := "t10k"
	if train {
		prefix = "train"
	}

	images, err := openIDX(filepath.Join(dir, prefix+"-images-idx3-ubyte"))
	if err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}
	defer images.Close()

	labels, err := openIDX(filepath.Join(dir, prefix+"-labels-idx1-ubyte"))
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %w", err)
	}
	defer labels.Close()

	return ReadIDX(images, labels, maxSamples)
}

// ReadIDX decodes an IDX image stream and its matching label stream.
func ReadIDX(images, labels io.Reader, maxSamples int) (*Dataset, error) {
	pixels, err := readIDXImages(images, maxSamples)
	if err != nil {
		return nil, err
	}
	labelBytes, err := readIDXLabels(labels, maxSamples)
	if err != nil {
		return nil, err
	}
	if len(pixels) != len(labelBytes) {
		return nil, fmt.Errorf("%w: %d images, %d labels", ErrCountMismatch, len(pixels), len(labelBytes))
	}
	if len(pixels) == 0 {
		return nil, ErrEmptyDataset
	}

	samples := make([]Sample, len(pixels))
	for i, img := range pixels {
		label := int(labelBytes[i])
		if label >= NumClasses {
			return nil, fmt.Errorf("sample %d: %w: %d", i, ErrLabelRange, label)
		}

		s := Sample{Pixels: make([]float64, NumPixels), Label: label}
		for j, b := range img {
			s.Pixels[j] = float64(b) / 255.0
		}
		samples[i] = s
	}

	return New(samples), nil
}

// openIDX opens path, falling back to path+".gz", and transparently
// decompresses gzip files.
func openIDX(path string) (io.ReadCloser, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for dataset loading
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) && !strings.HasSuffix(path, ".gz") {
		path += ".gz"
		//nolint:gosec // G304: File path comes from user input, which is expected for dataset loading
		file, err = os.Open(path)
	}
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return file, nil
	}

	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	return &gzipFile{Reader: gz, file: file}, nil
}

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	gzErr := g.Reader.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return gzErr
}

// readIDXImages reads an IDX image stream.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes (28)
//	number of cols: 4 bytes (28)
//	pixel data: unsigned bytes (0-255)
func readIDXImages(r io.Reader, maxSamples int) ([][]byte, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic number: %w", err)
	}
	if magic != idxImagesMagic {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidMagic, magic, idxImagesMagic)
	}

	var dims [3]uint32
	if err := binary.Read(r, binary.BigEndian, &dims); err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	count, rows, cols := dims[0], dims[1], dims[2]
	if rows != Height || cols != Width {
		return nil, fmt.Errorf("%w: %dx%d, want %dx%d", ErrImageSize, rows, cols, Height, Width)
	}
	if count > MaxSamples {
		return nil, fmt.Errorf("%w: header claims %d images, max %d", ErrTooManySamples, count, MaxSamples)
	}

	n := int(count)
	if maxSamples > 0 && n > maxSamples {
		n = maxSamples
	}

	// Images are appended as they are read so a lying count cannot force a
	// large allocation up front.
	var images [][]byte
	for i := 0; i < n; i++ {
		img := make([]byte, NumPixels)
		if _, err := io.ReadFull(r, img); err != nil {
			return nil, fmt.Errorf("failed to read image %d: %w", i, err)
		}
		images = append(images, img)
	}
	return images, nil
}

// readIDXLabels reads an IDX label stream.
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes (0-9)
func readIDXLabels(r io.Reader, maxSamples int) ([]byte, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic number: %w", err)
	}
	if magic != idxLabelsMagic {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidMagic, magic, idxLabelsMagic)
	}

	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("failed to read label count: %w", err)
	}
	if count > MaxSamples {
		return nil, fmt.Errorf("%w: header claims %d labels, max %d", ErrTooManySamples, count, MaxSamples)
	}

	n := int(count)
	if maxSamples > 0 && n > maxSamples {
		n = maxSamples
	}

	labels, err := io.ReadAll(io.LimitReader(r, int64(n)))
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	if len(labels) != n {
		return nil, fmt.Errorf("failed to read labels: %w", io.ErrUnexpectedEOF)
	}
	return labels, nil
}
