package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/naminet-ml/naminet/internal/dataset"
	"github.com/naminet-ml/naminet/internal/random"
)

// dataFlags are the dataset flags shared by every command.
type dataFlags struct {
	path    string
	format  string
	samples int
	test    bool
}

func (d *dataFlags) register(fs *flag.FlagSet, defaultTest bool) {
	fs.StringVar(&d.path, "data", "", "CSV file or directory with MNIST IDX files")
	fs.StringVar(&d.format, "format", "", "Dataset format: csv, idx or synthetic (default: from -data)")
	fs.IntVar(&d.samples, "samples", 0, "Max samples to load (0 = all)")
	fs.BoolVar(&d.test, "test", defaultTest, "Use the IDX test set (t10k) instead of the training set")
}

// load reads the dataset. rng is only used for synthetic data.
func (d *dataFlags) load(rng random.Source) (*dataset.Dataset, error) {
	format := d.format
	if format == "" {
		format = detectFormat(d.path)
	}

	switch format {
	case "csv":
		return dataset.LoadCSV(d.path, d.samples)
	case "idx":
		return dataset.LoadIDX(d.path, !d.test, d.samples)
	case "synthetic":
		n := d.samples
		if n <= 0 {
			n = 1000
		}
		return dataset.Synthetic(n, rng), nil
	default:
		return nil, fmt.Errorf("unknown dataset format %q", format)
	}
}

func detectFormat(path string) string {
	if path == "" {
		return "synthetic"
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return "idx"
	}
	return "csv"
}

func (d *dataFlags) describe() string {
	if d.path == "" {
		return "synthetic"
	}
	return d.path
}
