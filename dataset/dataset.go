// Package dataset reads variant tables in row batches.
//
// A Dataset exposes its column names up front and streams rows in dataset order. Scan can be
// called more than once; every call starts again from the first row.
package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/datazip-inc/slicer/constants"
	"github.com/datazip-inc/slicer/types"
	"github.com/datazip-inc/slicer/utils/logger"
	"github.com/spf13/afero"
)

type Format string

const (
	CSV      Format = "csv"
	Parquet  Format = "parquet"
	Postgres Format = "postgres"
)

// Dataset is a row source for the evaluation engine.
type Dataset interface {
	Name() string
	Columns() []string
	// Scan calls fn with consecutive batches of rows in dataset order. Batches and rows are never
	// reused by the source, so fn may hand them to other goroutines. Returning an error from fn stops
	// the scan with that error.
	Scan(ctx context.Context, fn func(batch []types.Row) error) error
	Close() error
}

// Info describes a dataset file found by List.
type Info struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Format Format `json:"format"`
	Size   int64  `json:"size"`
}

// Open resolves a selector to a dataset. Selectors are file paths (.csv, .tsv or .parquet) or
// postgres URLs whose fragment names the table, e.g. postgres://host/db#public.variants.
func Open(ctx context.Context, fs afero.Fs, selector string, batchSize int) (Dataset, error) {
	if batchSize <= 0 {
		batchSize = constants.DefaultBatchSize
	}

	format, err := DetectFormat(selector)
	if err != nil {
		return nil, err
	}

	logger.Debugf("opening %s dataset %s", format, Redact(selector))
	switch format {
	case CSV:
		return NewCSV(fs, selector, batchSize)
	case Parquet:
		return NewParquet(fs, selector, batchSize)
	case Postgres:
		return NewPostgres(ctx, selector, batchSize)
	}
	return nil, fmt.Errorf("unsupported dataset format %s", format)
}

// DetectFormat infers the dataset format from a selector.
func DetectFormat(selector string) (Format, error) {
	lower := strings.ToLower(strings.TrimSpace(selector))
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return Postgres, nil
	}

	switch strings.TrimPrefix(filepath.Ext(lower), ".") {
	case constants.CSVFileExt, constants.TSVFileExt:
		return CSV, nil
	case constants.ParquetFileExt:
		return Parquet, nil
	}
	return "", fmt.Errorf("cannot infer dataset format of %q: expected a .csv, .tsv or .parquet file or a postgres:// url", Redact(selector))
}

// List returns the dataset files directly under dir, sorted by name.
func List(fs afero.Fs, dir string) ([]Info, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets in %s: %s", dir, err)
	}

	infos := []Info{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, err := DetectFormat(entry.Name())
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Name:   entry.Name(),
			Path:   filepath.Join(dir, entry.Name()),
			Format: format,
			Size:   entry.Size(),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Resolve joins relative file selectors onto the data directory. URLs and absolute paths are
// returned unchanged.
func Resolve(dataDir, selector string) string {
	if dataDir == "" || filepath.IsAbs(selector) || strings.Contains(selector, "://") {
		return selector
	}
	return filepath.Join(dataDir, selector)
}

func statSize(fs afero.Fs, path string) (int64, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("dataset %s does not exist", path)
		}
		return 0, fmt.Errorf("failed to stat dataset %s: %s", path, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("dataset %s is a directory", path)
	}
	return info.Size(), nil
}

// cancelled is a non-blocking context check for scan loops.
func cancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
