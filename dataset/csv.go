package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/datazip-inc/slicer/constants"
	"github.com/datazip-inc/slicer/types"
	"github.com/spf13/afero"
)

// CSVDataset reads a delimited text file with a header row. Files ending in .tsv are tab separated.
type CSVDataset struct {
	fs        afero.Fs
	path      string
	comma     rune
	columns   []string
	batchSize int
}

func NewCSV(fs afero.Fs, path string, batchSize int) (*CSVDataset, error) {
	if _, err := statSize(fs, path); err != nil {
		return nil, err
	}

	d := &CSVDataset{
		fs:        fs,
		path:      path,
		comma:     ',',
		batchSize: batchSize,
	}
	if strings.EqualFold(strings.TrimPrefix(filepath.Ext(path), "."), constants.TSVFileExt) {
		d.comma = '\t'
	}

	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %s", path, err)
	}
	defer file.Close()

	header, err := d.newReader(file).Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("dataset %s is empty, expected a header row", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of dataset %s: %s", path, err)
	}

	d.columns = make([]string, len(header))
	for i, name := range header {
		d.columns[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}
	return d, nil
}

func (d *CSVDataset) Name() string {
	return filepath.Base(d.path)
}

func (d *CSVDataset) Columns() []string {
	return d.columns
}

func (d *CSVDataset) Scan(ctx context.Context, fn func(batch []types.Row) error) error {
	file, err := d.fs.Open(d.path)
	if err != nil {
		return fmt.Errorf("failed to open dataset %s: %s", d.path, err)
	}
	defer file.Close()

	reader := d.newReader(file)
	if _, err := reader.Read(); err != nil {
		return fmt.Errorf("failed to read header of dataset %s: %s", d.path, err)
	}

	batch := make([]types.Row, 0, d.batchSize)
	for {
		if err := cancelled(ctx); err != nil {
			return err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read dataset %s: %w", d.path, err)
		}

		batch = append(batch, types.Row(record))
		if len(batch) == d.batchSize {
			if err := fn(batch); err != nil {
				return err
			}
			batch = make([]types.Row, 0, d.batchSize)
		}
	}

	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

func (d *CSVDataset) Close() error {
	return nil
}

func (d *CSVDataset) newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = d.comma
	// rows may be ragged; a short row reads as absent cells
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}
