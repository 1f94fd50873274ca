package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/datazip-inc/slicer/types"
	"github.com/datazip-inc/slicer/utils/logger"
	pq "github.com/parquet-go/parquet-go"
	"github.com/spf13/afero"
)

// ParquetDataset reads a parquet file row group by row group. Every leaf column becomes one
// dataset column named by its dotted path; values are rendered to text the way they would appear
// in a CSV export, and nulls become empty cells.
type ParquetDataset struct {
	fs        afero.Fs
	path      string
	columns   []string
	batchSize int
}

func NewParquet(fs afero.Fs, path string, batchSize int) (*ParquetDataset, error) {
	d := &ParquetDataset{fs: fs, path: path, batchSize: batchSize}

	err := d.withFile(func(pqFile *pq.File) error {
		for _, path := range pqFile.Schema().Columns() {
			d.columns = append(d.columns, strings.Join(path, "."))
		}
		logger.Debugf("parquet dataset %s: %d columns, %d rows in %d row groups",
			d.path, len(d.columns), pqFile.NumRows(), len(pqFile.RowGroups()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (d *ParquetDataset) Name() string {
	return filepath.Base(d.path)
}

func (d *ParquetDataset) Columns() []string {
	return d.columns
}

func (d *ParquetDataset) Scan(ctx context.Context, fn func(batch []types.Row) error) error {
	return d.withFile(func(pqFile *pq.File) error {
		buf := make([]pq.Row, d.batchSize)
		for rgIdx, rowGroup := range pqFile.RowGroups() {
			if err := d.scanRowGroup(ctx, rowGroup, buf, fn); err != nil {
				return fmt.Errorf("row group %d: %w", rgIdx, err)
			}
		}
		return nil
	})
}

func (d *ParquetDataset) scanRowGroup(ctx context.Context, rowGroup pq.RowGroup, buf []pq.Row, fn func([]types.Row) error) error {
	rows := rowGroup.Rows()
	defer rows.Close()

	for {
		if err := cancelled(ctx); err != nil {
			return err
		}

		n, err := rows.ReadRows(buf)
		if n > 0 {
			batch := make([]types.Row, n)
			for i := 0; i < n; i++ {
				batch[i] = d.toRow(buf[i])
			}
			if err := fn(batch); err != nil {
				return err
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read rows of %s: %w", d.path, err)
		}
	}
}

func (d *ParquetDataset) Close() error {
	return nil
}

func (d *ParquetDataset) withFile(fn func(*pq.File) error) error {
	size, err := statSize(d.fs, d.path)
	if err != nil {
		return err
	}

	file, err := d.fs.Open(d.path)
	if err != nil {
		return fmt.Errorf("failed to open dataset %s: %s", d.path, err)
	}
	defer file.Close()

	pqFile, err := pq.OpenFile(file, size)
	if err != nil {
		return fmt.Errorf("failed to open parquet file %s: %w", d.path, err)
	}
	return fn(pqFile)
}

func (d *ParquetDataset) toRow(values pq.Row) types.Row {
	row := make(types.Row, len(d.columns))
	for _, value := range values {
		col := value.Column()
		if col < 0 || col >= len(row) || value.IsNull() {
			continue
		}
		cell := formatValue(value)
		if row[col] != "" {
			// repeated leaf: keep every element
			cell = row[col] + "," + cell
		}
		row[col] = cell
	}
	return row
}

func formatValue(value pq.Value) string {
	switch value.Kind() {
	case pq.Boolean:
		return strconv.FormatBool(value.Boolean())
	case pq.Int32:
		return strconv.FormatInt(int64(value.Int32()), 10)
	case pq.Int64:
		return strconv.FormatInt(value.Int64(), 10)
	case pq.Float:
		return strconv.FormatFloat(float64(value.Float()), 'g', -1, 32)
	case pq.Double:
		return strconv.FormatFloat(value.Double(), 'g', -1, 64)
	case pq.ByteArray, pq.FixedLenByteArray:
		return string(value.ByteArray())
	default:
		return value.String()
	}
}
