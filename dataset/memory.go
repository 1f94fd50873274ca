package dataset

import (
	"context"

	"github.com/datazip-inc/slicer/constants"
	"github.com/datazip-inc/slicer/types"
)

// MemoryDataset serves rows already held in memory.
type MemoryDataset struct {
	name      string
	columns   []string
	rows      []types.Row
	batchSize int
}

func NewMemory(name string, columns []string, rows []types.Row, batchSize int) *MemoryDataset {
	if batchSize <= 0 {
		batchSize = constants.DefaultBatchSize
	}
	return &MemoryDataset{name: name, columns: columns, rows: rows, batchSize: batchSize}
}

func (m *MemoryDataset) Name() string {
	return m.name
}

func (m *MemoryDataset) Columns() []string {
	return m.columns
}

func (m *MemoryDataset) Scan(ctx context.Context, fn func(batch []types.Row) error) error {
	for start := 0; start < len(m.rows); start += m.batchSize {
		if err := cancelled(ctx); err != nil {
			return err
		}
		end := min(start+m.batchSize, len(m.rows))
		if err := fn(m.rows[start:end:end]); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryDataset) Close() error {
	return nil
}
