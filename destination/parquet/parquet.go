package parquet

import (
	"context"
	"fmt"
	"io"

	"github.com/datazip-inc/slicer/constants"
	"github.com/datazip-inc/slicer/destination"
	"github.com/datazip-inc/slicer/types"
	"github.com/datazip-inc/slicer/utils/typeutils"
	pqgo "github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
)

const rowBufferSize = 1024

var codecs = map[string]compress.Codec{
	"snappy":       &pqgo.Snappy,
	"gzip":         &pqgo.Gzip,
	"zstd":         &pqgo.Zstd,
	"lz4":          &pqgo.Lz4Raw,
	"none":         &pqgo.Uncompressed,
	"uncompressed": &pqgo.Uncompressed,
}

// Parquet writes the result as a single parquet file. Columns the schema declares as int or
// float are stored as INT64 or DOUBLE when every non-empty cell converts; anything else is a
// string column. Empty cells are nulls.
type Parquet struct {
	config *Config
}

func (p *Parquet) GetConfigRef() destination.Config {
	p.config = &Config{}
	return p.config
}

func (p *Parquet) Spec() any {
	return Config{}
}

func (p *Parquet) Type() string {
	return string(types.Parquet)
}

func (p *Parquet) Extension() string {
	return constants.ParquetFileExt
}

func (p *Parquet) Check(_ context.Context) error {
	return p.config.Validate()
}

func (p *Parquet) Write(ctx context.Context, w io.Writer, table *destination.Table) error {
	columns, err := p.resolveColumns(table)
	if err != nil {
		return err
	}

	group := make(orderedGroup, 0, len(columns))
	for _, col := range columns {
		group.add(col.name, pqgo.Optional(col.node()))
	}
	schema := pqgo.NewSchema("variants", group)
	for i := range columns {
		leaf, ok := schema.Lookup(columns[i].name)
		if !ok {
			return fmt.Errorf("column %s missing from parquet schema", columns[i].name)
		}
		columns[i].leaf = leaf.ColumnIndex
	}

	options := []pqgo.WriterOption{schema, pqgo.Compression(codecs[p.config.Compression])}
	if p.config.RowGroupRows > 0 {
		options = append(options, pqgo.MaxRowsPerRowGroup(p.config.RowGroupRows))
	}
	writer := pqgo.NewWriter(w, options...)

	buf := make([]pqgo.Row, 0, rowBufferSize)
	for idx, row := range table.Rows {
		if idx%rowBufferSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		buf = append(buf, toParquetRow(columns, row))
		if len(buf) == rowBufferSize {
			if _, err := writer.WriteRows(buf); err != nil {
				return fmt.Errorf("parquet write error: %s", err)
			}
			buf = buf[:0]
		}
	}
	if len(buf) > 0 {
		if _, err := writer.WriteRows(buf); err != nil {
			return fmt.Errorf("parquet write error: %s", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer after %d rows: %s", len(table.Rows), err)
	}
	return nil
}

type column struct {
	name     string
	position int
	kind     types.DataType
	leaf     int
}

func (c column) node() pqgo.Node {
	switch c.kind {
	case types.Int:
		return pqgo.Int(64)
	case types.Float:
		return pqgo.Leaf(pqgo.DoubleType)
	default:
		return pqgo.String()
	}
}

func (c column) value(cell string) (pqgo.Value, bool) {
	switch c.kind {
	case types.Int:
		v, ok := typeutils.CoerceInt64(cell)
		return pqgo.ValueOf(v), ok
	case types.Float:
		v, ok := typeutils.CoerceFloat64(cell)
		return pqgo.ValueOf(v), ok
	}
	return pqgo.ValueOf(cell), true
}

// resolveColumns decides the physical type of every column.
func (p *Parquet) resolveColumns(table *destination.Table) ([]column, error) {
	seen := make(map[string]struct{}, len(table.Columns))
	columns := make([]column, len(table.Columns))

	for i, name := range table.Columns {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate column %q cannot be written to parquet", name)
		}
		seen[name] = struct{}{}

		kind := types.String
		if !p.config.Untyped && i < len(table.Types) && table.Types[i].IsNumeric() {
			kind = table.Types[i]
		}
		columns[i] = column{name: name, position: i, kind: kind}
		if kind != types.String && !allConvert(columns[i], table.Rows) {
			columns[i].kind = types.String
		}
	}
	return columns, nil
}

func allConvert(col column, rows []types.Row) bool {
	for _, row := range rows {
		if col.position >= len(row) || row[col.position] == "" {
			continue
		}
		if _, ok := col.value(row[col.position]); !ok {
			return false
		}
	}
	return true
}

func toParquetRow(columns []column, row types.Row) pqgo.Row {
	out := make(pqgo.Row, len(columns))
	for _, col := range columns {
		var cell string
		if col.position < len(row) {
			cell = row[col.position]
		}

		value, ok := col.value(cell)
		if cell == "" || !ok {
			out[col.leaf] = pqgo.NullValue().Level(0, 0, col.leaf)
			continue
		}
		out[col.leaf] = value.Level(0, 1, col.leaf)
	}
	return out
}

func init() {
	destination.RegisteredWriters[types.Parquet] = func() destination.Writer {
		return new(Parquet)
	}
}
