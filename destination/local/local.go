package local

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/datazip-inc/slicer/constants"
	"github.com/datazip-inc/slicer/destination"
	"github.com/datazip-inc/slicer/types"
	"github.com/datazip-inc/slicer/utils"
)

const flushEvery = 1024

// Local writes the result as delimited text with the dataset header preserved.
type Local struct {
	config *Config
}

func (l *Local) GetConfigRef() destination.Config {
	l.config = &Config{}
	return l.config
}

func (l *Local) Spec() any {
	return Config{}
}

func (l *Local) Type() string {
	return string(types.LocalCSV)
}

func (l *Local) Extension() string {
	return utils.Ternary(l.config != nil && l.config.Delimiter == "\t", constants.TSVFileExt, constants.CSVFileExt).(string)
}

func (l *Local) Check(_ context.Context) error {
	return l.config.Validate()
}

func (l *Local) Write(ctx context.Context, w io.Writer, table *destination.Table) error {
	writer := csv.NewWriter(w)
	writer.Comma = l.config.delimiter()
	writer.UseCRLF = l.config.CRLF

	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write header: %s", err)
	}

	for idx, row := range table.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %s", idx, err)
		}
		if (idx+1)%flushEvery == 0 {
			writer.Flush()
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func init() {
	destination.RegisteredWriters[types.LocalCSV] = func() destination.Writer {
		return new(Local)
	}
}
