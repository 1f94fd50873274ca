package parquet

import (
	"fmt"
	"strings"

	"github.com/datazip-inc/slicer/utils"
)

const DefaultCompression = "snappy"

type Config struct {
	// Compression codec: snappy (default), gzip, zstd, lz4, none
	Compression string `json:"compression,omitempty"`
	// RowGroupRows caps the rows per row group; 0 keeps the library default
	RowGroupRows int64 `json:"row_group_rows,omitempty" validate:"gte=0"`
	// Untyped writes every column as a string, even when the schema declares a numeric type
	Untyped bool `json:"untyped,omitempty"`
}

func (c *Config) Validate() error {
	c.Compression = strings.ToLower(strings.TrimSpace(c.Compression))
	if c.Compression == "" {
		c.Compression = DefaultCompression
	}
	if _, ok := codecs[c.Compression]; !ok {
		return fmt.Errorf("invalid compression codec: %s. Valid options are: snappy, gzip, zstd, lz4, none, uncompressed", c.Compression)
	}

	return utils.Validate(c)
}
