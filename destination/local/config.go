package local

import (
	"fmt"
	"unicode/utf8"

	"github.com/datazip-inc/slicer/utils"
)

type Config struct {
	// Delimiter between cells, one character; "," by default and "\t" writes a .tsv file
	Delimiter string `json:"delimiter,omitempty"`
	CRLF      bool   `json:"crlf,omitempty"`
}

func (c *Config) Validate() error {
	if c.Delimiter == "" {
		c.Delimiter = ","
	}
	r, size := utf8.DecodeRuneInString(c.Delimiter)
	if size != len(c.Delimiter) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return fmt.Errorf("invalid delimiter %q: expected a single character other than a quote or newline", c.Delimiter)
	}
	return utils.Validate(c)
}

func (c *Config) delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}
