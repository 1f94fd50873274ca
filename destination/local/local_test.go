package local

import (
	"bytes"
	"context"
	"testing"

	"github.com/datazip-inc/slicer/destination"
	"github.com/datazip-inc/slicer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T, config Config) *Local {
	t.Helper()
	l := &Local{}
	ref := l.GetConfigRef().(*Config)
	*ref = config
	require.NoError(t, l.Check(context.Background()))
	return l
}

func TestLocal_Write(t *testing.T) {
	table := &destination.Table{
		Columns: []string{"CHROM", "POS", "Gene"},
		Rows: []types.Row{
			{"chr1", "100", "BRCA1"},
			{"chr2", "200", "BRCA2, partial"},
			{"chr3", "300", `say "hi"`},
		},
	}

	tests := []struct {
		name      string
		config    Config
		extension string
		expected  string
	}{
		{
			name:      "default csv",
			config:    Config{},
			extension: "csv",
			expected:  "CHROM,POS,Gene\nchr1,100,BRCA1\nchr2,200,\"BRCA2, partial\"\nchr3,300,\"say \"\"hi\"\"\"\n",
		},
		{
			name:      "tab separated",
			config:    Config{Delimiter: "\t"},
			extension: "tsv",
			expected:  "CHROM\tPOS\tGene\nchr1\t100\tBRCA1\nchr2\t200\tBRCA2, partial\nchr3\t300\t\"say \"\"hi\"\"\"\n",
		},
		{
			name:      "crlf",
			config:    Config{Delimiter: ";", CRLF: true},
			extension: "csv",
			expected:  "CHROM;POS;Gene\r\nchr1;100;BRCA1\r\nchr2;200;BRCA2, partial\r\nchr3;300;\"say \"\"hi\"\"\"\r\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := newLocal(t, tc.config)
			var buf bytes.Buffer
			require.NoError(t, l.Write(context.Background(), &buf, table))
			assert.Equal(t, tc.expected, buf.String())
			assert.Equal(t, tc.extension, l.Extension())
		})
	}
}

func TestLocal_HeaderOnly(t *testing.T) {
	l := newLocal(t, Config{})
	var buf bytes.Buffer
	require.NoError(t, l.Write(context.Background(), &buf, &destination.Table{Columns: []string{"CHROM", "POS"}, Rows: []types.Row{}}))
	assert.Equal(t, "CHROM,POS\n", buf.String())
}

func TestConfig_Validate(t *testing.T) {
	for _, bad := range []string{",,", "\"", "\n"} {
		config := Config{Delimiter: bad}
		assert.Error(t, config.Validate(), "delimiter %q", bad)
	}

	config := Config{}
	require.NoError(t, config.Validate())
	assert.Equal(t, ",", config.Delimiter)
}

func TestLocal_Registered(t *testing.T) {
	newFunc, ok := destination.RegisteredWriters[types.LocalCSV]
	require.True(t, ok)
	assert.Equal(t, "local", newFunc().Type())
}

func TestNewWriter_Config(t *testing.T) {
	tests := []struct {
		name      string
		config    *types.WriterConfig
		extension string
		expected  string
		wantErr   bool
	}{
		{
			name:      "defaults without writer settings",
			config:    &types.WriterConfig{Type: types.LocalCSV},
			extension: "csv",
			expected:  "CHROM,POS\nchr1,100\n",
		},
		{
			name:      "settings decoded into the writer",
			config:    &types.WriterConfig{Type: types.LocalCSV, WriterConfig: map[string]any{"delimiter": "\t"}},
			extension: "tsv",
			expected:  "CHROM\tPOS\nchr1\t100\n",
		},
		{
			name:    "invalid settings fail the check",
			config:  &types.WriterConfig{Type: types.LocalCSV, WriterConfig: map[string]any{"delimiter": "\""}},
			wantErr: true,
		},
	}

	table := &destination.Table{Columns: []string{"CHROM", "POS"}, Rows: []types.Row{{"chr1", "100"}}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer, err := destination.NewWriter(context.Background(), tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.extension, writer.Extension())

			var buf bytes.Buffer
			require.NoError(t, writer.Write(context.Background(), &buf, table))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}
