package schema

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/datazip-inc/slicer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	registry, err := LoadFile(filepath.Join("testdata", "annotatedcsvheaders.csv"))
	require.NoError(t, err)
	require.Equal(t, 5, registry.Len())

	fields := registry.Fields()
	assert.Equal(t, []string{"CHROM", "POS", "Gene", "AF", "CADD_PHRED"}, names(fields))

	af, ok := registry.Lookup("AF")
	require.True(t, ok)
	assert.Equal(t, types.Float, af.Type)
	assert.Equal(t, "Allele frequency in gnomAD v3", af.Description)

	cadd, ok := registry.Lookup("CADD_PHRED")
	require.True(t, ok)
	assert.Equal(t, "CADD phred-scaled score, higher is more deleterious", cadd.Description)

	_, ok = registry.Lookup("af")
	assert.False(t, ok, "lookup is case-sensitive")
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected []types.FieldDescriptor
	}{
		{
			name:   "named columns in any order",
			source: "description,type,name\nallele frequency,float,AF\n",
			expected: []types.FieldDescriptor{
				{Name: "AF", Type: types.Float, Description: "allele frequency"},
			},
		},
		{
			name:   "unnamed header is positional",
			source: "a,b,c\nGene,str,symbol\nPOS,INT,position\n",
			expected: []types.FieldDescriptor{
				{Name: "Gene", Type: types.String, Description: "symbol"},
				{Name: "POS", Type: types.Int, Description: "position"},
			},
		},
		{
			name:   "blank rows and padding are ignored",
			source: "name,type,description\n  AF , float ,  freq \n,,\n",
			expected: []types.FieldDescriptor{
				{Name: "AF", Type: types.Float, Description: "freq"},
			},
		},
		{
			name:     "header only",
			source:   "name,type,description\n",
			expected: []types.FieldDescriptor{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			registry, err := Load(strings.NewReader(tc.source))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, registry.Fields())
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		line   int
		field  string
		reason string
	}{
		{name: "empty source", source: "", reason: "source is empty"},
		{name: "duplicate name", source: "name,type,description\nAF,float,a\nAF,float,b\n", line: 3, field: "AF", reason: "duplicate field name"},
		{name: "unknown type", source: "name,type,description\nAF,double,a\n", line: 2, field: "AF", reason: "unrecognized type"},
		{name: "empty name", source: "name,type,description\n,int,a\n", line: 2, reason: "field name is empty"},
		{name: "ragged row", source: "name,type,description\nAF,float\n", line: 2, reason: "malformed source"},
		{name: "unterminated quote", source: "name,type,description\nAF,float,\"oops\n", reason: "malformed source"},
		{name: "too few columns", source: "name\nAF\n", line: 1},
		{name: "half named header", source: "name,kind,notes\nAF,float,x\n", line: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			registry, err := Load(strings.NewReader(tc.source))
			require.Error(t, err)
			assert.Nil(t, registry, "no partial registry on failure")

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr))
			if tc.line > 0 {
				assert.Equal(t, tc.line, schemaErr.Line)
			}
			assert.Equal(t, tc.field, schemaErr.Field)
			if tc.reason != "" {
				assert.Contains(t, schemaErr.Reason, tc.reason)
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, err.Error(), "cannot open source")
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	registry, err := LoadFile(filepath.Join("testdata", "annotatedcsvheaders.csv"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, ok := registry.Lookup("Gene")
				assert.True(t, ok)
				assert.Len(t, registry.Fields(), 5)
			}
		}()
	}
	wg.Wait()
}

func names(fields []types.FieldDescriptor) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Name)
	}
	return out
}
