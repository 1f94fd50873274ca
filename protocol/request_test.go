package protocol

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/datazip-inc/slicer/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWhere(t *testing.T) {
	tests := []struct {
		name     string
		clause   string
		expected types.ConstraintInput
		wantErr  bool
	}{
		{
			name:     "numeric operator",
			clause:   "AF less_than 0.01",
			expected: types.ConstraintInput{Field: "AF", Operator: "less_than", Value: "0.01"},
		},
		{
			name:     "spaced operator",
			clause:   "POS greater than 100",
			expected: types.ConstraintInput{Field: "POS", Operator: "greater_than", Value: "100"},
		},
		{
			name:     "three word operator",
			clause:   "Gene does not contain BRCA",
			expected: types.ConstraintInput{Field: "Gene", Operator: "does_not_contain", Value: "BRCA"},
		},
		{
			name:     "value keeps inner spaces",
			clause:   "Gene contains  a  b",
			expected: types.ConstraintInput{Field: "Gene", Operator: "contains", Value: "a  b"},
		},
		{
			name:     "trailing space is part of the literal",
			clause:   "Gene contains BRCA ",
			expected: types.ConstraintInput{Field: "Gene", Operator: "contains", Value: "BRCA "},
		},
		{
			name:     "trailing space kept after multi word operator",
			clause:   "  Gene does not contain TP53\t",
			expected: types.ConstraintInput{Field: "Gene", Operator: "does_not_contain", Value: "TP53\t"},
		},
		{
			name:     "operator words inside value",
			clause:   "Gene contains does not",
			expected: types.ConstraintInput{Field: "Gene", Operator: "contains", Value: "does not"},
		},
		{
			name:     "unknown operator is kept for validation",
			clause:   "AF near 0.5",
			expected: types.ConstraintInput{Field: "AF", Operator: "near", Value: "0.5"},
		},
		{
			name:     "missing value is inactive",
			clause:   "AF equal_to",
			expected: types.ConstraintInput{Field: "AF", Operator: "equal_to", Value: ""},
		},
		{name: "empty", clause: "   ", wantErr: true},
		{name: "field only", clause: "AF", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseWhere(tt.clause)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLoadRequest(t *testing.T) {
	env := setup(t)

	path := filepath.Join(t.TempDir(), "request.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dataset: variants.csv
constraints:
  - field: AF
    operator: less_than
    value: "0.01"
`), 0o644))

	requestPath = path
	whereClauses = []string{"Gene contains BRCA"}

	request, err := loadRequest(true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.dataDir, "variants.csv"), request.Dataset)
	assert.Equal(t, []types.ConstraintInput{
		{Field: "AF", Operator: "less_than", Value: "0.01"},
		{Field: "Gene", Operator: "contains", Value: "BRCA"},
	}, request.Constraints)

	t.Run("flag overrides dataset", func(t *testing.T) {
		datasetSelector = "/abs/other.parquet"
		request, err := loadRequest(true)
		require.NoError(t, err)
		assert.Equal(t, "/abs/other.parquet", request.Dataset)
	})

	t.Run("dataset required", func(t *testing.T) {
		requestPath, datasetSelector = "", ""
		_, err := loadRequest(true)
		assert.Error(t, err)

		_, err = loadRequest(false)
		assert.NoError(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		requestPath = filepath.Join(t.TempDir(), "absent.json")
		_, err := loadRequest(false)
		assert.Error(t, err)
	})
}
