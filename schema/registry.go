// Package schema loads the declaration of queryable fields: one row per field with its name,
// value type (int, float or str) and a human description.
//
// A Registry is immutable once loaded and is shared by every request in the process, so it is
// safe for concurrent readers without locking.
package schema

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/datazip-inc/slicer/constants"
	"github.com/datazip-inc/slicer/types"
	"github.com/datazip-inc/slicer/utils/logger"
)

type Registry struct {
	fields []types.FieldDescriptor
	byName map[string]int
}

// LoadFile opens and loads a schema source from disk.
func LoadFile(path string) (*Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &SchemaError{Source: path, Reason: "cannot open source", Err: err}
	}
	defer file.Close()

	registry, err := load(path, file)
	if err != nil {
		return nil, err
	}

	logger.Infof("loaded %d fields from schema %s", registry.Len(), path)
	return registry, nil
}

// Load parses a tabular schema declaration with a header row. Columns are located by header
// name (name/type/description and their aliases); a header that names none of them falls back to
// positional order.
func Load(r io.Reader) (*Registry, error) {
	return load("<reader>", r)
}

func load(source string, r io.Reader) (*Registry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Source: source, Reason: "source is empty, expected a header row"}
	}
	if err != nil {
		return nil, parseError(source, err)
	}

	cols, err := locateColumns(header)
	if err != nil {
		return nil, &SchemaError{Source: source, Line: 1, Reason: err.Error()}
	}

	registry := &Registry{byName: make(map[string]int)}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseError(source, err)
		}
		line, _ := reader.FieldPos(0)

		if isBlank(row) {
			continue
		}

		name := strings.TrimSpace(row[cols.name])
		if name == "" {
			return nil, &SchemaError{Source: source, Line: line, Reason: "field name is empty"}
		}
		if _, exists := registry.byName[name]; exists {
			return nil, &SchemaError{Source: source, Line: line, Field: name, Reason: "duplicate field name"}
		}

		dataType, err := types.ParseDataType(row[cols.typ])
		if err != nil {
			return nil, &SchemaError{Source: source, Line: line, Field: name, Reason: "unrecognized type", Err: err}
		}

		var description string
		if cols.description >= 0 {
			description = strings.TrimSpace(row[cols.description])
		}

		registry.byName[name] = len(registry.fields)
		registry.fields = append(registry.fields, types.FieldDescriptor{
			Name:        name,
			Type:        dataType,
			Description: description,
		})
	}

	return registry, nil
}

// Lookup returns the descriptor for a field name (exact, case-sensitive match).
func (r *Registry) Lookup(name string) (types.FieldDescriptor, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return types.FieldDescriptor{}, false
	}
	return r.fields[idx], true
}

// Fields returns the descriptors in declaration order. The slice is a copy.
func (r *Registry) Fields() []types.FieldDescriptor {
	out := make([]types.FieldDescriptor, len(r.fields))
	copy(out, r.fields)
	return out
}

func (r *Registry) Len() int {
	return len(r.fields)
}

type columns struct {
	name, typ, description int
}

func locateColumns(header []string) (columns, error) {
	if len(header) < 2 {
		return columns{}, fmt.Errorf("expected name, type and description columns, found %d column(s)", len(header))
	}

	cols := columns{
		name:        findColumn(header, constants.SchemaNameColumns),
		typ:         findColumn(header, constants.SchemaTypeColumns),
		description: findColumn(header, constants.SchemaDescriptionColumns),
	}
	if cols.name >= 0 && cols.typ >= 0 {
		return cols, nil
	}
	if cols.name >= 0 || cols.typ >= 0 {
		return columns{}, fmt.Errorf("header %v names only one of the field name and type columns", header)
	}
	if len(header) < 3 {
		return columns{}, fmt.Errorf("expected name, type and description columns, found %d column(s)", len(header))
	}

	// unnamed header: name, type, description in that order
	return columns{name: 0, typ: 1, description: 2}, nil
}

func findColumn(header, candidates []string) int {
	for i, column := range header {
		normalized := strings.ToLower(strings.TrimSpace(column))
		for _, candidate := range candidates {
			if normalized == candidate {
				return i
			}
		}
	}
	return -1
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseError(source string, err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &SchemaError{Source: source, Line: csvErr.Line, Reason: "malformed source", Err: csvErr.Err}
	}
	return &SchemaError{Source: source, Reason: "malformed source", Err: err}
}
