package types

import (
	"fmt"
	"strings"
)

type DataType string

const (
	Int     DataType = "int"
	Float   DataType = "float"
	String  DataType = "str"
	Unknown DataType = "unknown"
)

// ParseDataType maps a schema spelling (int|float|str, any case) to a DataType.
func ParseDataType(raw string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(Int):
		return Int, nil
	case string(Float):
		return Float, nil
	case string(String):
		return String, nil
	}
	return Unknown, fmt.Errorf("unrecognized type %q, expected one of int, float, str", raw)
}

func (d DataType) IsNumeric() bool {
	return d == Int || d == Float
}

func (d DataType) String() string {
	return string(d)
}
