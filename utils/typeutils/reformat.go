package typeutils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/datazip-inc/slicer/types"
)

var ErrNullValue = errors.New("null value")

// bounds of float64 values that convert to int64 without overflow
const (
	minInt64AsFloat = -9223372036854775808.0
	maxInt64AsFloat = 9223372036854775808.0
)

// ReformatValue parses a constraint literal into the Go type used for the data type:
// int64, float64 or string. Integer literals are strict ("3.0" is rejected).
func ReformatValue(dataType types.DataType, v string) (any, error) {
	switch dataType {
	case types.Int:
		return ReformatInt64(v)
	case types.Float:
		return ReformatFloat64(v)
	case types.String:
		return v, nil
	}
	return nil, fmt.Errorf("unsupported data type [%s]", dataType)
}

func ReformatInt64(v string) (int64, error) {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return 0, ErrNullValue
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %q as int: %s", v, numErrReason(err))
	}
	return parsed, nil
}

func ReformatFloat64(v string) (float64, error) {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return 0, ErrNullValue
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %q as float: %s", v, numErrReason(err))
	}
	return parsed, nil
}

// CoerceInt64 converts a dataset cell to int64. Unlike ReformatInt64 it also accepts integral
// floats ("3.0", "1e3") that fit in int64, since exported tables often carry ints as floats.
func CoerceInt64(cell string) (int64, bool) {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return 0, false
	}
	if parsed, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return parsed, true
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.Trunc(f) != f || f < minInt64AsFloat || f >= maxInt64AsFloat {
		return 0, false
	}
	return int64(f), true
}

// CoerceFloat64 converts a dataset cell to float64. Empty or malformed cells do not coerce.
func CoerceFloat64(cell string) (float64, bool) {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func numErrReason(err error) string {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		if errors.Is(numErr.Err, strconv.ErrRange) {
			return "value out of range"
		}
		return "invalid syntax"
	}
	return err.Error()
}
