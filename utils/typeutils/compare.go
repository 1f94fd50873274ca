package typeutils

import "math"

// Number is the set of types the predicate compares numerically.
type Number interface {
	~int64 | ~float64
}

// Compare returns 0 for equal, -1 if a < b, 1 if a > b. Floats compare exactly, without an
// epsilon. ok is false when either side is NaN: NaN is unordered and must never match.
func Compare[T Number](a, b T) (cmp int, ok bool) {
	if isNaN(a) || isNaN(b) {
		return 0, false
	}
	switch {
	case a < b:
		return -1, true
	case a > b:
		return 1, true
	}
	return 0, true
}

func isNaN[T Number](v T) bool {
	f, isFloat := any(v).(float64)
	return isFloat && math.IsNaN(f)
}
