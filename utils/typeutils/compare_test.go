package typeutils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	t.Run("int64", func(t *testing.T) {
		testCases := []struct {
			name     string
			a, b     int64
			expected int
		}{
			{"equal", 5, 5, 0},
			{"less", -1, 1, -1},
			{"greater", 10, 2, 1},
			{"max_vs_min", math.MaxInt64, math.MinInt64, 1},
			{"min_vs_max", math.MinInt64, math.MaxInt64, -1},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				cmp, ok := Compare(tc.a, tc.b)
				assert.True(t, ok)
				assert.Equal(t, tc.expected, cmp)
			})
		}
	})

	t.Run("float64", func(t *testing.T) {
		testCases := []struct {
			name     string
			a, b     float64
			expected int
		}{
			{"equal", 0.5, 0.5, 0},
			{"less", 0.0001, 0.01, -1},
			{"greater", 0.3, 0.01, 1},
			// no epsilon: values closer than 1e-6 are still different
			{"tiny_difference", 0.1000001, 0.1000002, -1},
			{"negative_zero", math.Copysign(0, -1), 0, 0},
			{"infinities", math.Inf(1), math.MaxFloat64, 1},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				cmp, ok := Compare(tc.a, tc.b)
				assert.True(t, ok)
				assert.Equal(t, tc.expected, cmp)
			})
		}
	})

	t.Run("nan_is_unordered", func(t *testing.T) {
		_, ok := Compare(math.NaN(), 1.0)
		assert.False(t, ok)
		_, ok = Compare(1.0, math.NaN())
		assert.False(t, ok)
		_, ok = Compare(math.NaN(), math.NaN())
		assert.False(t, ok)
	})
}
