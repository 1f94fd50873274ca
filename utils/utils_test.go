package utils

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestULID(t *testing.T) {
	before := ulid.Timestamp(time.Now())

	first := ULID()
	id, err := ulid.Parse(first)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, id.Time(), before)

	ids := make([]string, 1000)
	for i := range ids {
		ids[i] = ULID()
	}
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i], "ids sort in creation order")
	}
}

func TestULID_Concurrent(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]struct{}{}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := ULID()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 8*200)
}

func TestTimestampedFileName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 30, 0, time.UTC)
	assert.Equal(t, "20240309_140530_filtered.csv", TimestampedFileName(now, "filtered", "csv"))
}

func TestUnmarshalFile(t *testing.T) {
	type request struct {
		Dataset string `json:"dataset"`
	}

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "json", file: "request.json", content: `{"dataset": "variants.csv"}`},
		{name: "yaml", file: "request.yaml", content: "dataset: variants.csv\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			var got request
			require.NoError(t, UnmarshalFile(path, &got))
			assert.Equal(t, "variants.csv", got.Dataset)
		})
	}

	assert.Error(t, UnmarshalFile(filepath.Join(t.TempDir(), "absent.json"), &request{}))
}
