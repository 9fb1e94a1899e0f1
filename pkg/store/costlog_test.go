package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostLogWriteAppendsOneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "costs.jsonl")
	w := NewCostLogWriter(path)

	require.NoError(t, w.Write(map[string]any{"total_cost_usd": 0.001}))
	require.NoError(t, w.Write(map[string]any{"total_cost_usd": 0.002}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, 0.001, first["total_cost_usd"])
}

func TestCostLogWriteRejectsUnencodableRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "costs.jsonl")
	w := NewCostLogWriter(path)

	err := w.Write(map[string]any{"bad": make(chan int)})
	require.Error(t, err)

	// Nothing may be written when encoding fails.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
