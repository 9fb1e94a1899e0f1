package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CostLogWriter appends one JSON record per completed chain to a
// line-delimited file. Records for failed or rejected chains are never
// written, so the log reflects only completed requests.
type CostLogWriter struct {
	path string
	mu   sync.Mutex
}

// NewCostLogWriter creates a writer targeting path. The file and its parent
// directory are created lazily on first write.
func NewCostLogWriter(path string) *CostLogWriter {
	return &CostLogWriter{path: path}
}

// Write appends one record. The record is marshalled before the file is
// opened, so a partial line is never emitted.
func (w *CostLogWriter) Write(record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode cost log record: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cost log directory: %w", err)
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open cost log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write cost log record: %w", err)
	}
	return f.Sync()
}
