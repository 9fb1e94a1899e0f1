package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/symbioza/bridge/pkg/tokens"
)

// maxHistoryLineBytes bounds a single persisted turn when scanning.
const maxHistoryLineBytes = 1 << 20

// Turn is one persisted conversation turn.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// HistoryStore loads and appends conversation history kept as one
// line-delimited JSON file per conversation. Appends are serialized per
// file, so the two turns written after a successful chain stay contiguous
// even when concurrent requests share a conversation id.
type HistoryStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewHistoryStore creates a store rooted at dir. The directory is created
// lazily on first append.
func NewHistoryStore(dir string) *HistoryStore {
	return &HistoryStore{dir: dir, locks: make(map[string]*sync.Mutex)}
}

// fileLock returns the mutex guarding one history file, creating it on
// first use.
func (s *HistoryStore) fileLock(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, exists := s.locks[path]
	if !exists {
		l = &sync.Mutex{}
		s.locks[path] = l
	}
	return l
}

func (s *HistoryStore) path(conversationID string) (string, error) {
	name, err := SanitizeID(conversationID)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name+".jsonl"), nil
}

// Load reads all turns for a conversation in stored order. A missing file
// yields an empty history; malformed lines are skipped.
func (s *HistoryStore) Load(conversationID string) ([]Turn, error) {
	path, err := s.path(conversationID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer f.Close()

	var turns []Turn
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxHistoryLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var turn Turn
		if err := json.Unmarshal([]byte(line), &turn); err != nil {
			continue
		}
		turns = append(turns, turn)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	return turns, nil
}

// Trim drops the oldest turns until the estimated token count of the
// remainder fits maxTokens.
func Trim(turns []Turn, maxTokens int) []Turn {
	total := 0
	for _, t := range turns {
		total += tokens.Estimate(t.Role + t.Text)
	}
	drop := 0
	for total > maxTokens && drop < len(turns) {
		total -= tokens.Estimate(turns[drop].Role + turns[drop].Text)
		drop++
	}
	return turns[drop:]
}

// Append writes turns to the end of the conversation's file, creating the
// parent directory on demand. The write is flushed before return. If the
// existing file does not end in a newline, one is inserted first so the
// appended records stay line-delimited.
func (s *HistoryStore) Append(conversationID string, turns []Turn) error {
	path, err := s.path(conversationID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	lock := s.fileLock(path)
	lock.Lock()
	defer lock.Unlock()

	needsNewline, err := missingTrailingNewline(path)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open history file for append: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if needsNewline {
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write history file: %w", err)
		}
	}
	enc := json.NewEncoder(w)
	for _, turn := range turns {
		if err := enc.Encode(turn); err != nil {
			return fmt.Errorf("failed to encode history turn: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush history file: %w", err)
	}
	return f.Sync()
}

// missingTrailingNewline reports whether path exists, is non-empty, and
// does not end with '\n'.
func missingTrailingNewline(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect history file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("failed to stat history file: %w", err)
	}
	if info.Size() == 0 {
		return false, nil
	}

	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, info.Size()-1); err != nil {
		return false, fmt.Errorf("failed to inspect history file: %w", err)
	}
	return buf[0] != '\n', nil
}
