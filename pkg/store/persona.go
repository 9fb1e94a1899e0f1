package store

import (
	"os"
	"path/filepath"
	"strings"
)

// PersonaStore loads persona directives kept as one UTF-8 text file per
// persona id. The files are read-only from the bridge's perspective.
type PersonaStore struct {
	dir string
}

// NewPersonaStore creates a store rooted at dir.
func NewPersonaStore(dir string) *PersonaStore {
	return &PersonaStore{dir: dir}
}

// Load returns the persona directive for the id, or "" when no usable
// directive exists. Missing, empty, and unreadable files all degrade to "".
func (s *PersonaStore) Load(personaID string) string {
	name, err := SanitizeID(personaID)
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
