// Package store owns the bridge's persisted state: conversation history
// files, persona directives, and the cost log. All state lives in flat
// files under configured directories; this process is the only writer.
package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidID indicates an identifier that cannot be mapped to a state file.
var ErrInvalidID = errors.New("invalid identifier")

// SanitizeID maps a conversation or persona identifier to a filesystem-safe
// name. WhatsApp JIDs contain '@', which is replaced with '_'. Identifiers
// that could escape the state directory are rejected.
func SanitizeID(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if strings.Contains(id, "/") || strings.Contains(id, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	for _, r := range id {
		if r < 0x20 || r == 0x7f {
			return "", fmt.Errorf("%w: control character in id", ErrInvalidID)
		}
	}
	return strings.ReplaceAll(id, "@", "_"), nil
}
