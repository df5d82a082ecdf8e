package store

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random (v4) UUID string; all stored entities use them.
func NewID() string {
	return uuid.NewString()
}

// IsID reports whether s looks like a stored entity id.
func IsID(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
