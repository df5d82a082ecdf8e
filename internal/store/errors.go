package store

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid wraps rejected input without a more specific error.
	ErrInvalid      = errors.New("invalid input")
	ErrInvalidSlug  = errors.New("enter a valid 'slug' consisting of letters, numbers, underscores or hyphens")
	ErrSlugTaken    = errors.New("slug already in use")
	ErrEmptyRequest = errors.New("relationship request needs a type, a root and at least one instance")
	ErrCardMismatch = errors.New("card id in body does not match target")
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// IsNotFound reports whether err (or anything it wraps) is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}
