package mutate

import (
	"errors"
	"fmt"
)

var ErrCycle = errors.New("cannot move a card under itself")

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}
