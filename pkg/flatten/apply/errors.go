package apply

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceMissing reports that a move source no longer exists.
	ErrSourceMissing = errors.New("source no longer exists")

	// ErrDestinationExists reports that a move destination is already taken.
	ErrDestinationExists = errors.New("destination already exists")

	// ErrNotEmpty reports that a directory scheduled for deletion still has entries.
	ErrNotEmpty = errors.New("directory not empty")
)

// MoveError reports a move that could not be performed.
type MoveError struct {
	From string
	To   string
	Err  error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %s -> %s: %v", e.From, e.To, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// DeleteError reports a directory that could not be removed.
type DeleteError struct {
	Path string
	Err  error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.Path, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}
