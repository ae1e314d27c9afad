// Package service implements the chat turn pipeline and the read-side operations around it.
package service

import (
	"errors"
	"fmt"

	"github.com/inucreativehrd21/FINAL-SERVER/internal/store"
)

var (
	// ErrInvalidInput means the request failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound means the resource does not exist or belongs to another user.
	ErrNotFound = errors.New("not found")
)

// notFound translates a store miss into ErrNotFound and passes other errors through.
func notFound(err error, what string, id int64) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return err
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
