package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrUnknownWeek = errors.New("unknown week")

	ErrMissingEmail = fmt.Errorf("%w: missing email", ErrBadRequest)
)

// NewKind tags kind with the operation that produced it.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind tags err with op and classifies it as kind.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// Wrap tags err with op.
func Wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
