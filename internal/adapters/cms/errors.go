package cms

import "errors"

// Sentinel kinds for publishing store errors.
var (
	ErrUnavailable      = errors.New("publishing store unavailable")
	ErrUnexpectedStatus = errors.New("publishing store returned unexpected status")
	ErrDecode           = errors.New("publishing store response could not be decoded")
)
