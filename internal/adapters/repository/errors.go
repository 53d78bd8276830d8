package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds for entry store errors.
var (
	ErrValidation       = errors.New("entry validation failed")
	ErrStoreUnavailable = errors.New("entry store unavailable")
	ErrLimitReached     = errors.New("submission limit reached")
)

// LimitError reports the author's entry count observed when a quota-guarded
// write was refused. It matches ErrLimitReached with errors.Is.
type LimitError struct {
	Count int
	Limit int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: %d of %d entries used", ErrLimitReached, e.Count, e.Limit)
}

func (e *LimitError) Is(target error) bool { return target == ErrLimitReached }
