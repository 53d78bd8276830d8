package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrNoStore      = errors.New("service has no entry store")
	ErrSyncDisabled = errors.New("sync disabled: no publishing store configured")
)
