package reconcile

import "errors"

// ErrDestinationUnavailable aborts a run whose destination key set could not
// be read.
var ErrDestinationUnavailable = errors.New("reconcile: destination key set unavailable")
