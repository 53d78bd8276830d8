package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	service "github.com/penumbrapenned/penned/internal/app"
	"github.com/penumbrapenned/penned/internal/domain/types"
	"github.com/penumbrapenned/penned/internal/reconcile"
)

// SyncWriteTimeout replaces the server's write deadline for POST /sync, which
// makes one CMS write per missing entry. Larger backlogs belong to the sync
// subcommand.
const SyncWriteTimeout = 5 * time.Minute

// SyncDependencies defines the interface for on-demand reconciliation.
type SyncDependencies interface {
	Sync(ctx context.Context) (reconcile.Report, error)
}

// SyncHandler handles sync requests.
type SyncHandler struct {
	deps SyncDependencies
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(deps SyncDependencies) *SyncHandler {
	return &SyncHandler{deps: deps}
}

// HandleSync handles POST /sync requests. A partial run is still a 200; the
// body says what was left behind.
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	const op = "api.sync"
	// Recorders and some wrappers do not support deadlines.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Now().Add(SyncWriteTimeout))

	report, err := h.deps.Sync(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, types.FromReport(report))
	case errors.Is(err, service.ErrSyncDisabled):
		writeError(w, http.StatusNotImplemented, "sync_disabled", Wrap(op, err))
	case errors.Is(err, reconcile.ErrDestinationUnavailable):
		writeError(w, http.StatusBadGateway, "destination_unavailable", Wrap(op, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_ready", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
