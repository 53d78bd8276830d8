package api

import (
	"errors"
	"net/http"

	"github.com/penumbrapenned/penned/internal/adapters/repository"
	service "github.com/penumbrapenned/penned/internal/app"
	"github.com/penumbrapenned/penned/internal/domain/model"
)

// WeekResolver canonicalises a week path segment against the open weeks.
type WeekResolver interface {
	ResolveWeek(raw string) (model.WeekID, error)
}

// pathWeek reads {week} from the route. On failure it has already written a
// 404 and returns false.
func pathWeek(w http.ResponseWriter, r *http.Request, weeks WeekResolver, op string) (model.WeekID, bool) {
	week, err := weeks.ResolveWeek(r.PathValue("week"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_week", WrapKind(op, ErrUnknownWeek, err))
		return "", false
	}
	return week, true
}

// writeReadError maps a failed read to its status code.
func writeReadError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, repository.ErrStoreUnavailable) {
		w.Header().Set("Retry-After", retryAfterSeconds)
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", Wrap(op, err))
		return
	}
	if errors.Is(err, service.ErrNotStarted) {
		writeError(w, http.StatusServiceUnavailable, "not_ready", Wrap(op, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
}

// retryAfterSeconds is sent with 503 responses.
const retryAfterSeconds = "5"
