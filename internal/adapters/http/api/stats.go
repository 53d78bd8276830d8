// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/penumbrapenned/penned/internal/domain/model"
	"github.com/penumbrapenned/penned/internal/domain/types"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsDependencies defines the interface for aggregated statistics.
type StatsDependencies interface {
	WeekResolver
	Stats(ctx context.Context, week model.WeekID) (model.AggregatedStats, error)
	ContestStats(ctx context.Context) (model.AggregatedStats, error)
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	deps          StatsDependencies
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps StatsDependencies, statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{deps: deps, statsProvider: statsProvider}
}

type contestStatsResponse struct {
	types.Stats
	Runtime map[string]interface{} `json:"runtime,omitempty"`
}

// HandleWeekStats handles GET /weeks/{week}/stats requests.
func (h *StatsHandler) HandleWeekStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.week_stats"
	week, ok := pathWeek(w, r, h.deps, op)
	if !ok {
		return
	}
	stats, err := h.deps.Stats(r.Context(), week)
	if err != nil {
		writeReadError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromStats(stats))
}

// HandleContestStats handles GET /stats requests.
func (h *StatsHandler) HandleContestStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.contest_stats"
	stats, err := h.deps.ContestStats(r.Context())
	if err != nil {
		writeReadError(w, op, err)
		return
	}
	resp := contestStatsResponse{Stats: types.FromStats(stats)}
	if h.statsProvider != nil {
		resp.Runtime = h.statsProvider.GetStats()
	}
	writeJSON(w, http.StatusOK, resp)
}
