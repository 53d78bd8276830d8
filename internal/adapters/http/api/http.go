// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/penumbrapenned/penned/internal/domain/model"
	"github.com/penumbrapenned/penned/internal/domain/submission"
	"github.com/penumbrapenned/penned/internal/reconcile"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	WeekResolver

	Submit(ctx context.Context, week model.WeekID, draft model.Draft) (submission.Result, error)
	Entries(ctx context.Context, week model.WeekID) ([]model.Entry, error)
	CountByAuthor(ctx context.Context, week model.WeekID, email string) (int, error)

	Stats(ctx context.Context, week model.WeekID) (model.AggregatedStats, error)
	ContestStats(ctx context.Context) (model.AggregatedStats, error)

	Sync(ctx context.Context) (reconcile.Report, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	entriesHandler *EntriesHandler
	syncHandler    *SyncHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps, statsProvider),
		entriesHandler: NewEntriesHandler(deps),
		syncHandler:    NewSyncHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleContestStats, "stats"))
	mux.HandleFunc("POST /sync", MetricsMiddleware(s.syncHandler.HandleSync, "sync"))

	mux.HandleFunc("POST /weeks/{week}/entries", MetricsMiddleware(s.entriesHandler.HandlePostEntry, "post_entry"))
	mux.HandleFunc("GET /weeks/{week}/entries", MetricsMiddleware(s.entriesHandler.HandleListEntries, "list_entries"))
	mux.HandleFunc("GET /weeks/{week}/authors/count", MetricsMiddleware(s.entriesHandler.HandleAuthorCount, "author_count"))
	mux.HandleFunc("GET /weeks/{week}/stats", MetricsMiddleware(s.statsHandler.HandleWeekStats, "week_stats"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
