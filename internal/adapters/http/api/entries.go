package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/penumbrapenned/penned/internal/app"
	"github.com/penumbrapenned/penned/internal/domain/model"
	"github.com/penumbrapenned/penned/internal/domain/submission"
	"github.com/penumbrapenned/penned/internal/domain/types"
)

// maxEntryBody bounds a submitted entry; stories are long but not unbounded.
const maxEntryBody = 1 << 20

// EntriesDependencies defines the interface for entry operations.
type EntriesDependencies interface {
	WeekResolver
	Submit(ctx context.Context, week model.WeekID, draft model.Draft) (submission.Result, error)
	Entries(ctx context.Context, week model.WeekID) ([]model.Entry, error)
	CountByAuthor(ctx context.Context, week model.WeekID, email string) (int, error)
}

// EntriesHandler handles entry requests.
type EntriesHandler struct {
	deps EntriesDependencies
}

// NewEntriesHandler creates a new entries handler.
func NewEntriesHandler(deps EntriesDependencies) *EntriesHandler {
	return &EntriesHandler{deps: deps}
}

// entryRequest is the body of POST /weeks/{week}/entries. Curation fields are
// not accepted from submitters.
type entryRequest struct {
	AuthorName   string  `json:"authorName"`
	AuthorEmail  string  `json:"authorEmail"`
	City         *string `json:"city"`
	ThemeTitle   string  `json:"themeTitle"`
	ThemePrompt  string  `json:"themePrompt"`
	StoryTitle   string  `json:"storyTitle"`
	StoryContent string  `json:"storyContent"`
	StoryGenre   string  `json:"storyGenre"`
}

func (e entryRequest) draft() model.Draft {
	return model.Draft{
		AuthorName:   strings.TrimSpace(e.AuthorName),
		AuthorEmail:  strings.TrimSpace(e.AuthorEmail),
		City:         e.City,
		ThemeTitle:   e.ThemeTitle,
		ThemePrompt:  e.ThemePrompt,
		StoryTitle:   e.StoryTitle,
		StoryContent: e.StoryContent,
		StoryGenre:   e.StoryGenre,
	}
}

type acceptedResponse struct {
	Status string      `json:"status"`
	Entry  types.Entry `json:"entry"`
}

type limitResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Count   int    `json:"count"`
	Limit   int    `json:"limit"`
}

type countResponse struct {
	Week  string `json:"week"`
	Email string `json:"email"`
	Count int    `json:"count"`
}

// HandlePostEntry handles POST /weeks/{week}/entries requests.
func (h *EntriesHandler) HandlePostEntry(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_entry"
	week, ok := pathWeek(w, r, h.deps, op)
	if !ok {
		return
	}

	var req entryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEntryBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Submit(r.Context(), week, req.draft())
	if err != nil {
		if errors.Is(err, service.ErrNotStarted) {
			writeError(w, http.StatusServiceUnavailable, "not_ready", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	switch res.Outcome {
	case submission.OutcomeAccepted:
		writeJSON(w, http.StatusCreated, acceptedResponse{Status: "accepted", Entry: types.FromEntry(res.Entry)})
	case submission.OutcomeLimitReached:
		writeJSON(w, http.StatusTooManyRequests, limitResponse{
			Code:    "limit_reached",
			Message: "submission limit reached for this week",
			Count:   res.Count,
			Limit:   submission.MaxEntriesPerAuthor,
		})
	default:
		if res.Reason == submission.ReasonValidation {
			writeError(w, http.StatusBadRequest, "validation_failed", Wrap(op, res.Err))
			return
		}
		w.Header().Set("Retry-After", retryAfterSeconds)
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", Wrap(op, res.Err))
	}
}

// HandleListEntries handles GET /weeks/{week}/entries requests.
func (h *EntriesHandler) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_entries"
	week, ok := pathWeek(w, r, h.deps, op)
	if !ok {
		return
	}
	entries, err := h.deps.Entries(r.Context(), week)
	if err != nil {
		writeReadError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, types.FromEntries(entries))
}

// HandleAuthorCount handles GET /weeks/{week}/authors/count?email= requests.
func (h *EntriesHandler) HandleAuthorCount(w http.ResponseWriter, r *http.Request) {
	const op = "api.author_count"
	week, ok := pathWeek(w, r, h.deps, op)
	if !ok {
		return
	}
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrMissingEmail))
		return
	}
	n, err := h.deps.CountByAuthor(r.Context(), week, email)
	if err != nil {
		writeReadError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Week: string(week), Email: email, Count: n})
}
