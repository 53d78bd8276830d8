// Package submission enforces the per-author weekly quota in front of the
// entry store.
package submission

import (
	"context"
	"errors"
	"time"

	"github.com/penumbrapenned/penned/internal/adapters/repository"
	"github.com/penumbrapenned/penned/internal/domain/model"
	"github.com/penumbrapenned/penned/pkg/logger"
	"github.com/penumbrapenned/penned/pkg/metrics"
)

// MaxEntriesPerAuthor is the number of entries one email may hold in a week.
const MaxEntriesPerAuthor = 3

// Outcome classifies a submission attempt.
type Outcome string

const (
	OutcomeAccepted     Outcome = "accepted"
	OutcomeLimitReached Outcome = "limit_reached"
	OutcomeRejected     Outcome = "rejected"
)

// Reason explains a rejected submission.
type Reason string

const (
	ReasonValidation       Reason = "validation"
	ReasonStoreUnavailable Reason = "store_unavailable"
)

// Result is what Submit reports. Only the fields of the given Outcome are set:
// Entry for accepted, Count for limit reached, Reason and Err for rejected.
type Result struct {
	Outcome Outcome
	Entry   model.Entry
	Count   int
	Reason  Reason
	Err     error
}

// Retryable reports whether the same submission may succeed later.
func (r Result) Retryable() bool {
	return r.Outcome == OutcomeRejected && r.Reason == ReasonStoreUnavailable
}

// Gate admits entries while the author is under quota.
type Gate struct {
	store  repository.Store
	themes map[model.WeekID]model.Theme
	logger logger.Logger
}

// Option applies a configuration option to the Gate.
type Option func(*Gate)

// WithThemes fills empty theme fields of a draft from the week's theme.
func WithThemes(themes map[model.WeekID]model.Theme) Option {
	return func(g *Gate) {
		g.themes = themes
	}
}

// WithLogger sets a custom logger for the gate.
func WithLogger(l logger.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGate creates a gate writing to store.
func NewGate(store repository.Store, opts ...Option) *Gate {
	g := &Gate{store: store}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logger.Get().Named("submission")
	}
	return g
}

// Submit counts the author's entries for week and writes draft when under
// quota. The count is repeated inside the store's write transaction, so two
// concurrent submissions cannot both take the last slot.
func (g *Gate) Submit(ctx context.Context, week model.WeekID, draft model.Draft) Result {
	start := time.Now()
	res := g.submit(ctx, week, draft)

	metrics.RecordSubmission(string(week), string(res.Outcome))
	metrics.RecordSubmissionLatency(float64(time.Since(start).Microseconds()) / 1000)

	fields := []logger.Field{
		logger.String("week", string(week)),
		logger.String("outcome", string(res.Outcome)),
	}
	switch res.Outcome {
	case OutcomeAccepted:
		g.logger.Info(ctx, "entry accepted", append(fields, logger.String("id", res.Entry.ID))...)
	case OutcomeLimitReached:
		g.logger.Info(ctx, "entry refused", append(fields, logger.Int("count", res.Count))...)
	case OutcomeRejected:
		fields = append(fields, logger.String("reason", string(res.Reason)), logger.Error(res.Err))
		if res.Retryable() {
			g.logger.Error(ctx, "entry rejected", fields...)
		} else {
			g.logger.Warn(ctx, "entry rejected", fields...)
		}
	}
	return res
}

func (g *Gate) submit(ctx context.Context, week model.WeekID, draft model.Draft) Result {
	n, err := g.store.CountByAuthor(ctx, week, draft.AuthorEmail)
	if err != nil {
		return rejected(err)
	}
	if n >= MaxEntriesPerAuthor {
		return Result{Outcome: OutcomeLimitReached, Count: n}
	}

	if theme, ok := g.themes[week]; ok {
		if draft.ThemeTitle == "" {
			draft.ThemeTitle = theme.Title
		}
		if draft.ThemePrompt == "" {
			draft.ThemePrompt = theme.Prompt
		}
	}

	entry, err := g.store.CreateWithinQuota(ctx, week, draft, MaxEntriesPerAuthor)
	if err != nil {
		var limitErr *repository.LimitError
		if errors.As(err, &limitErr) {
			return Result{Outcome: OutcomeLimitReached, Count: limitErr.Count}
		}
		return rejected(err)
	}
	return Result{Outcome: OutcomeAccepted, Entry: entry}
}

func rejected(err error) Result {
	reason := ReasonStoreUnavailable
	if errors.Is(err, repository.ErrValidation) {
		reason = ReasonValidation
	}
	return Result{Outcome: OutcomeRejected, Reason: reason, Err: err}
}
