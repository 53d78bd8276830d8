package repository

import (
	"time"

	"github.com/penumbrapenned/penned/internal/domain/model"
	"github.com/penumbrapenned/penned/pkg/logger"
)

// Option applies a configuration option to the SQLStore.
type Option func(*SQLStore)

// WithWeeks sets the week partitions the store accepts.
func WithWeeks(weeks []model.WeekID) Option {
	return func(s *SQLStore) {
		if len(weeks) > 0 {
			s.weeks = model.NewWeekSet(weeks)
		}
	}
}

// WithClock overrides the source of SubmittedAt timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SQLStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides entry id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *SQLStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithConflictRetries bounds how often a quota-guarded write is re-run after
// losing a sequence-number race.
func WithConflictRetries(n int) Option {
	return func(s *SQLStore) {
		if n > 0 {
			s.conflictRetries = n
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLStore) {
		if l != nil {
			s.logger = l
		}
	}
}
