package reconcile

import (
	"github.com/penumbrapenned/penned/internal/domain/model"
	"github.com/penumbrapenned/penned/pkg/logger"
)

// Option applies a configuration option to the Job.
type Option func(*Job)

// WithWeeks sets the week partitions copied, in processing order.
func WithWeeks(weeks []model.WeekID) Option {
	return func(j *Job) {
		if len(weeks) > 0 {
			j.weeks = append([]model.WeekID(nil), weeks...)
		}
	}
}

// WithFailOpen makes a failed destination read proceed with an empty key
// set instead of aborting. Every source entry is then written again.
func WithFailOpen(enabled bool) Option {
	return func(j *Job) {
		j.failOpen = enabled
	}
}

// WithLogger sets a custom logger for the job.
func WithLogger(l logger.Logger) Option {
	return func(j *Job) {
		if l != nil {
			j.logger = l
		}
	}
}
