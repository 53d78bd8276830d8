// Package reconcile copies contest entries from the entry store into the
// publishing store, skipping entries already present there.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/penumbrapenned/penned/internal/adapters/cms"
	"github.com/penumbrapenned/penned/internal/domain/dedupe"
	"github.com/penumbrapenned/penned/internal/domain/model"
	"github.com/penumbrapenned/penned/pkg/logger"
	"github.com/penumbrapenned/penned/pkg/metrics"
)

// Key set origins reported in Report.KeySource.
const (
	KeySourceDestination = "destination"
	KeySourceEmpty       = "empty"
)

// variantsPerRecord sizes the key set: three separators by two week forms.
const variantsPerRecord = 6

// Source is the entry store side of a run.
type Source interface {
	ListAll(ctx context.Context, week model.WeekID) ([]model.Entry, error)
}

// Destination is the publishing store side of a run.
type Destination interface {
	ListContestEntries(ctx context.Context) ([]cms.Record, error)
	CreateContestEntry(ctx context.Context, p cms.Payload) error
}

// Report summarises one run.
type Report struct {
	Added      int
	Skipped    int
	Failed     int
	KeySource  string
	WeekErrors map[model.WeekID]error
	Duration   time.Duration
}

// Partial reports whether anything was left uncopied or unchecked.
func (r Report) Partial() bool {
	return r.Failed > 0 || len(r.WeekErrors) > 0 || r.KeySource == KeySourceEmpty
}

// Job is a one-directional, idempotent copy. It holds no state between runs.
type Job struct {
	source   Source
	dest     Destination
	weeks    []model.WeekID
	failOpen bool
	logger   logger.Logger
}

// NewJob creates a job copying from source to dest.
func NewJob(source Source, dest Destination, opts ...Option) *Job {
	j := &Job{
		source: source,
		dest:   dest,
		weeks:  append([]model.WeekID(nil), model.DefaultWeeks...),
	}
	for _, opt := range opts {
		opt(j)
	}
	if j.logger == nil {
		j.logger = logger.Get().Named("reconcile")
	}
	return j
}

// Run performs one pass. Per-entry and per-week failures are counted in the
// report and do not fail the run. The returned error is non-nil only when the
// destination key set is unavailable (and fail-open is off) or ctx ends.
func (j *Job) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	report := Report{WeekErrors: map[model.WeekID]error{}}

	seen, err := j.loadKeys(ctx, &report)
	if err != nil {
		report.Duration = time.Since(start)
		j.finish(ctx, report, "aborted")
		return report, err
	}

	entries := j.fetchWeeks(ctx, &report)

	for i, week := range j.weeks {
		for _, e := range entries[i] {
			if err := ctx.Err(); err != nil {
				report.Duration = time.Since(start)
				j.finish(ctx, report, "cancelled")
				return report, err
			}
			j.copyEntry(ctx, seen, week, e, &report)
		}
	}

	report.Duration = time.Since(start)
	result := "ok"
	if report.Partial() {
		result = "partial"
	}
	j.finish(ctx, report, result)
	return report, nil
}

func (j *Job) loadKeys(ctx context.Context, report *Report) (dedupe.Deduper, error) {
	records, err := j.dest.ListContestEntries(ctx)
	if err != nil {
		if !j.failOpen {
			j.logger.Error(ctx, "destination key set unavailable, aborting", logger.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrDestinationUnavailable, err)
		}
		j.logger.Warn(ctx, "destination key set unavailable, continuing with empty set", logger.Error(err))
		report.KeySource = KeySourceEmpty
		return dedupe.NewInMemoryDeduper(), nil
	}

	seen := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(len(records) * variantsPerRecord))
	for _, r := range records {
		seen.Record(ctx, dedupe.Variants(r.AuthorEmail, r.StoryTitle, r.WeekNumber)...)
	}
	report.KeySource = KeySourceDestination
	j.logger.Debug(ctx, "destination key set loaded",
		logger.Int("records", len(records)),
		logger.Int("keys", int(seen.Size())),
	)
	return seen, nil
}

// fetchWeeks lists every week concurrently. A failed week yields no entries
// and an entry in report.WeekErrors.
func (j *Job) fetchWeeks(ctx context.Context, report *Report) [][]model.Entry {
	entries := make([][]model.Entry, len(j.weeks))
	errs := make([]error, len(j.weeks))

	var g errgroup.Group
	for i, week := range j.weeks {
		g.Go(func() error {
			entries[i], errs[i] = j.source.ListAll(ctx, week)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		week := j.weeks[i]
		entries[i] = nil
		report.WeekErrors[week] = err
		metrics.RecordSyncWeekError(string(week))
		j.logger.Error(ctx, "week fetch failed", logger.String("week", string(week)), logger.Error(err))
	}
	return entries
}

func (j *Job) copyEntry(ctx context.Context, seen dedupe.Deduper, week model.WeekID, e model.Entry, report *Report) {
	key := dedupe.Key(e.AuthorEmail, e.StoryTitle, week)
	if seen.SeenAndRecord(ctx, key) {
		report.Skipped++
		return
	}

	if err := j.dest.CreateContestEntry(ctx, toPayload(week, e)); err != nil {
		seen.Unrecord(ctx, key)
		report.Failed++
		j.logger.Error(ctx, "entry copy failed",
			logger.String("week", string(week)),
			logger.String("id", e.ID),
			logger.Error(err),
		)
		return
	}
	report.Added++
}

func (j *Job) finish(ctx context.Context, r Report, result string) {
	metrics.RecordSyncRun(result, r.Added, r.Skipped, r.Failed,
		float64(r.Duration.Microseconds())/1000, time.Now().Unix())
	j.logger.Info(ctx, "sync finished",
		logger.String("result", result),
		logger.Int("added", r.Added),
		logger.Int("skipped", r.Skipped),
		logger.Int("failed", r.Failed),
		logger.Int("week_errors", len(r.WeekErrors)),
		logger.Duration("duration", r.Duration),
	)
}

func toPayload(week model.WeekID, e model.Entry) cms.Payload {
	city := ""
	if e.City != nil {
		city = *e.City
	}
	return cms.Payload{
		AuthorName:     e.AuthorName,
		StoryTitle:     e.StoryTitle,
		StoryContent:   e.StoryContent,
		Type:           cms.NonSelected,
		AuthorEmail:    e.AuthorEmail,
		AuthorCityName: city,
		ThemeTitle:     e.ThemeTitle,
		ThemePrompt:    e.ThemePrompt,
		StoryGenre:     e.StoryGenre,
		WeekNumber:     string(week),
	}
}
