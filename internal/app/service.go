// Package service provides the contest service that implements the
// dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/penumbrapenned/penned/internal/adapters/repository"
	"github.com/penumbrapenned/penned/internal/domain/aggregate"
	"github.com/penumbrapenned/penned/internal/domain/model"
	"github.com/penumbrapenned/penned/internal/domain/submission"
	"github.com/penumbrapenned/penned/internal/reconcile"
	"github.com/penumbrapenned/penned/pkg/logger"
	"github.com/penumbrapenned/penned/pkg/metrics"
)

// Service implements the API dependencies for the contest.
type Service struct {
	mu sync.RWMutex

	// Core components
	store repository.Store
	dest  reconcile.Destination
	gate  *submission.Gate
	job   *reconcile.Job

	// Configuration
	weeks        model.WeekSet
	themes       map[model.WeekID]model.Theme
	syncInterval time.Duration
	failOpen     bool

	// Sync runs never overlap.
	syncMu     sync.Mutex
	lastReport *reconcile.Report
	lastSyncAt time.Time
	lastErr    error

	// State
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the entry store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithCMS sets the publishing store. Without it Sync reports ErrSyncDisabled.
func WithCMS(dest reconcile.Destination) Option {
	return func(s *Service) {
		s.dest = dest
	}
}

// WithWeeks sets the open week partitions.
func WithWeeks(weeks []model.WeekID) Option {
	return func(s *Service) {
		if len(weeks) > 0 {
			s.weeks = model.NewWeekSet(weeks)
		}
	}
}

// WithThemes sets the static theme of each week.
func WithThemes(themes map[model.WeekID]model.Theme) Option {
	return func(s *Service) {
		s.themes = themes
	}
}

// WithSyncInterval enables periodic reconciliation.
func WithSyncInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.syncInterval = d
		}
	}
}

// WithFailOpen lets sync proceed when the publishing store cannot be listed.
func WithFailOpen(enabled bool) Option {
	return func(s *Service) {
		s.failOpen = enabled
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		weeks:  model.NewWeekSet(model.DefaultWeeks),
		themes: map[model.WeekID]model.Theme{},
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the components and, when configured, the periodic sync.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return ErrNoStore
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.gate = submission.NewGate(s.store,
		submission.WithThemes(s.themes),
		submission.WithLogger(s.logger.Named("submission")),
	)
	if s.dest != nil {
		s.job = reconcile.NewJob(s.store, s.dest,
			reconcile.WithWeeks(s.weeks.All()),
			reconcile.WithFailOpen(s.failOpen),
			reconcile.WithLogger(s.logger.Named("reconcile")),
		)
	}

	s.stopCh = make(chan struct{})
	if s.job != nil && s.syncInterval > 0 {
		s.wg.Add(1)
		go s.syncLoop(ctx)
	}

	s.started = true
	s.logger.Info(ctx, "contest service started",
		logger.Int("weeks", len(s.weeks.All())),
		logger.Bool("syncEnabled", s.job != nil),
		logger.Duration("syncInterval", s.syncInterval),
	)
	return nil
}

// Stop halts the sync loop and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()

	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	s.logger.Info(context.Background(), "contest service stopped")
}

func (s *Service) syncLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			if _, err := s.Sync(ctx); err != nil {
				s.logger.Warn(ctx, "periodic sync failed", logger.Error(err))
			}
		}
	}
}

func (s *Service) components() (*submission.Gate, *reconcile.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.gate, s.job, nil
}

// Weeks returns the open weeks in order.
func (s *Service) Weeks() []model.WeekID {
	return s.weeks.All()
}

// ResolveWeek canonicalises raw and checks that the week is open.
func (s *Service) ResolveWeek(raw string) (model.WeekID, error) {
	return s.weeks.Resolve(raw)
}

// Submit passes draft through the submission gate.
func (s *Service) Submit(ctx context.Context, week model.WeekID, draft model.Draft) (submission.Result, error) {
	gate, _, err := s.components()
	if err != nil {
		return submission.Result{}, err
	}
	return gate.Submit(ctx, week, draft), nil
}

// Entries returns the entries of week in submission order.
func (s *Service) Entries(ctx context.Context, week model.WeekID) ([]model.Entry, error) {
	if _, _, err := s.components(); err != nil {
		return nil, err
	}
	return s.store.ListAll(ctx, week)
}

// CountByAuthor returns how many entries email holds in week.
func (s *Service) CountByAuthor(ctx context.Context, week model.WeekID, email string) (int, error) {
	if _, _, err := s.components(); err != nil {
		return 0, err
	}
	return s.store.CountByAuthor(ctx, week, email)
}

// Stats aggregates the entries of one week.
func (s *Service) Stats(ctx context.Context, week model.WeekID) (model.AggregatedStats, error) {
	entries, err := s.Entries(ctx, week)
	if err != nil {
		return model.AggregatedStats{}, err
	}
	return aggregate.Compute(entries), nil
}

// ContestStats aggregates the entries of every open week.
func (s *Service) ContestStats(ctx context.Context) (model.AggregatedStats, error) {
	if _, _, err := s.components(); err != nil {
		return model.AggregatedStats{}, err
	}
	entries, err := s.store.ListAllWeeks(ctx)
	if err != nil {
		return model.AggregatedStats{}, err
	}
	return aggregate.Compute(entries), nil
}

// Sync runs one reconciliation pass. Concurrent calls wait for each other.
func (s *Service) Sync(ctx context.Context) (reconcile.Report, error) {
	_, job, err := s.components()
	if err != nil {
		return reconcile.Report{}, err
	}
	if job == nil {
		return reconcile.Report{}, ErrSyncDisabled
	}

	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	report, err := job.Run(ctx)

	s.mu.Lock()
	s.lastReport = &report
	s.lastSyncAt = time.Now()
	s.lastErr = err
	s.mu.Unlock()

	return report, err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	weeks := s.weeks.All()
	names := make([]string, len(weeks))
	for i, w := range weeks {
		names[i] = string(w)
	}

	stats := map[string]interface{}{
		"started":             s.started,
		"weeks":               names,
		"maxEntriesPerAuthor": submission.MaxEntriesPerAuthor,
		"syncEnabled":         s.dest != nil,
		"syncInterval":        s.syncInterval.String(),
	}

	if s.lastReport != nil {
		last := map[string]interface{}{
			"at":      s.lastSyncAt.UTC().Format(time.RFC3339),
			"added":   s.lastReport.Added,
			"skipped": s.lastReport.Skipped,
			"failed":  s.lastReport.Failed,
			"partial": s.lastReport.Partial(),
		}
		if s.lastErr != nil {
			last["error"] = s.lastErr.Error()
		}
		stats["lastSync"] = last
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	goroutines := runtime.NumGoroutine()
	stats["goroutines"] = goroutines
	stats["heapAllocBytes"] = mem.HeapAlloc

	metrics.UpdateSystemGoroutineCount(goroutines)
	metrics.UpdateSystemMemoryUsage(mem.HeapAlloc)

	return stats
}
