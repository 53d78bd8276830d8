package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/penumbrapenned/penned/internal/domain/model"
	"github.com/penumbrapenned/penned/pkg/logger"
	"github.com/penumbrapenned/penned/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultConflictRetries = 3
	memoryPath             = ":memory:"
	fileDSNParams          = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
)

// Store operation names used for metrics and error context.
const (
	opCount    = "count_by_author"
	opList     = "list_all"
	opListAll  = "list_all_weeks"
	opCreate   = "create"
	opMigrate  = "migrate"
	opPing     = "ping"
	opQuotaTry = "create_within_quota"
)

// SQLStore implements Store on SQLite through GORM. All access goes through a
// single connection, so transactions are serialised within the process.
type SQLStore struct {
	db              *gorm.DB
	weeks           model.WeekSet
	now             func() time.Time
	newID           func() string
	conflictRetries int
	logger          logger.Logger
}

var _ Store = (*SQLStore)(nil)

// Open connects to the SQLite database at path (":memory:" for a private
// in-memory database) and migrates the entries table.
func Open(ctx context.Context, path string, opts ...Option) (*SQLStore, error) {
	s := &SQLStore{
		weeks:           model.NewWeekSet(model.DefaultWeeks),
		now:             time.Now,
		newID:           uuid.NewString,
		conflictRetries: defaultConflictRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("repository")
	}

	dsn := path
	if path != memoryPath && !strings.Contains(path, "?") {
		dsn = path + fileDSNParams
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return s.now().UTC() },
	})
	if err != nil {
		return nil, unavailable(opMigrate, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, unavailable(opMigrate, err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.WithContext(ctx).AutoMigrate(&entryRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, unavailable(opMigrate, err)
	}

	s.db = db
	s.logger.Info(ctx, "entry store ready", logger.String("path", path), logger.Int("weeks", len(s.weeks.All())))
	return s, nil
}

// Close releases the database connection.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database answers.
func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return unavailable(opPing, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unavailable(opPing, err)
	}
	return nil
}

// CountByAuthor returns the number of entries in week whose email equals email exactly.
func (s *SQLStore) CountByAuthor(ctx context.Context, week model.WeekID, email string) (int, error) {
	defer observe(opCount, time.Now())

	var n int64
	err := s.db.WithContext(ctx).
		Model(&entryRecord{}).
		Where("week_id = ? AND user_email = ?", string(week), email).
		Count(&n).Error
	if err != nil {
		return 0, unavailable(opCount, err)
	}
	return int(n), nil
}

// ListAll returns the entries of one week in submission order.
func (s *SQLStore) ListAll(ctx context.Context, week model.WeekID) ([]model.Entry, error) {
	defer observe(opList, time.Now())

	var records []entryRecord
	err := s.db.WithContext(ctx).
		Where("week_id = ?", string(week)).
		Order("submitted_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, unavailable(opList, err)
	}
	return toModels(records), nil
}

// ListAllWeeks returns the entries of every configured week, grouped by week
// in configured order.
func (s *SQLStore) ListAllWeeks(ctx context.Context) ([]model.Entry, error) {
	defer observe(opListAll, time.Now())

	weeks := s.weeks.All()
	names := make([]string, len(weeks))
	for i, w := range weeks {
		names[i] = string(w)
	}

	var records []entryRecord
	err := s.db.WithContext(ctx).
		Where("week_id IN ?", names).
		Order("submitted_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, unavailable(opListAll, err)
	}

	byWeek := make(map[string][]model.Entry, len(weeks))
	for _, r := range records {
		byWeek[r.WeekID] = append(byWeek[r.WeekID], r.toModel())
	}
	out := make([]model.Entry, 0, len(records))
	for _, w := range names {
		out = append(out, byWeek[w]...)
	}
	return out, nil
}

// Create persists draft without a quota check.
func (s *SQLStore) Create(ctx context.Context, week model.WeekID, draft model.Draft) (model.Entry, error) {
	defer observe(opCreate, time.Now())
	return s.insert(ctx, week, draft, 0)
}

// CreateWithinQuota counts and inserts inside one transaction. A lost race on
// the (week, email, seq) unique index re-runs the transaction, which then
// observes the winner's row.
func (s *SQLStore) CreateWithinQuota(ctx context.Context, week model.WeekID, draft model.Draft, limit int) (model.Entry, error) {
	defer observe(opQuotaTry, time.Now())
	if limit <= 0 {
		return model.Entry{}, fmt.Errorf("%w: quota limit must be positive", ErrValidation)
	}
	return s.insert(ctx, week, draft, limit)
}

// insert writes one entry; limit <= 0 disables the quota check.
func (s *SQLStore) insert(ctx context.Context, week model.WeekID, draft model.Draft, limit int) (model.Entry, error) {
	if err := s.validate(week, draft); err != nil {
		return model.Entry{}, err
	}

	for attempt := 1; ; attempt++ {
		entry, err := s.insertOnce(ctx, week, draft, limit)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt > s.conflictRetries {
			var limitErr *LimitError
			if errors.As(err, &limitErr) {
				return model.Entry{}, limitErr
			}
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				s.logger.Warn(ctx, "gave up after sequence conflicts",
					logger.String("week", string(week)),
					logger.Int("attempts", attempt),
				)
			}
			return model.Entry{}, unavailable(opCreate, err)
		}
		s.logger.Debug(ctx, "sequence conflict, retrying",
			logger.String("week", string(week)),
			logger.Int("attempt", attempt),
		)
	}
}

func (s *SQLStore) insertOnce(ctx context.Context, week model.WeekID, draft model.Draft, limit int) (model.Entry, error) {
	var created entryRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var usage struct {
			N      int
			MaxSeq int
		}
		err := tx.Model(&entryRecord{}).
			Select("COUNT(*) AS n, COALESCE(MAX(seq), 0) AS max_seq").
			Where("week_id = ? AND user_email = ?", string(week), draft.AuthorEmail).
			Scan(&usage).Error
		if err != nil {
			return err
		}
		if limit > 0 && usage.N >= limit {
			return &LimitError{Count: usage.N, Limit: limit}
		}

		created = newRecord(s.newID(), week, usage.MaxSeq+1, draft, s.now().UTC())
		return tx.Create(&created).Error
	})
	if err != nil {
		return model.Entry{}, err
	}
	return created.toModel(), nil
}

func (s *SQLStore) validate(week model.WeekID, draft model.Draft) error {
	if !s.weeks.Contains(week) {
		return fmt.Errorf("%w: unknown week %q", ErrValidation, week)
	}
	if missing := draft.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

func unavailable(op string, err error) error {
	metrics.RecordStoreError(op)
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}
