package submission_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/penumbrapenned/penned/internal/adapters/repository"
	"github.com/penumbrapenned/penned/internal/domain/model"
	"github.com/penumbrapenned/penned/internal/domain/submission"
	"github.com/penumbrapenned/penned/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// memStore is a map-backed Store whose failures can be switched on.
type memStore struct {
	mu        sync.Mutex
	entries   map[model.WeekID][]model.Entry
	countErr  error
	createErr error
	creates   int
	lastDraft model.Draft
}

func newMemStore() *memStore {
	return &memStore{entries: map[model.WeekID][]model.Entry{}}
}

func (m *memStore) CountByAuthor(_ context.Context, week model.WeekID, email string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.count(week, email), nil
}

func (m *memStore) count(week model.WeekID, email string) int {
	n := 0
	for _, e := range m.entries[week] {
		if e.AuthorEmail == email {
			n++
		}
	}
	return n
}

func (m *memStore) ListAll(_ context.Context, week model.WeekID) ([]model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Entry(nil), m.entries[week]...), nil
}

func (m *memStore) ListAllWeeks(ctx context.Context) ([]model.Entry, error) {
	var out []model.Entry
	for _, w := range model.DefaultWeeks {
		es, _ := m.ListAll(ctx, w)
		out = append(out, es...)
	}
	return out, nil
}

func (m *memStore) Create(ctx context.Context, week model.WeekID, d model.Draft) (model.Entry, error) {
	return m.CreateWithinQuota(ctx, week, d, 0)
}

func (m *memStore) CreateWithinQuota(_ context.Context, week model.WeekID, d model.Draft, limit int) (model.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	m.lastDraft = d
	if m.createErr != nil {
		return model.Entry{}, m.createErr
	}
	if missing := d.MissingFields(); len(missing) > 0 {
		return model.Entry{}, fmt.Errorf("%w: missing %v", repository.ErrValidation, missing)
	}
	if n := m.count(week, d.AuthorEmail); limit > 0 && n >= limit {
		return model.Entry{}, &repository.LimitError{Count: n, Limit: limit}
	}
	e := model.Entry{
		ID:           fmt.Sprintf("%s-%d", week, len(m.entries[week])+1),
		WeekID:       week,
		AuthorName:   d.AuthorName,
		AuthorEmail:  d.AuthorEmail,
		ThemeTitle:   d.ThemeTitle,
		ThemePrompt:  d.ThemePrompt,
		StoryTitle:   d.StoryTitle,
		StoryContent: d.StoryContent,
		StoryGenre:   d.StoryGenre,
		SubmittedAt:  time.Now(),
	}
	m.entries[week] = append(m.entries[week], e)
	return e, nil
}

func draft(email, title string) model.Draft {
	return model.Draft{
		AuthorName:   "Ada",
		AuthorEmail:  email,
		StoryTitle:   title,
		StoryContent: "Once.",
		StoryGenre:   "Horror",
	}
}

func TestGateQuota(t *testing.T) {
	Convey("Given a gate over an empty store", t, func() {
		ctx := context.Background()
		store := newMemStore()
		gate := submission.NewGate(store, submission.WithLogger(logger.Nop()))

		Convey("When an author submits four entries in one week", func() {
			var results []submission.Result
			for i := 0; i < 4; i++ {
				results = append(results, gate.Submit(ctx, "week-1", draft("a@x.com", fmt.Sprintf("S%d", i))))
			}

			Convey("Then three are accepted and the fourth reports the count", func() {
				for _, r := range results[:3] {
					So(r.Outcome, ShouldEqual, submission.OutcomeAccepted)
					So(r.Entry.ID, ShouldNotBeEmpty)
				}
				So(results[3].Outcome, ShouldEqual, submission.OutcomeLimitReached)
				So(results[3].Count, ShouldEqual, 3)
				So(results[3].Retryable(), ShouldBeFalse)
			})

			Convey("Then no write is attempted for the refused entry", func() {
				So(store.creates, ShouldEqual, 3)
			})

			Convey("Then other weeks and other authors are unaffected", func() {
				So(gate.Submit(ctx, "week-2", draft("a@x.com", "S")).Outcome, ShouldEqual, submission.OutcomeAccepted)
				So(gate.Submit(ctx, "week-1", draft("b@x.com", "S")).Outcome, ShouldEqual, submission.OutcomeAccepted)
			})

			Convey("Then a differently cased email counts as another author", func() {
				So(gate.Submit(ctx, "week-1", draft("A@x.com", "S")).Outcome, ShouldEqual, submission.OutcomeAccepted)
			})
		})

		Convey("When the store refuses a write that won a race against the pre-check", func() {
			store.createErr = &repository.LimitError{Count: 3, Limit: 3}
			res := gate.Submit(ctx, "week-1", draft("a@x.com", "late"))

			Convey("Then the result is limit reached, not an error", func() {
				So(res.Outcome, ShouldEqual, submission.OutcomeLimitReached)
				So(res.Count, ShouldEqual, 3)
			})
		})
	})
}

func TestGateRejections(t *testing.T) {
	Convey("Given a gate", t, func() {
		ctx := context.Background()
		store := newMemStore()
		gate := submission.NewGate(store, submission.WithLogger(logger.Nop()))

		Convey("When the count fails", func() {
			store.countErr = fmt.Errorf("count: %w", repository.ErrStoreUnavailable)
			res := gate.Submit(ctx, "week-1", draft("a@x.com", "S"))

			Convey("Then the submission is rejected as retryable and nothing is written", func() {
				So(res.Outcome, ShouldEqual, submission.OutcomeRejected)
				So(res.Reason, ShouldEqual, submission.ReasonStoreUnavailable)
				So(res.Retryable(), ShouldBeTrue)
				So(errors.Is(res.Err, repository.ErrStoreUnavailable), ShouldBeTrue)
				So(store.creates, ShouldEqual, 0)
			})
		})

		Convey("When the write fails", func() {
			store.createErr = fmt.Errorf("create: %w", repository.ErrStoreUnavailable)
			res := gate.Submit(ctx, "week-1", draft("a@x.com", "S"))
			So(res.Outcome, ShouldEqual, submission.OutcomeRejected)
			So(res.Retryable(), ShouldBeTrue)
		})

		Convey("When required fields are blank", func() {
			res := gate.Submit(ctx, "week-1", model.Draft{AuthorEmail: "a@x.com"})

			Convey("Then the submission is rejected for validation", func() {
				So(res.Outcome, ShouldEqual, submission.OutcomeRejected)
				So(res.Reason, ShouldEqual, submission.ReasonValidation)
				So(res.Retryable(), ShouldBeFalse)
			})
		})
	})
}

func TestGateThemes(t *testing.T) {
	Convey("Given a gate with a configured theme for week-2", t, func() {
		ctx := context.Background()
		store := newMemStore()
		gate := submission.NewGate(store,
			submission.WithLogger(logger.Nop()),
			submission.WithThemes(map[model.WeekID]model.Theme{
				"week-2": {Title: "Thresholds", Prompt: "A door that should stay shut."},
			}),
		)

		Convey("When the draft carries no theme", func() {
			res := gate.Submit(ctx, "week-2", draft("a@x.com", "S"))

			Convey("Then the configured theme is stored", func() {
				So(res.Entry.ThemeTitle, ShouldEqual, "Thresholds")
				So(res.Entry.ThemePrompt, ShouldEqual, "A door that should stay shut.")
			})
		})

		Convey("When the draft carries its own theme", func() {
			d := draft("a@x.com", "S")
			d.ThemeTitle = "Own"
			gate.Submit(ctx, "week-2", d)

			Convey("Then the provided title is kept and only the prompt is filled", func() {
				So(store.lastDraft.ThemeTitle, ShouldEqual, "Own")
				So(store.lastDraft.ThemePrompt, ShouldEqual, "A door that should stay shut.")
			})
		})
	})
}
