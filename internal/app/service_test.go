package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/penumbrapenned/penned/internal/adapters/repository"
	service "github.com/penumbrapenned/penned/internal/app"
	"github.com/penumbrapenned/penned/internal/domain/model"
	"github.com/penumbrapenned/penned/internal/domain/submission"
	"github.com/penumbrapenned/penned/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init(logger.WithOutput(io.Discard))
	if err != nil {
		panic(err)
	}
}

func openStore(ctx context.Context) *repository.SQLStore {
	s, err := repository.Open(ctx, ":memory:", repository.WithLogger(logger.Nop()))
	So(err, ShouldBeNil)
	return s
}

func draft(name, email, title string) model.Draft {
	return model.Draft{
		AuthorName:   name,
		AuthorEmail:  email,
		StoryTitle:   title,
		StoryContent: "It was a dark and stormy night.",
		StoryGenre:   "Gothic",
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service without a store", t, func() {
		svc := service.New()

		Convey("Then it cannot start", func() {
			So(errors.Is(svc.Start(context.Background()), service.ErrNoStore), ShouldBeTrue)
		})

		Convey("Then operations report it is not started", func() {
			_, err := svc.Submit(context.Background(), "week-1", draft("A", "a@x.com", "T"))
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("Then the default weeks are open", func() {
			So(svc.Weeks(), ShouldResemble, model.DefaultWeeks)
			w, err := svc.ResolveWeek("2")
			So(err, ShouldBeNil)
			So(w, ShouldEqual, model.WeekID("week-2"))
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		svc := service.New(service.WithStore(openStore(ctx)))
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Then it is marked as started", func() {
			defer svc.Stop()
			So(svc.GetStats()["started"], ShouldEqual, true)
			So(svc.GetStats()["syncEnabled"], ShouldEqual, false)
		})

		Convey("When starting it twice", func() {
			defer svc.Stop()
			So(svc.Start(ctx), ShouldBeNil)
		})

		Convey("When stopping it", func() {
			svc.Stop()

			Convey("Then it is marked as stopped and stop is idempotent", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				svc.Stop()
			})
		})
	})
}

func TestService_SubmitAndStats(t *testing.T) {
	Convey("Given a started service with a themed week", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		svc := service.New(
			service.WithStore(openStore(ctx)),
			service.WithWeeks([]model.WeekID{"week-1", "week-2"}),
			service.WithThemes(map[model.WeekID]model.Theme{"week-1": {Title: "Moth", Prompt: "Drawn to it."}}),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When an author submits four times", func() {
			var last submission.Result
			for i := 0; i < 4; i++ {
				res, err := svc.Submit(ctx, "week-1", draft("Ann", "ann@x.com", fmt.Sprintf("T%d", i)))
				So(err, ShouldBeNil)
				last = res
			}

			Convey("Then the fourth hits the limit", func() {
				So(last.Outcome, ShouldEqual, submission.OutcomeLimitReached)
				So(last.Count, ShouldEqual, submission.MaxEntriesPerAuthor)
			})

			Convey("Then entries carry the configured theme", func() {
				entries, err := svc.Entries(ctx, "week-1")
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 3)
				So(entries[0].ThemeTitle, ShouldEqual, "Moth")
			})

			Convey("Then the author count is three", func() {
				n, err := svc.CountByAuthor(ctx, "week-1", "ann@x.com")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
			})
		})

		Convey("When entries by overlapping identities exist", func() {
			_, _ = svc.Submit(ctx, "week-1", draft("Ann", "ann@x.com", "A"))
			_, _ = svc.Submit(ctx, "week-1", draft("ANN", "Ann@x.com", "B"))
			_, _ = svc.Submit(ctx, "week-2", draft("Bo", "bo@x.com", "C"))

			Convey("Then week stats count emails exactly and names case-insensitively", func() {
				stats, err := svc.Stats(ctx, "week-1")
				So(err, ShouldBeNil)
				So(stats.TotalEntries, ShouldEqual, 2)
				So(stats.UniqueAuthorEmails, ShouldEqual, 2)
				So(stats.UniqueAuthorNames, ShouldEqual, 1)
				So(stats.RankedTop, ShouldBeEmpty)
			})

			Convey("Then contest stats span every week", func() {
				stats, err := svc.ContestStats(ctx)
				So(err, ShouldBeNil)
				So(stats.TotalEntries, ShouldEqual, 3)
			})
		})

		Convey("When syncing without a publishing store", func() {
			_, err := svc.Sync(ctx)
			So(errors.Is(err, service.ErrSyncDisabled), ShouldBeTrue)
		})
	})
}
