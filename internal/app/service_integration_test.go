package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/penumbrapenned/penned/internal/adapters/cms"
	service "github.com/penumbrapenned/penned/internal/app"
	"github.com/penumbrapenned/penned/internal/reconcile"
	"github.com/penumbrapenned/penned/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// contestCMS is an in-memory weekly-contests collection served over HTTP.
type contestCMS struct {
	mu      sync.Mutex
	records []map[string]any
	down    bool
}

func (c *contestCMS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.down {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	switch r.Method {
	case http.MethodGet:
		start, _ := strconv.Atoi(r.URL.Query().Get("pagination[start]"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("pagination[limit]"))
		page := []map[string]any{}
		for i := start; i < len(c.records) && i < start+limit; i++ {
			page = append(page, map[string]any{"id": i + 1, "attributes": c.records[i]})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": page,
			"meta": map[string]any{"pagination": map[string]any{"total": len(c.records)}},
		})
	case http.MethodPost:
		var body struct {
			Data map[string]any `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		c.records = append(c.records, body.Data)
		w.WriteHeader(http.StatusOK)
	}
}

func (c *contestCMS) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service wired to a store and a publishing store", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		fake := &contestCMS{}
		srv := httptest.NewServer(fake)
		defer srv.Close()

		client, err := cms.New(srv.URL, cms.WithPageLimit(2), cms.WithLogger(logger.Nop()))
		So(err, ShouldBeNil)

		svc := service.New(
			service.WithStore(openStore(ctx)),
			service.WithCMS(client),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		for _, d := range []struct{ name, email, title string }{
			{"Ann", "ann@x.com", "One"},
			{"Ann", "ann@x.com", "Two"},
			{"Bo", "bo@x.com", "Three"},
		} {
			res, err := svc.Submit(ctx, "week-2", draft(d.name, d.email, d.title))
			So(err, ShouldBeNil)
			So(res.Entry.ID, ShouldNotBeEmpty)
		}

		Convey("When syncing twice", func() {
			first, err := svc.Sync(ctx)
			So(err, ShouldBeNil)
			second, err := svc.Sync(ctx)
			So(err, ShouldBeNil)

			Convey("Then entries are copied once", func() {
				So(first.Added, ShouldEqual, 3)
				So(second.Added, ShouldEqual, 0)
				So(second.Skipped, ShouldEqual, 3)
				So(fake.count(), ShouldEqual, 3)
			})

			Convey("Then the last run is reported in the stats", func() {
				last, ok := svc.GetStats()["lastSync"].(map[string]interface{})
				So(ok, ShouldBeTrue)
				So(last["skipped"], ShouldEqual, 3)
			})
		})

		Convey("When the publishing store is down", func() {
			fake.mu.Lock()
			fake.down = true
			fake.mu.Unlock()

			_, err := svc.Sync(ctx)

			Convey("Then the run aborts", func() {
				So(errors.Is(err, reconcile.ErrDestinationUnavailable), ShouldBeTrue)
				So(errors.Is(err, cms.ErrUnavailable), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service with periodic sync", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		fake := &contestCMS{}
		srv := httptest.NewServer(fake)
		defer srv.Close()

		client, err := cms.New(srv.URL, cms.WithLogger(logger.Nop()))
		So(err, ShouldBeNil)

		svc := service.New(
			service.WithStore(openStore(ctx)),
			service.WithCMS(client),
			service.WithSyncInterval(20*time.Millisecond),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		_, err = svc.Submit(ctx, "week-1", draft("Cy", "cy@x.com", "Tide"))
		So(err, ShouldBeNil)

		Convey("Then the entry reaches the publishing store without a manual run", func() {
			deadline := time.Now().Add(5 * time.Second)
			for fake.count() == 0 && time.Now().Before(deadline) {
				time.Sleep(10 * time.Millisecond)
			}
			So(fake.count(), ShouldEqual, 1)
		})
	})
}
