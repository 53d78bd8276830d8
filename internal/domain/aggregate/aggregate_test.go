package aggregate_test

import (
	"testing"

	"github.com/penumbrapenned/penned/internal/domain/aggregate"
	"github.com/penumbrapenned/penned/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCompute(t *testing.T) {
	Convey("Given no entries", t, func() {
		stats := aggregate.Compute(nil)

		Convey("Then every figure is zero and lists are empty", func() {
			So(stats.TotalEntries, ShouldEqual, 0)
			So(stats.UniqueAuthorEmails, ShouldEqual, 0)
			So(stats.UniqueAuthorNames, ShouldEqual, 0)
			So(stats.Winners, ShouldNotBeNil)
			So(stats.Winners, ShouldBeEmpty)
			So(stats.RankedTop, ShouldNotBeNil)
			So(stats.RankedTop, ShouldBeEmpty)
		})
	})

	Convey("Given entries whose emails differ only by case", t, func() {
		entries := []model.Entry{
			{ID: "1", AuthorEmail: "a@x.com", AuthorName: "Jo"},
			{ID: "2", AuthorEmail: "A@X.com", AuthorName: "jo"},
			{ID: "3", AuthorEmail: "b@x.com", AuthorName: "Amy"},
		}

		stats := aggregate.Compute(entries)

		Convey("Then emails are counted case-sensitively", func() {
			So(stats.UniqueAuthorEmails, ShouldEqual, 3)
		})

		Convey("Then names are counted case-insensitively", func() {
			So(stats.UniqueAuthorNames, ShouldEqual, 2)
		})

		Convey("Then the total counts every entry", func() {
			So(stats.TotalEntries, ShouldEqual, 3)
		})
	})

	Convey("Given entries with ranks THIRD, FIRST, NONE, SECOND, FIFTH", t, func() {
		entries := []model.Entry{
			{ID: "third", SpotlightRank: model.RankThird},
			{ID: "first", SpotlightRank: model.RankFirst, IsWinner: true},
			{ID: "none", SpotlightRank: model.RankNone},
			{ID: "second", SpotlightRank: model.RankSecond},
			{ID: "fifth", SpotlightRank: model.RankFifth},
			{ID: "absent"},
		}
		snapshot := make([]model.Entry, len(entries))
		copy(snapshot, entries)

		stats := aggregate.Compute(entries)

		Convey("Then RankedTop excludes NONE and absent ranks and is ordered", func() {
			got := make([]model.SpotlightRank, len(stats.RankedTop))
			for i, e := range stats.RankedTop {
				got[i] = e.SpotlightRank
			}
			So(got, ShouldResemble, []model.SpotlightRank{
				model.RankFirst, model.RankSecond, model.RankThird, model.RankFifth,
			})
		})

		Convey("Then Winners holds only flagged entries", func() {
			So(len(stats.Winners), ShouldEqual, 1)
			So(stats.Winners[0].ID, ShouldEqual, "first")
		})

		Convey("Then the input is unchanged", func() {
			So(entries, ShouldResemble, snapshot)
		})

		Convey("Then a second call yields identical output", func() {
			So(aggregate.Compute(entries), ShouldResemble, stats)
		})
	})
}
