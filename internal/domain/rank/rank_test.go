package rank_test

import (
	"testing"

	"github.com/penumbrapenned/penned/internal/domain/model"
	"github.com/penumbrapenned/penned/internal/domain/rank"
	. "github.com/smartystreets/goconvey/convey"
)

func entry(id string, r model.SpotlightRank) model.Entry {
	return model.Entry{ID: id, SpotlightRank: r}
}

func ids(entries []model.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestOrdinal(t *testing.T) {
	Convey("Given spotlight ranks", t, func() {
		Convey("Then known ranks follow FIRST..FIFTH precedence", func() {
			So(rank.Ordinal(model.RankFirst), ShouldEqual, 0)
			So(rank.Ordinal(model.RankSecond), ShouldEqual, 1)
			So(rank.Ordinal(model.RankThird), ShouldEqual, 2)
			So(rank.Ordinal(model.RankFourth), ShouldEqual, 3)
			So(rank.Ordinal(model.RankFifth), ShouldEqual, 4)
		})

		Convey("Then NONE, empty and unknown labels share the last ordinal", func() {
			So(rank.Ordinal(model.RankNone), ShouldEqual, 5)
			So(rank.Ordinal(""), ShouldEqual, 5)
			So(rank.Ordinal("SIXTH"), ShouldEqual, 5)
			So(rank.Ordinal("first"), ShouldEqual, 5)
		})

		Convey("Then IsRanked excludes only absent and NONE", func() {
			So(rank.IsRanked(model.RankFirst), ShouldBeTrue)
			So(rank.IsRanked("SIXTH"), ShouldBeTrue)
			So(rank.IsRanked(model.RankNone), ShouldBeFalse)
			So(rank.IsRanked(""), ShouldBeFalse)
		})
	})
}

func TestSort(t *testing.T) {
	Convey("Given a mixed list of ranked and unranked entries", t, func() {
		input := []model.Entry{
			entry("a", model.RankThird),
			entry("b", ""),
			entry("c", model.RankFirst),
			entry("d", model.RankNone),
			entry("e", model.RankSecond),
			entry("f", "BOGUS"),
			entry("g", model.RankFifth),
		}
		before := ids(input)

		Convey("When sorting", func() {
			sorted := rank.Sort(input)

			Convey("Then known ranks come first and unknowns keep input order", func() {
				So(ids(sorted), ShouldResemble, []string{"c", "e", "a", "g", "b", "d", "f"})
			})

			Convey("Then nothing is dropped", func() {
				So(len(sorted), ShouldEqual, len(input))
			})

			Convey("Then the input slice is untouched", func() {
				So(ids(input), ShouldResemble, before)
			})

			Convey("Then sorting again yields the same order", func() {
				So(ids(rank.Sort(input)), ShouldResemble, ids(sorted))
			})
		})

		Convey("When two entries share a rank", func() {
			sorted := rank.Sort([]model.Entry{
				entry("x", model.RankSecond),
				entry("y", model.RankFirst),
				entry("z", model.RankSecond),
			})

			Convey("Then ties keep their relative order", func() {
				So(ids(sorted), ShouldResemble, []string{"y", "x", "z"})
			})
		})
	})

	Convey("Given no entries", t, func() {
		So(rank.Sort(nil), ShouldNotBeNil)
		So(rank.Sort(nil), ShouldBeEmpty)
	})
}
