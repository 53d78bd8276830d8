// Package rank orders contest entries by their spotlight placement.
package rank

import (
	"slices"

	"github.com/penumbrapenned/penned/internal/domain/model"
)

// unranked is the ordinal shared by NONE, empty and unrecognised ranks.
const unranked = 5

var ordinals = map[model.SpotlightRank]int{
	model.RankFirst:  0,
	model.RankSecond: 1,
	model.RankThird:  2,
	model.RankFourth: 3,
	model.RankFifth:  4,
}

// Ordinal returns the precedence of r: FIRST is 0, FIFTH is 4 and anything
// else, including NONE and the empty rank, is 5.
func Ordinal(r model.SpotlightRank) int {
	if o, ok := ordinals[r]; ok {
		return o
	}
	return unranked
}

// IsRanked reports whether r is present and not the literal NONE. Unknown
// labels count as ranked; they sort after FIFTH.
func IsRanked(r model.SpotlightRank) bool {
	return r != "" && r != model.RankNone
}

// Compare orders a before b when a holds the better placement.
// Entries sharing an ordinal compare equal.
func Compare(a, b model.Entry) int {
	return Ordinal(a.SpotlightRank) - Ordinal(b.SpotlightRank)
}

// Sort returns a copy of entries in rank order. The sort is stable, so
// entries of equal ordinal keep their input order. The input is not modified.
func Sort(entries []model.Entry) []model.Entry {
	out := slices.Clone(entries)
	if out == nil {
		out = []model.Entry{}
	}
	slices.SortStableFunc(out, Compare)
	return out
}
