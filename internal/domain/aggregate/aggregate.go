// Package aggregate derives contest statistics from a collection of entries.
package aggregate

import (
	"strings"

	"github.com/penumbrapenned/penned/internal/domain/model"
	"github.com/penumbrapenned/penned/internal/domain/rank"
)

// Compute builds the statistics view for entries. It is a pure function: the
// input is never modified and an empty input yields zero counts and empty
// (non-nil) lists.
//
// Author emails are counted by exact, case-sensitive value while author names
// are counted case-insensitively. The two identities are kept distinct.
func Compute(entries []model.Entry) model.AggregatedStats {
	emails := make(map[string]struct{}, len(entries))
	names := make(map[string]struct{}, len(entries))
	winners := make([]model.Entry, 0)
	ranked := make([]model.Entry, 0)

	for _, e := range entries {
		emails[e.AuthorEmail] = struct{}{}
		names[strings.ToLower(e.AuthorName)] = struct{}{}
		if e.IsWinner {
			winners = append(winners, e)
		}
		if rank.IsRanked(e.SpotlightRank) {
			ranked = append(ranked, e)
		}
	}

	return model.AggregatedStats{
		TotalEntries:       len(entries),
		UniqueAuthorEmails: len(emails),
		UniqueAuthorNames:  len(names),
		Winners:            winners,
		RankedTop:          rank.Sort(ranked),
	}
}
