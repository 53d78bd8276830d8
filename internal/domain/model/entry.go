// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// SpotlightRank is the placement label a curator assigns after judging.
// The zero value means the entry has no rank.
type SpotlightRank string

// Known spotlight ranks, best first.
const (
	RankFirst  SpotlightRank = "FIRST"
	RankSecond SpotlightRank = "SECOND"
	RankThird  SpotlightRank = "THIRD"
	RankFourth SpotlightRank = "FOURTH"
	RankFifth  SpotlightRank = "FIFTH"
	RankNone   SpotlightRank = "NONE"
)

// Entry is one weekly-challenge submission.
type Entry struct {
	ID           string    // store-assigned, unique within a week
	WeekID       WeekID    // partition the entry belongs to
	AuthorName   string    // display name
	AuthorEmail  string    // opaque identity; quota and dedupe key
	City         *string   // optional
	ThemeTitle   string    // theme in effect at submission time
	ThemePrompt  string    // theme in effect at submission time
	StoryTitle   string    // submitted work
	StoryContent string    // submitted work
	StoryGenre   string    // submitted work
	SubmittedAt  time.Time // server-assigned, immutable

	// Curation fields. Never set by the submission path.
	JudgeNotes    *string
	SpotlightRank SpotlightRank
	IsWinner      bool
}

// Draft holds what a submitter provides for a new entry.
type Draft struct {
	AuthorName   string
	AuthorEmail  string
	City         *string
	ThemeTitle   string
	ThemePrompt  string
	StoryTitle   string
	StoryContent string
	StoryGenre   string
}

// MissingFields lists the required draft fields that are blank.
func (d Draft) MissingFields() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"authorName", d.AuthorName},
		{"authorEmail", d.AuthorEmail},
		{"storyTitle", d.StoryTitle},
		{"storyContent", d.StoryContent},
		{"storyGenre", d.StoryGenre},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// AggregatedStats is a derived, never-persisted view over a set of entries.
type AggregatedStats struct {
	TotalEntries       int
	UniqueAuthorEmails int
	UniqueAuthorNames  int
	Winners            []Entry
	RankedTop          []Entry
}
