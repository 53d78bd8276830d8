// Package types contains the JSON shapes served by the HTTP API.
package types

import (
	"time"

	"github.com/penumbrapenned/penned/internal/domain/model"
	"github.com/penumbrapenned/penned/internal/reconcile"
)

// Entry is the read shape of a contest entry.
type Entry struct {
	ID            string    `json:"id"`
	WeekID        string    `json:"weekId"`
	AuthorName    string    `json:"authorName"`
	AuthorEmail   string    `json:"authorEmail"`
	City          *string   `json:"city,omitempty"`
	ThemeTitle    string    `json:"themeTitle"`
	ThemePrompt   string    `json:"themePrompt"`
	StoryTitle    string    `json:"storyTitle"`
	StoryContent  string    `json:"storyContent"`
	StoryGenre    string    `json:"storyGenre"`
	SubmittedAt   time.Time `json:"submittedAt"`
	JudgeNotes    *string   `json:"judgeNotes,omitempty"`
	SpotlightRank string    `json:"spotlightRank,omitempty"`
	IsWinner      bool      `json:"isWinner"`
}

// Stats is the read shape of aggregated statistics.
type Stats struct {
	TotalEntries       int     `json:"totalEntries"`
	UniqueAuthorEmails int     `json:"uniqueAuthorEmails"`
	UniqueAuthorNames  int     `json:"uniqueAuthorNames"`
	Winners            []Entry `json:"winners"`
	RankedTop          []Entry `json:"rankedTop"`
}

// SyncReport is the read shape of one reconciliation run.
type SyncReport struct {
	Added      int               `json:"added"`
	Skipped    int               `json:"skipped"`
	Failed     int               `json:"failed"`
	KeySource  string            `json:"keySource,omitempty"`
	WeekErrors map[string]string `json:"weekErrors,omitempty"`
	Partial    bool              `json:"partial"`
	DurationMs int64             `json:"durationMs"`
}

// FromEntry converts a domain entry.
func FromEntry(e model.Entry) Entry {
	return Entry{
		ID:            e.ID,
		WeekID:        string(e.WeekID),
		AuthorName:    e.AuthorName,
		AuthorEmail:   e.AuthorEmail,
		City:          e.City,
		ThemeTitle:    e.ThemeTitle,
		ThemePrompt:   e.ThemePrompt,
		StoryTitle:    e.StoryTitle,
		StoryContent:  e.StoryContent,
		StoryGenre:    e.StoryGenre,
		SubmittedAt:   e.SubmittedAt,
		JudgeNotes:    e.JudgeNotes,
		SpotlightRank: string(e.SpotlightRank),
		IsWinner:      e.IsWinner,
	}
}

// FromEntries converts a list, never returning nil.
func FromEntries(entries []model.Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = FromEntry(e)
	}
	return out
}

// FromStats converts aggregated statistics.
func FromStats(s model.AggregatedStats) Stats {
	return Stats{
		TotalEntries:       s.TotalEntries,
		UniqueAuthorEmails: s.UniqueAuthorEmails,
		UniqueAuthorNames:  s.UniqueAuthorNames,
		Winners:            FromEntries(s.Winners),
		RankedTop:          FromEntries(s.RankedTop),
	}
}

// FromReport converts a reconciliation report.
func FromReport(r reconcile.Report) SyncReport {
	out := SyncReport{
		Added:      r.Added,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		KeySource:  r.KeySource,
		Partial:    r.Partial(),
		DurationMs: r.Duration.Milliseconds(),
	}
	if len(r.WeekErrors) > 0 {
		out.WeekErrors = make(map[string]string, len(r.WeekErrors))
		for w, err := range r.WeekErrors {
			out.WeekErrors[string(w)] = err.Error()
		}
	}
	return out
}
