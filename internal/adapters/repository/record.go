package repository

import (
	"time"

	"github.com/penumbrapenned/penned/internal/domain/model"
)

// entryRecord is the persisted shape of an entry. Column names follow the
// document fields of the original entry collection (user_name, user_email,
// user_story_title, ...). Seq numbers an author's entries within a week; the
// unique index on (week_id, user_email, seq) makes concurrent quota writes
// for the same author collide instead of both succeeding.
type entryRecord struct {
	ID               string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	WeekID           string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_week_email_seq,priority:1;index:ix_week_submitted,priority:1"`
	WeekNumber       int       `gorm:"type:INTEGER NOT NULL"`
	UserEmail        string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_week_email_seq,priority:2"`
	Seq              int       `gorm:"type:INTEGER NOT NULL;uniqueIndex:ux_week_email_seq,priority:3"`
	UserName         string    `gorm:"type:TEXT NOT NULL"`
	UserCity         *string   `gorm:"type:TEXT"`
	ThemeTitle       string    `gorm:"type:TEXT NOT NULL"`
	ThemePrompt      string    `gorm:"type:TEXT NOT NULL"`
	UserStoryTitle   string    `gorm:"type:TEXT NOT NULL"`
	UserStoryContent string    `gorm:"type:TEXT NOT NULL"`
	UserStoryGenre   string    `gorm:"type:TEXT NOT NULL"`
	JudgeNotes       *string   `gorm:"type:TEXT"`
	SpotlightRank    *string   `gorm:"type:TEXT"`
	IsWinner         bool      `gorm:"type:BOOLEAN NOT NULL;default:false"`
	SubmittedAt      time.Time `gorm:"type:DATETIME NOT NULL;index:ix_week_submitted,priority:2"`
}

// TableName implements the GORM tabler interface.
func (entryRecord) TableName() string { return "entries" }

func (r entryRecord) toModel() model.Entry {
	e := model.Entry{
		ID:           r.ID,
		WeekID:       model.WeekID(r.WeekID),
		AuthorName:   r.UserName,
		AuthorEmail:  r.UserEmail,
		City:         r.UserCity,
		ThemeTitle:   r.ThemeTitle,
		ThemePrompt:  r.ThemePrompt,
		StoryTitle:   r.UserStoryTitle,
		StoryContent: r.UserStoryContent,
		StoryGenre:   r.UserStoryGenre,
		SubmittedAt:  r.SubmittedAt.UTC(),
		JudgeNotes:   r.JudgeNotes,
		IsWinner:     r.IsWinner,
	}
	if r.SpotlightRank != nil {
		e.SpotlightRank = model.SpotlightRank(*r.SpotlightRank)
	}
	return e
}

func newRecord(id string, week model.WeekID, seq int, d model.Draft, at time.Time) entryRecord {
	return entryRecord{
		ID:               id,
		WeekID:           string(week),
		WeekNumber:       week.Number(),
		UserEmail:        d.AuthorEmail,
		Seq:              seq,
		UserName:         d.AuthorName,
		UserCity:         d.City,
		ThemeTitle:       d.ThemeTitle,
		ThemePrompt:      d.ThemePrompt,
		UserStoryTitle:   d.StoryTitle,
		UserStoryContent: d.StoryContent,
		UserStoryGenre:   d.StoryGenre,
		SubmittedAt:      at,
	}
}

func toModels(records []entryRecord) []model.Entry {
	out := make([]model.Entry, len(records))
	for i, r := range records {
		out[i] = r.toModel()
	}
	return out
}
