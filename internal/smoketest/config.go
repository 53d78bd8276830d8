// Package smoketest drives a running server over HTTP and checks the
// submission quota and aggregation contract end to end.
package smoketest

import (
	"errors"
	"time"

	"github.com/penumbrapenned/penned/pkg/logger"
)

// ErrVerification is returned when the server's behaviour does not match.
var ErrVerification = errors.New("smoke verification failed")

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL string        // Base URL of the service
	Week    string        // Week the entries are submitted to
	Authors int           // Number of synthetic authors
	Workers int           // Number of concurrent submitters
	Timeout time.Duration // HTTP request timeout
	RunID   string        // Makes author emails unique per run; generated when empty
	Verbose bool          // Log every submission
	Logger  logger.Logger // Defaults to logger.Get().Named("smoke")
}

// Submission is one generated entry.
type Submission struct {
	Author       int    `json:"-"`
	AuthorName   string `json:"authorName"`
	AuthorEmail  string `json:"authorEmail"`
	StoryTitle   string `json:"storyTitle"`
	StoryContent string `json:"storyContent"`
	StoryGenre   string `json:"storyGenre"`
}

// Stats holds run statistics.
type Stats struct {
	Submitted    int
	Accepted     int
	LimitReached int
	Failed       int
	BaselineSize int
	FinalSize    int
	StartTime    time.Time
	Duration     time.Duration
}

// outcome of one POST as seen by the client.
type outcome string

const (
	outcomeAccepted outcome = "accepted"
	outcomeLimit    outcome = "limit_reached"
	outcomeFailed   outcome = "failed"
)

type statsResponse struct {
	TotalEntries       int `json:"totalEntries"`
	UniqueAuthorEmails int `json:"uniqueAuthorEmails"`
}

type countResponse struct {
	Count int `json:"count"`
}
