package smoketest

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/penumbrapenned/penned/internal/domain/submission"
	"github.com/penumbrapenned/penned/pkg/logger"
)

// Worker configuration constants.
const (
	workerChannelMultiplier = 2
	progressInterval        = time.Second
)

var genres = []string{"Gothic", "Horror", "Literary", "Mystery", "Speculative"}

// Run executes the complete smoke test and returns its statistics. Every
// author submits one entry more than the weekly limit, concurrently.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	if cfg.Logger == nil {
		cfg.Logger = logger.Get().Named("smoke")
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()[:8]
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	log := cfg.Logger
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(cfg.Timeout)

	log.Info(ctx, "starting smoke test",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("week", cfg.Week),
		logger.Int("authors", cfg.Authors),
		logger.Int("workers", cfg.Workers),
		logger.String("runID", cfg.RunID),
	)

	if err := checkServiceHealth(ctx, client, cfg); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	var before statsResponse
	if err := client.getJSON(ctx, weekURL(cfg, "stats"), &before); err != nil {
		return stats, fmt.Errorf("baseline stats: %w", err)
	}
	stats.BaselineSize = before.TotalEntries

	subs := generate(cfg)
	perAuthor := submitAll(ctx, client, cfg, subs, stats)

	if err := verify(ctx, client, cfg, perAuthor, stats); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "smoke test passed",
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("limitReached", stats.LimitReached),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, cfg Config) error {
	resp, err := client.Get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != 200 {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

func weekURL(cfg Config, suffix string) string {
	return cfg.BaseURL + "/weeks/" + url.PathEscape(cfg.Week) + "/" + suffix
}

func authorEmail(cfg Config, author int) string {
	return fmt.Sprintf("smoke-%s-%03d@penned.test", cfg.RunID, author)
}

// generate builds MaxEntriesPerAuthor+1 submissions for each author.
func generate(cfg Config) []Submission {
	per := submission.MaxEntriesPerAuthor + 1
	out := make([]Submission, 0, cfg.Authors*per)
	for a := 0; a < cfg.Authors; a++ {
		for i := 0; i < per; i++ {
			out = append(out, Submission{
				Author:       a,
				AuthorName:   fmt.Sprintf("Smoke Author %d", a),
				AuthorEmail:  authorEmail(cfg, a),
				StoryTitle:   fmt.Sprintf("Smoke story %d.%d", a, i),
				StoryContent: "The house remembered every footstep.",
				StoryGenre:   genres[(a+i)%len(genres)],
			})
		}
	}
	return out
}

// submitAll posts every submission through a worker pool and returns the
// outcomes grouped by author.
func submitAll(ctx context.Context, client *HTTPClient, cfg Config, subs []Submission, stats *Stats) map[int][]outcome {
	target := weekURL(cfg, "entries")

	var (
		mu         sync.Mutex
		perAuthor  = make(map[int][]outcome, cfg.Authors)
		lastReport = time.Now()
		wg         sync.WaitGroup
	)

	ch := make(chan Submission, cfg.Workers*workerChannelMultiplier)
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range ch {
				res := client.submitOne(ctx, target, s)

				mu.Lock()
				perAuthor[s.Author] = append(perAuthor[s.Author], res)
				stats.Submitted++
				switch res {
				case outcomeAccepted:
					stats.Accepted++
				case outcomeLimit:
					stats.LimitReached++
				default:
					stats.Failed++
				}
				if cfg.Verbose {
					cfg.Logger.Debug(ctx, "submitted", logger.String("email", s.AuthorEmail), logger.String("outcome", string(res)))
				}
				if time.Since(lastReport) >= progressInterval {
					lastReport = time.Now()
					cfg.Logger.Info(ctx, "progress", logger.Int("submitted", stats.Submitted), logger.Int("total", len(subs)))
				}
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(ch)
		for _, s := range subs {
			select {
			case <-ctx.Done():
				return
			case ch <- s:
			}
		}
	}()

	wg.Wait()
	return perAuthor
}

// verify checks the per-author quota and the week aggregation.
func verify(ctx context.Context, client *HTTPClient, cfg Config, perAuthor map[int][]outcome, stats *Stats) error {
	var problems []string

	for a := 0; a < cfg.Authors; a++ {
		accepted, limited := 0, 0
		for _, o := range perAuthor[a] {
			switch o {
			case outcomeAccepted:
				accepted++
			case outcomeLimit:
				limited++
			}
		}
		if accepted != submission.MaxEntriesPerAuthor || limited != 1 {
			problems = append(problems, fmt.Sprintf("author %d: %d accepted, %d limit_reached", a, accepted, limited))
			continue
		}

		var count countResponse
		u := weekURL(cfg, "authors/count") + "?email=" + url.QueryEscape(authorEmail(cfg, a))
		if err := client.getJSON(ctx, u, &count); err != nil {
			problems = append(problems, fmt.Sprintf("author %d: count: %v", a, err))
			continue
		}
		if count.Count != submission.MaxEntriesPerAuthor {
			problems = append(problems, fmt.Sprintf("author %d: stored count %d", a, count.Count))
		}
	}

	var after statsResponse
	if err := client.getJSON(ctx, weekURL(cfg, "stats"), &after); err != nil {
		return fmt.Errorf("final stats: %w", err)
	}
	stats.FinalSize = after.TotalEntries
	if want := stats.BaselineSize + cfg.Authors*submission.MaxEntriesPerAuthor; after.TotalEntries < want {
		problems = append(problems, fmt.Sprintf("week total %d, want at least %d", after.TotalEntries, want))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrVerification, strings.Join(problems, "; "))
	}
	return nil
}
