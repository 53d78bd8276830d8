// Package cms is a client for the headless CMS that publishes contest entries.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/penumbrapenned/penned/pkg/logger"
	"github.com/penumbrapenned/penned/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultPageLimit = 100
	defaultTimeout   = 15 * time.Second
	maxErrorBody     = 512
	contestsPath     = "/weekly-contests"
)

// Client talks to the CMS content API.
type Client struct {
	baseURL   string
	token     string
	pageLimit int
	http      *http.Client
	logger    logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithPageLimit sets the page size used when listing records.
func WithPageLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageLimit = n
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client, e.g. with an httptest server client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the API rooted at baseURL, e.g. "https://cms.example.com/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("cms: invalid base url %q", baseURL)
	}

	c := &Client{
		baseURL:   strings.TrimRight(u.String(), "/"),
		pageLimit: defaultPageLimit,
		http:      &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("cms")
	}
	return c, nil
}

// ListContestEntries pages through every weekly-contest record in id order.
func (c *Client) ListContestEntries(ctx context.Context) ([]Record, error) {
	const op = "cms.list_contest_entries"

	var out []Record
	for start := 0; ; {
		q := url.Values{}
		q.Set("pagination[start]", strconv.Itoa(start))
		q.Set("pagination[limit]", strconv.Itoa(c.pageLimit))
		q.Set("sort", "id:asc")

		var page listResponse
		if err := c.do(ctx, op, http.MethodGet, contestsPath+"?"+q.Encode(), nil, &page); err != nil {
			return nil, err
		}

		for _, d := range page.Data {
			out = append(out, Record{
				ID:          d.ID,
				AuthorEmail: d.Attributes.AuthorEmail,
				StoryTitle:  d.Attributes.StoryTitle,
				WeekNumber:  string(d.Attributes.WeekNumber),
			})
		}

		// Servers may cap the page size below pageLimit, so a short page only
		// ends the listing when no total is reported.
		total := page.Meta.Pagination.Total
		if len(page.Data) == 0 {
			break
		}
		if total > 0 {
			if len(out) >= total {
				break
			}
		} else if len(page.Data) < c.pageLimit {
			break
		}
		start += len(page.Data)
	}

	c.logger.Debug(ctx, "listed contest entries", logger.Int("count", len(out)))
	return out, nil
}

// CreateContestEntry publishes one record.
func (c *Client) CreateContestEntry(ctx context.Context, p Payload) error {
	const op = "cms.create_contest_entry"
	return c.do(ctx, op, http.MethodPost, contestsPath, createRequest{Data: p}, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		metrics.RecordCMSRequest(op, "transport_error", latencyMs)
		return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordCMSRequest(op, strconv.Itoa(resp.StatusCode), latencyMs)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%s: %w: %w: %d %s", op, ErrUnavailable, ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
		}
		return fmt.Errorf("%s: %w: %d %s", op, ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrDecode, err)
	}
	return nil
}
