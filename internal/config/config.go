// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/penumbrapenned/penned/internal/domain/model"
)

// Theme is the configured prompt of one week.
type Theme struct {
	Title  string `koanf:"title"`
	Prompt string `koanf:"prompt"`
}

// CMS configures the publishing store client.
type CMS struct {
	// BaseURL is the API root, e.g. "https://cms.example.com/api". Empty disables sync.
	BaseURL   string `koanf:"base_url"`
	Token     string `koanf:"token"`
	PageLimit int    `koanf:"page_limit"`
	TimeoutMS int    `koanf:"timeout_ms"`
}

// Sync configures periodic reconciliation.
type Sync struct {
	// IntervalS is the period between runs in seconds; 0 disables the ticker.
	IntervalS int  `koanf:"interval_s"`
	FailOpen  bool `koanf:"fail_open"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite file of the entry store, or ":memory:".
	DBPath string `koanf:"db_path"`

	// Weeks lists the open week partitions in order.
	Weeks []string `koanf:"weeks"`

	// Themes maps a week id to its static theme.
	Themes map[string]Theme `koanf:"themes"`

	CMS  CMS  `koanf:"cms"`
	Sync Sync `koanf:"sync"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Addr:      ":9080",
		DBPath:    "penned.db",
		Weeks:     []string{"week-1", "week-2", "week-3"},
		Themes:    map[string]Theme{},
		CMS: CMS{
			PageLimit: 100,
			TimeoutMS: 15_000,
		},
	}
}

// WeekIDs returns the configured weeks in canonical form.
func (c *Config) WeekIDs() ([]model.WeekID, error) {
	out := make([]model.WeekID, 0, len(c.Weeks))
	for _, raw := range c.Weeks {
		w, err := model.ParseWeekID(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: weeks: %w", ErrInvalidConfig, err)
		}
		out = append(out, w)
	}
	return out, nil
}

// ThemeMap returns the themes keyed by canonical week. Invalid keys are skipped;
// Validate reports them.
func (c *Config) ThemeMap() map[model.WeekID]model.Theme {
	out := make(map[model.WeekID]model.Theme, len(c.Themes))
	for raw, t := range c.Themes {
		w, err := model.ParseWeekID(raw)
		if err != nil {
			continue
		}
		out[w] = model.Theme{Title: t.Title, Prompt: t.Prompt}
	}
	return out
}

// SyncInterval returns the periodic sync period, zero when disabled.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.Sync.IntervalS) * time.Second
}

// CMSTimeout returns the per-request timeout of the CMS client.
func (c *Config) CMSTimeout() time.Duration {
	return time.Duration(c.CMS.TimeoutMS) * time.Millisecond
}

// SyncEnabled reports whether a publishing store is configured.
func (c *Config) SyncEnabled() bool {
	return strings.TrimSpace(c.CMS.BaseURL) != ""
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if len(c.Weeks) == 0 {
		return fmt.Errorf("%w: at least one week is required", ErrInvalidConfig)
	}
	weeks, err := c.WeekIDs()
	if err != nil {
		return err
	}
	set := model.NewWeekSet(weeks)
	for raw := range c.Themes {
		w, err := model.ParseWeekID(raw)
		if err != nil || !set.Contains(w) {
			return fmt.Errorf("%w: theme for unknown week %q", ErrInvalidConfig, raw)
		}
	}
	if c.CMS.PageLimit <= 0 {
		return fmt.Errorf("%w: cms.page_limit must be positive", ErrInvalidConfig)
	}
	if c.CMS.TimeoutMS <= 0 {
		return fmt.Errorf("%w: cms.timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.Sync.IntervalS < 0 {
		return fmt.Errorf("%w: sync.interval_s must not be negative", ErrInvalidConfig)
	}
	return nil
}
