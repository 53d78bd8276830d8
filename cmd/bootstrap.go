package main

import (
	"context"
	"fmt"
	"os"

	"github.com/penumbrapenned/penned/internal/adapters/cms"
	"github.com/penumbrapenned/penned/internal/adapters/repository"
	service "github.com/penumbrapenned/penned/internal/app"
	"github.com/penumbrapenned/penned/internal/config"
	"github.com/penumbrapenned/penned/pkg/logger"
)

// setup loads configuration, initializes logging and builds an unstarted
// service over the configured stores. One-shot commands get no sync ticker.
func setup(ctx context.Context, oneShot bool) (*config.Config, *service.Service, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(os.Stderr)); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if oneShot {
		cfg.Sync.IntervalS = 0
	}

	svc, err := newService(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}

// newService wires the entry store and, when configured, the publishing store.
func newService(ctx context.Context, cfg *config.Config, log logger.Logger) (*service.Service, error) {
	weeks, err := cfg.WeekIDs()
	if err != nil {
		return nil, err
	}

	store, err := repository.Open(ctx, cfg.DBPath,
		repository.WithWeeks(weeks),
		repository.WithLogger(log.Named("store")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open entry store: %w", err)
	}

	opts := []service.Option{
		service.WithStore(store),
		service.WithWeeks(weeks),
		service.WithThemes(cfg.ThemeMap()),
		service.WithSyncInterval(cfg.SyncInterval()),
		service.WithFailOpen(cfg.Sync.FailOpen),
		service.WithLogger(log),
	}

	if cfg.SyncEnabled() {
		client, err := cms.New(cfg.CMS.BaseURL,
			cms.WithToken(cfg.CMS.Token),
			cms.WithPageLimit(cfg.CMS.PageLimit),
			cms.WithTimeout(cfg.CMSTimeout()),
			cms.WithLogger(log.Named("cms")),
		)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to create cms client: %w", err)
		}
		opts = append(opts, service.WithCMS(client))
	}

	return service.New(opts...), nil
}
