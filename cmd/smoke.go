package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/penumbrapenned/penned/internal/smoketest"
	"github.com/penumbrapenned/penned/pkg/logger"
)

func smokeCmd() *cobra.Command {
	cfg := smoketest.Config{}

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Submit over-quota entries against a running server and verify the limit holds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithOutput(cmd.ErrOrStderr())); err != nil {
				return err
			}
			if cfg.Verbose {
				_ = logger.SetLevelString("debug")
			}
			stats, err := smoketest.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the server")
	f.StringVar(&cfg.Week, "week", "week-1", "week to submit to")
	f.IntVar(&cfg.Authors, "authors", 10, "number of synthetic authors")
	f.IntVar(&cfg.Workers, "workers", 4, "number of concurrent submitters")
	f.DurationVar(&cfg.Timeout, "timeout", 10*time.Second, "per-request timeout")
	f.StringVar(&cfg.RunID, "run-id", "", "suffix for author emails (random when empty)")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log every submission")
	return cmd
}
