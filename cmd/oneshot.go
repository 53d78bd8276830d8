package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/penumbrapenned/penned/internal/domain/model"
	"github.com/penumbrapenned/penned/internal/domain/types"
)

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Copy entries missing from the publishing CMS, once",
		Long: "Runs a single reconciliation pass and prints its report. Exits non-zero " +
			"when the pass is aborted; a partial pass still prints the report.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, svc, err := setup(ctx, true)
			if err != nil {
				return err
			}
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Stop()

			report, err := svc.Sync(ctx)
			if err != nil {
				return fmt.Errorf("sync aborted: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), types.FromReport(report))
		},
	}
}

func statsCmd() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print aggregated statistics of one week or of every open week",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, svc, err := setup(ctx, true)
			if err != nil {
				return err
			}
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Stop()

			var stats model.AggregatedStats
			if week == "" {
				stats, err = svc.ContestStats(ctx)
			} else {
				var id model.WeekID
				if id, err = svc.ResolveWeek(week); err != nil {
					return err
				}
				stats, err = svc.Stats(ctx, id)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), types.FromStats(stats))
		},
	}
	cmd.Flags().StringVarP(&week, "week", "w", "", `week id, "week-N" or "N" (default: all open weeks)`)
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
