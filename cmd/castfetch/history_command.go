package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"castfetch/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent download outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history is disabled in the configuration")
			}

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			records, err := store.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No download history recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.CreatedAt.Local().Format(time.DateTime),
					rec.Show,
					rec.Episode,
					historyStatus(rec),
					historySize(rec),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Show", "Episode", "Status", "Size"},
				rows,
				4,
			))
			return nil
		},
	}

	historyCmd.Flags().IntVarP(&limit, "limit", "n", 25, "Maximum number of entries to display")
	historyCmd.AddCommand(newHistoryRunCommand(ctx))
	return historyCmd
}

func newHistoryRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run <run-id>",
		Short: "Summarize a single run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			summary, err := store.SummarizeRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Run %s: %d episodes (%d downloaded, %d skipped, %d failed)\n",
				summary.RunID, summary.Total(), summary.Downloaded, summary.Skipped, summary.Failed)
			return nil
		},
	}
}

func historyStatus(rec history.Record) string {
	if rec.Status == history.StatusFailed && rec.FailureKind != "" {
		return fmt.Sprintf("%s (%s)", rec.Status, rec.FailureKind)
	}
	if rec.Status == history.StatusSkipped && rec.Detail != "" {
		return fmt.Sprintf("%s (%s)", rec.Status, rec.Detail)
	}
	return string(rec.Status)
}

func historySize(rec history.Record) string {
	if rec.SizeBytes <= 0 {
		return ""
	}
	return humanize.IBytes(uint64(rec.SizeBytes))
}
