package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"castfetch/internal/deps"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration and external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s (exists: %s)\n", ctx.configPath, yesNo(ctx.configExists))
			fmt.Fprintf(out, "Podcast directory: %s\n", cfg.Paths.PodcastDir)
			fmt.Fprintf(out, "Skip existing: %s\n", yesNo(cfg.Download.SkipExisting))
			fmt.Fprintf(out, "Real-time pacing: %s\n", yesNo(cfg.Download.RealTime))
			fmt.Fprintf(out, "History: %s\n", yesNo(cfg.History.Enabled))
			fmt.Fprintln(out)

			rows := make([][]string, 0, 2)
			for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
				available := "yes"
				if !status.Available {
					available = "no"
					if status.Detail != "" {
						available = "no (" + status.Detail + ")"
					}
				}
				rows = append(rows, []string{status.Name, status.Command, available, status.Description})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Tool", "Command", "Available", "Purpose"},
				rows,
			))
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
