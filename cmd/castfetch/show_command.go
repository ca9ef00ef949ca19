package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"castfetch/internal/pipeline"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <show-id>",
		Short: "Download every episode of a show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(func(runCtx context.Context, rt *downloadRuntime) error {
				show := pipeline.NewShowPipeline(rt.client, rt.episodePipeline(), rt.notifier, rt.reporter, rt.logger, rt.runID)
				report, err := show.Run(runCtx, args[0])
				if err != nil {
					return err
				}

				name := report.Show
				if name == "" {
					name = report.ShowID
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d downloaded, %d skipped, %d failed in %s\n",
					name, report.Downloaded, report.Skipped, report.Failed, report.Duration.Round(time.Second))
				return nil
			})
		},
	}
}
