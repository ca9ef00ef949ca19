package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"castfetch/internal/pipeline"
)

func newEpisodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "episode <episode-id>...",
		Short: "Download one or more episodes by identifier",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRuntime(func(runCtx context.Context, rt *downloadRuntime) error {
				episodes := rt.episodePipeline()

				var downloaded, skipped, failed int
				for _, id := range args {
					if runCtx.Err() != nil {
						return runCtx.Err()
					}
					outcome := episodes.Run(runCtx, id)
					switch outcome.State {
					case pipeline.StateDone:
						downloaded++
					case pipeline.StateSkipped:
						skipped++
					default:
						failed++
					}
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%d downloaded, %d skipped, %d failed\n", downloaded, skipped, failed)
				if failed > 0 && downloaded == 0 && skipped == 0 {
					return fmt.Errorf("all %d episodes failed", failed)
				}
				return nil
			})
		},
	}
}
