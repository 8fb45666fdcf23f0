package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"comictag/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "clean DIR...",
		Short: "Remove temp files left by interrupted archive rebuilds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var removed, failed int
			err := ctx.withLock(func() error {
				for _, dir := range args {
					result := staging.CleanStale(cmd.Context(), dir, maxAge, ctx.log())
					for _, path := range result.Removed {
						fmt.Fprintf(out, "removed %s\n", path)
					}
					for _, e := range result.Errors {
						fmt.Fprintf(out, "error %s: %v\n", e.Path, e.Error)
					}
					removed += len(result.Removed)
					failed += len(result.Errors)
				}
				return cmd.Context().Err()
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d removed, %d failed\n", removed, failed)
			if failed > 0 {
				return fmt.Errorf("%d path(s) could not be cleaned", failed)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", time.Hour, "Only remove temp files older than this")
	return cmd
}
