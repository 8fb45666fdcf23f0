package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the page fingerprint cache",
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cache location and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.hashCache()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cache == nil {
				fmt.Fprintln(out, "Hash cache disabled")
				return nil
			}
			count, err := cache.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Path:   %s\n", cache.Path())
			fmt.Fprintf(out, "Pages:  %d\n", count)
			return nil
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Drop fingerprints of archives that moved or changed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.hashCache()
			if err != nil {
				return err
			}
			if cache == nil {
				return errors.New("hash cache disabled")
			}
			return ctx.withLock(func() error {
				removed, err := cache.Prune(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d archives\n", removed)
				return nil
			})
		},
	})

	return cacheCmd
}
