package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"comictag/internal/duplicates"
	"comictag/internal/logging"
)

func newCoversCommand(ctx *commandContext) *cobra.Command {
	var maxDistance int

	cmd := &cobra.Command{
		Use:   "covers REFERENCE FILE|DIR...",
		Short: "Find archives whose cover looks like the reference archive's cover",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			limit := cfg.Duplicates.HammingDistance
			if cmd.Flags().Changed("max-distance") {
				limit = maxDistance
			}

			refHash, err := coverFingerprint(ctx, args[0])
			if err != nil {
				return fmt.Errorf("reference cover: %w", err)
			}

			var (
				paths  []string
				hashes []string
			)
			for _, path := range ctx.expandInputs(args[1:]) {
				if path == args[0] {
					continue
				}
				hash, err := coverFingerprint(ctx, path)
				if err != nil {
					ctx.log().Debug("cover skipped",
						logging.String(logging.FieldComic, path),
						logging.Error(err),
					)
					continue
				}
				paths = append(paths, path)
				hashes = append(hashes, hash)
			}

			matches, err := duplicates.WithinHamming(refHash, hashes, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintf(out, "No cover within distance %d of %s\n", limit, args[0])
				return nil
			}
			rows := make([][]string, 0, len(matches))
			for _, m := range matches {
				rows = append(rows, []string{paths[m.Index], strconv.Itoa(m.Distance), m.Hash})
			}
			fmt.Fprintln(out, renderTable([]string{"Archive", "Distance", "Fingerprint"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
			return nil
		},
	}

	cmd.Flags().IntVar(&maxDistance, "max-distance", 0, "Largest Hamming distance counted as a match (default from config)")
	return cmd
}

// coverFingerprint hashes the archive's first page.
func coverFingerprint(ctx *commandContext, path string) (string, error) {
	cm := ctx.openComic(path)
	if !cm.SeemsToBeComic() {
		return "", fmt.Errorf("%s: no pages found", path)
	}
	data, err := cm.Page(0)
	if err != nil {
		return "", err
	}
	return duplicates.Fingerprint(data)
}
