package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"comictag/internal/comic"
	"comictag/internal/duplicates"
	"comictag/internal/hashcache"
	"comictag/internal/logging"
)

type reviewAnswer int

const (
	answerNo reviewAnswer = iota
	answerYes
	answerQuit
)

func newDupsCommand(ctx *commandContext) *cobra.Command {
	var yes bool
	var updateMetadata bool
	var noCache bool

	cmd := &cobra.Command{
		Use:   "dups FILE|DIR...",
		Short: "Review and remove pages that appear in more than one archive",
		Long: "Fingerprint every page, then walk through each image found more than once.\n" +
			"Approved images are removed from every archive holding them, rebuilding each\n" +
			"archive once.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			update := cfg.Duplicates.UpdateMetadata
			if cmd.Flags().Changed("update-metadata") {
				update = updateMetadata
			}

			var comics []*comic.Comic
			for _, path := range ctx.expandInputs(args) {
				if cm := ctx.openComic(path); cm.SeemsToBeComic() {
					comics = append(comics, cm)
				}
			}
			out := cmd.OutOrStdout()
			if len(comics) == 0 {
				fmt.Fprintln(out, "No comic archives found")
				return nil
			}

			var cache *hashcache.Cache
			if !noCache {
				cache, err = ctx.hashCache()
				if err != nil {
					logging.WarnWithContext(ctx.log(), "hash cache unavailable", "hash_cache_unavailable",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "delete the cache file or set hash_cache.enabled = false"),
						logging.String(logging.FieldImpact, "every page is fingerprinted from scratch"),
					)
					cache = nil
				}
			}

			return ctx.withLock(func() error {
				table, err := collectFingerprints(cmd, ctx, cache, cfg.Duplicates.Progress, comics)
				if err != nil {
					return err
				}

				stats := table.Stats()
				fmt.Fprintf(out, "Fingerprinted %d pages in %d archives; %d pages share %d images\n",
					stats.Pages, stats.Comics, stats.DuplicatePages, stats.DuplicateHashes)
				hashes := table.DistinctHashes()
				if len(hashes) == 0 {
					fmt.Fprintln(out, "No duplicate pages found")
					return nil
				}

				in := bufio.NewReader(cmd.InOrStdin())
				plan, err := reviewGroups(cmd, ctx, in, table, hashes, yes)
				if err != nil {
					return err
				}
				if plan.Len() == 0 {
					fmt.Fprintln(out, "Nothing to remove")
					return nil
				}
				if !yes {
					question := fmt.Sprintf("Remove %d pages from %d archives? [y/N] ", plan.Pages(), plan.Len())
					answer, err := ask(out, in, question)
					if err != nil {
						return err
					}
					if answer != answerYes {
						fmt.Fprintln(out, "Nothing removed")
						return nil
					}
				}

				results := duplicates.RemovePages(cmd.Context(), plan, duplicates.RemoveOptions{
					UpdateMetadata: update,
					Logger:         ctx.log(),
					Cache:          cache,
					Opener:         ctx.openComic,
				})
				return renderRemovalResults(out, results)
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Approve every duplicate image without prompting")
	cmd.Flags().BoolVar(&updateMetadata, "update-metadata", true, "Rewrite ComicInfo.xml page lists after removal (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore the fingerprint cache")
	return cmd
}

func collectFingerprints(cmd *cobra.Command, ctx *commandContext, cache *hashcache.Cache, progress bool, comics []*comic.Comic) (*duplicates.Table, error) {
	if cache != nil {
		if removed, err := cache.Prune(cmd.Context()); err != nil {
			ctx.log().Debug("hash cache prune failed", logging.Error(err))
		} else if removed > 0 {
			ctx.log().Info("hash cache pruned",
				logging.String(logging.FieldEventType, "hash_cache_pruned"),
				logging.Int("removed", removed),
			)
		}
	}

	collector := &duplicates.Collector{Logger: ctx.log(), Cache: cache}
	bar := newProgressBar(cmd.ErrOrStderr(), progress, len(comics))
	if bar != nil {
		collector.Progress = func(done, _ int) { _ = bar.Set(done) }
	}
	table, failures := collector.Collect(cmd.Context(), comics)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	if err := cmd.Context().Err(); err != nil {
		return nil, err
	}
	if len(failures) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d pages or archives could not be fingerprinted; see the run log\n", len(failures))
	}
	return table, nil
}

// newProgressBar returns nil unless progress is enabled and w is a terminal.
func newProgressBar(w io.Writer, enabled bool, total int) *progressbar.ProgressBar {
	file, ok := w.(*os.File)
	if !enabled || !ok || !isatty.IsTerminal(file.Fd()) {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Fingerprinting"),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer: "█", SaucerHead: "█", SaucerPadding: "░",
			BarStart: "[", BarEnd: "]",
		}),
	)
}

// reviewGroups shows each shared image and collects the approved ones.
func reviewGroups(cmd *cobra.Command, ctx *commandContext, in *bufio.Reader, table *duplicates.Table, hashes []string, approveAll bool) (*duplicates.Plan, error) {
	out := cmd.OutOrStdout()
	plan := duplicates.NewPlan()

	for i, hash := range hashes {
		group := table.Group(hash)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Image %d of %d (%s), %d pages\n", i+1, len(hashes), hash, len(group))
		if row, data, err := duplicates.Representative(table, hash, ctx.openComic); err == nil {
			fmt.Fprintf(out, "First seen: %s page %d, %s\n", row.Path, row.Index+1, humanize.Bytes(uint64(len(data))))
		}
		rows := make([][]string, 0, len(group))
		for _, r := range group {
			rows = append(rows, []string{r.Path, strconv.Itoa(r.Index + 1)})
		}
		fmt.Fprintln(out, renderTable([]string{"Archive", "Page"}, rows, []columnAlignment{alignLeft, alignRight}))

		if approveAll {
			plan.Approve(group)
			continue
		}
		answer, err := ask(out, in, "Remove this image from these archives? [y/N/q] ")
		if err != nil {
			return nil, err
		}
		if answer == answerQuit {
			break
		}
		if answer == answerYes {
			plan.Approve(group)
		}
	}
	return plan, nil
}

// ask prints question and reads one answer line. End of input counts as
// quit.
func ask(out io.Writer, in *bufio.Reader, question string) (reviewAnswer, error) {
	fmt.Fprint(out, question)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return answerNo, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return answerYes, nil
	case "q", "quit":
		return answerQuit, nil
	case "":
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return answerQuit, nil
		}
	}
	return answerNo, nil
}

func renderRemovalResults(out io.Writer, results []duplicates.RemovalResult) error {
	var (
		rows   [][]string
		saved  int64
		failed int
	)
	for _, res := range results {
		status := "removed"
		switch {
		case res.Err != nil:
			status = "failed: " + res.Err.Error()
			failed++
		case res.MetadataErr != nil:
			status = "removed, metadata not updated: " + res.MetadataErr.Error()
		case res.MetadataUpdated:
			status = "removed, metadata updated"
		}
		saved += res.Saved()
		rows = append(rows, []string{
			res.Path,
			strconv.Itoa(len(res.Indices)),
			humanize.Bytes(uint64(res.BytesBefore)),
			humanize.Bytes(uint64(res.BytesAfter)),
			humanize.Bytes(uint64(res.Saved())),
			status,
		})
	}
	headers := []string{"Archive", "Pages", "Before", "After", "Saved", "Status"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
	fmt.Fprintf(out, "Saved %s across %d archives\n", humanize.Bytes(uint64(saved)), len(results)-failed)
	if failed > 0 {
		return fmt.Errorf("%d archive(s) failed", failed)
	}
	return nil
}
