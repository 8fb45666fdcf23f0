package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"comictag/internal/archive"
	"comictag/internal/comic"
	"comictag/internal/comicinfo"
	"comictag/internal/config"
	"comictag/internal/fileutil"
	"comictag/internal/logging"
	"comictag/internal/renamer"
	"comictag/internal/sorter"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var deleteOriginal bool

	cmd := &cobra.Command{
		Use:   "export FILE|DIR...",
		Short: "Convert archives to .cbz",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateEach(cmd, ctx, args, "exported", func(cm *comic.Comic, rep *reporter) {
				src := cm.Path()
				if cm.Kind() == archive.KindUnsupported {
					rep.skip(src, "archive format not supported")
					return
				}
				if strings.EqualFold(filepath.Ext(src), ".cbz") {
					rep.skip(src, "already a cbz")
					return
				}
				dst := fileutil.UniquePath(strings.TrimSuffix(src, filepath.Ext(src)) + ".cbz")
				if err := cm.ExportCBZ(dst); err != nil {
					rep.fail(src, err)
					return
				}
				message := "wrote " + filepath.Base(dst)
				if deleteOriginal {
					if err := os.Remove(src); err != nil {
						rep.fail(src, fmt.Errorf("exported to %s but could not delete original: %w", dst, err))
						return
					}
					message += ", original deleted"
				}
				rep.success(src, message)
			})
		},
	}

	cmd.Flags().BoolVar(&deleteOriginal, "delete-original", false, "Delete each source archive after a successful export")
	return cmd
}

func newRenameCommand(ctx *commandContext) *cobra.Command {
	var template string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "rename FILE|DIR...",
		Short: "Rename archives from their metadata",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts := renamer.OptionsFromConfig(cfg)
			if strings.TrimSpace(template) != "" {
				opts.Template = template
			}
			r := renamer.New(opts, ctx.log())

			return mutateEach(cmd, ctx, args, "renamed", func(cm *comic.Comic, rep *reporter) {
				md, ok := storedMetadata(cm, rep)
				if !ok {
					return
				}
				if dryRun {
					name := r.DetermineName(md, filepath.Ext(cm.Path()))
					rep.success(cm.Path(), "would become "+name)
					return
				}
				res, err := r.Rename(cm, md)
				switch {
				case err != nil:
					rep.fail(cm.Path(), err)
				case !res.Renamed:
					rep.skip(res.From, "name already matches")
				default:
					rep.success(res.From, "-> "+filepath.Base(res.To))
				}
			})
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "", "Override the configured rename template")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the new names without renaming")
	return cmd
}

func newSortCommand(ctx *commandContext) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "sort FILE|DIR...",
		Short: "Move archives into a publisher/series/volume tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root := cfg.Sort.Directory
			if strings.TrimSpace(dir) != "" {
				expanded, err := config.ExpandPath(dir)
				if err != nil {
					return fmt.Errorf("resolve sort directory: %w", err)
				}
				root = expanded
			}
			if strings.TrimSpace(root) == "" {
				return errors.New("no sort directory; set sort.directory, COMICTAG_SORT_DIR, or --dir")
			}
			s := sorter.New(root, ctx.log())

			return mutateEach(cmd, ctx, args, "sorted", func(cm *comic.Comic, rep *reporter) {
				res, err := s.Sort(cm)
				switch {
				case errors.Is(err, sorter.ErrNoMetadata), errors.Is(err, sorter.ErrIncomplete):
					rep.skip(cm.Path(), err.Error())
				case err != nil:
					rep.fail(cm.Path(), err)
				case !res.Moved:
					rep.skip(res.From, "already sorted")
				default:
					rep.success(res.From, "-> "+res.To)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Override the configured sort directory")
	return cmd
}

func newScannerCommand(ctx *commandContext) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "scanner FILE|DIR...",
		Short: "Find trailing scanner credit pages",
		Long: "Report archives whose last page name does not match the naming of the other pages,\n" +
			"which usually marks a page added by the scanner. With --remove the page is deleted.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateEach(cmd, ctx, args, "flagged", func(cm *comic.Comic, rep *reporter) {
				index, ok := cm.ScannerPageIndex()
				if !ok {
					rep.skip(cm.Path(), "no scanner page detected")
					return
				}
				name, err := cm.PageName(index)
				if err != nil {
					rep.fail(cm.Path(), err)
					return
				}
				if !remove {
					rep.success(cm.Path(), fmt.Sprintf("page %d (%s)", index, name))
					return
				}
				if !cm.IsWritable() {
					rep.skip(cm.Path(), notWritableMessage)
					return
				}
				if err := removeScannerPage(cmd.Context(), ctx, cm, index); err != nil {
					rep.fail(cm.Path(), err)
					return
				}
				rep.success(cm.Path(), "removed "+name)
			})
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "Delete the detected page")
	return cmd
}

// removeScannerPage deletes one page and keeps a stored page list in step
// with the new page count.
func removeScannerPage(runCtx context.Context, ctx *commandContext, cm *comic.Comic, index int) error {
	hadMetadata := cm.HasMetadata()
	var md *comicinfo.Metadata
	if hadMetadata {
		var err error
		if md, err = cm.ReadMetadata(); err != nil {
			return err
		}
	}
	if err := cm.RemovePages([]int{index}); err != nil {
		return err
	}
	if cache, err := ctx.hashCache(); err == nil && cache != nil {
		if err := cache.Forget(runCtx, cm.Path()); err != nil {
			ctx.log().Debug("hash cache forget failed", logging.Error(err))
		}
	}
	if !hadMetadata {
		return nil
	}
	md.SetDefaultPageList(cm.NumberOfPages())
	return cm.WriteMetadata(md)
}

// storedMetadata returns the archive's record, reporting a skip when there
// is none.
func storedMetadata(cm *comic.Comic, rep *reporter) (*comicinfo.Metadata, bool) {
	if !cm.HasMetadata() {
		rep.skip(cm.Path(), "no metadata")
		return nil, false
	}
	md, err := cm.ReadMetadata()
	if err != nil {
		rep.fail(cm.Path(), err)
		return nil, false
	}
	if md.IsEmpty() {
		rep.skip(cm.Path(), "metadata is empty")
		return nil, false
	}
	return md, true
}
