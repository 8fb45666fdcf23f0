package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"comictag/internal/comic"
	"comictag/internal/comicinfo"
	"comictag/internal/language"
)

const notWritableMessage = "archive is not a writable cbz"

// mutateEach opens every archive under args and hands it to fn while the run
// lock is held. Archives without pages are skipped before fn sees them.
func mutateEach(cmd *cobra.Command, ctx *commandContext, args []string, verb string, fn func(*comic.Comic, *reporter)) error {
	files := ctx.expandInputs(args)
	rep := newReporter(cmd)
	err := ctx.withLock(func() error {
		for _, path := range files {
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			cm := ctx.openComic(path)
			if !cm.SeemsToBeComic() {
				rep.skip(path, "no pages found")
				continue
			}
			fn(cm, rep)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return rep.finish(verb)
}

// overlayAndWrite merges patch into the archive's stored record and writes
// the result back.
func overlayAndWrite(cm *comic.Comic, patch *comicinfo.Metadata, keepExisting bool) error {
	existing, err := cm.ReadMetadata()
	if err != nil {
		return err
	}
	merged := existing
	if keepExisting {
		merged = patch.Clone()
		merged.Overlay(existing)
	} else {
		merged.Overlay(patch)
	}
	return cm.WriteMetadata(merged)
}

func newTagCommand(ctx *commandContext) *cobra.Command {
	var fromFilename bool
	var scanInfo bool
	var keepExisting bool

	cmd := &cobra.Command{
		Use:   "tag --from-filename FILE|DIR...",
		Short: "Write metadata recovered from file names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !fromFilename {
				return errors.New("nothing to tag from; pass --from-filename")
			}
			return mutateEach(cmd, ctx, args, "tagged", func(cm *comic.Comic, rep *reporter) {
				if !cm.IsWritable() {
					rep.skip(cm.Path(), notWritableMessage)
					return
				}
				parsed := cm.MetadataFromFilename(scanInfo)
				if parsed.IsEmpty() {
					rep.skip(cm.Path(), "nothing recovered from the file name")
					return
				}
				if err := overlayAndWrite(cm, parsed, keepExisting); err != nil {
					rep.fail(cm.Path(), err)
					return
				}
				rep.success(cm.Path(), summarize(parsed))
			})
		},
	}

	cmd.Flags().BoolVar(&fromFilename, "from-filename", false, "Parse series, volume, issue, count, and year from the file name")
	cmd.Flags().BoolVar(&scanInfo, "scan-info", false, "Store the unparsed rest of the file name as scan info")
	cmd.Flags().BoolVar(&keepExisting, "keep-existing", false, "Only fill fields the stored metadata leaves empty")
	return cmd
}

func summarize(md *comicinfo.Metadata) string {
	text := md.Series
	if md.Volume != "" {
		text += " v" + md.Volume
	}
	if md.Issue != "" {
		text += " #" + md.Issue
	}
	if md.Year != "" {
		text += fmt.Sprintf(" (%s)", md.Year)
	}
	return text
}

type creditFlag struct {
	name  string
	role  string
	names []string
}

func newSetCommand(ctx *commandContext) *cobra.Command {
	patch := &comicinfo.Metadata{}
	var keepExisting bool

	fields := []struct {
		name   string
		usage  string
		target *string
	}{
		{"series", "Series name", &patch.Series},
		{"volume", "Volume number", &patch.Volume},
		{"issue", "Issue number", &patch.Issue},
		{"issue-count", "Number of issues in the series", &patch.IssueCount},
		{"title", "Story title", &patch.Title},
		{"publisher", "Publisher", &patch.Publisher},
		{"imprint", "Imprint", &patch.Imprint},
		{"year", "Publication year", &patch.Year},
		{"month", "Publication month (1-12)", &patch.Month},
		{"day", "Publication day", &patch.Day},
		{"story-arc", "Story arc", &patch.StoryArc},
		{"series-group", "Series group", &patch.SeriesGroup},
		{"genre", "Genre", &patch.Genre},
		{"age-rating", "Maturity rating", &patch.AgeRating},
		{"language", "Language as an ISO code, tag, or English name", &patch.LanguageISO},
		{"format", "Format (Trade Paperback, Hard Cover, ...)", &patch.Format},
		{"notes", "Notes", &patch.Notes},
		{"summary", "Summary", &patch.Summary},
		{"web", "Web address", &patch.Web},
		{"scan-info", "Scan information", &patch.ScanInfo},
		{"characters", "Characters", &patch.Characters},
		{"teams", "Teams", &patch.Teams},
		{"locations", "Locations", &patch.Locations},
	}
	credits := []*creditFlag{
		{name: "writer", role: comicinfo.RoleWriter},
		{name: "penciller", role: comicinfo.RolePenciller},
		{name: "inker", role: comicinfo.RoleInker},
		{name: "colorist", role: comicinfo.RoleColorist},
		{name: "letterer", role: comicinfo.RoleLetterer},
		{name: "cover-artist", role: comicinfo.RoleCover},
		{name: "editor", role: comicinfo.RoleEditor},
		{name: "translator", role: comicinfo.RoleTranslator},
	}

	cmd := &cobra.Command{
		Use:   "set [flags] FILE|DIR...",
		Short: "Set metadata fields on archives",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if patch.LanguageISO != "" {
				code, err := language.Normalize(patch.LanguageISO)
				if err != nil {
					return fmt.Errorf("--language: %w", err)
				}
				patch.LanguageISO = code
			}
			for _, c := range credits {
				for _, person := range c.names {
					patch.AddCredit(person, false, c.role)
				}
			}
			if patch.IsEmpty() {
				return errors.New("no fields to set; see --help for the field flags")
			}
			return mutateEach(cmd, ctx, args, "updated", func(cm *comic.Comic, rep *reporter) {
				if !cm.IsWritable() {
					rep.skip(cm.Path(), notWritableMessage)
					return
				}
				if err := overlayAndWrite(cm, patch, keepExisting); err != nil {
					rep.fail(cm.Path(), err)
					return
				}
				rep.success(cm.Path(), "")
			})
		},
	}

	for _, f := range fields {
		cmd.Flags().StringVar(f.target, f.name, "", f.usage)
	}
	for _, c := range credits {
		cmd.Flags().StringSliceVar(&c.names, c.name, nil, fmt.Sprintf("Credit a %s (repeatable)", c.role))
	}
	cmd.Flags().BoolVar(&keepExisting, "keep-existing", false, "Only fill fields the stored metadata leaves empty")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove FILE|DIR...",
		Short: "Delete ComicInfo.xml from archives",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateEach(cmd, ctx, args, "cleared", func(cm *comic.Comic, rep *reporter) {
				if !cm.HasMetadata() {
					rep.skip(cm.Path(), "no metadata")
					return
				}
				if !cm.IsWritable() {
					rep.skip(cm.Path(), notWritableMessage)
					return
				}
				if err := cm.RemoveMetadata(); err != nil {
					rep.fail(cm.Path(), err)
					return
				}
				rep.success(cm.Path(), "")
			})
		},
	}
}
