package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"comictag/internal/comicinfo"
	"comictag/internal/filename"
)

type showEntry struct {
	Path        string              `json:"path"`
	Kind        string              `json:"kind"`
	Pages       int                 `json:"pages"`
	Writable    bool                `json:"writable"`
	HasMetadata bool                `json:"has_metadata"`
	Metadata    *comicinfo.Metadata `json:"metadata,omitempty"`
	Error       string              `json:"error,omitempty"`
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show FILE|DIR...",
		Short: "Print the ComicInfo.xml metadata of archives",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := ctx.expandInputs(args)
			entries := make([]showEntry, 0, len(files))
			for _, path := range files {
				cm := ctx.openComic(path)
				entry := showEntry{
					Path:        path,
					Kind:        cm.Kind().String(),
					Pages:       cm.NumberOfPages(),
					Writable:    cm.IsWritable(),
					HasMetadata: cm.HasMetadata(),
				}
				if entry.HasMetadata {
					md, err := cm.ReadMetadata()
					if err != nil {
						entry.Error = err.Error()
					} else {
						entry.Metadata = md
					}
				}
				entries = append(entries, entry)
			}

			if jsonOutput {
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for i, entry := range entries {
				if i > 0 {
					fmt.Fprintln(out)
				}
				for _, line := range renderSectionHeader(entry.Path, colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintf(out, "Archive:  %s, %d pages, writable %s\n", entry.Kind, entry.Pages, yesNo(entry.Writable))
				switch {
				case entry.Error != "":
					fmt.Fprintf(out, "Error:    %s\n", entry.Error)
				case entry.Metadata != nil:
					fmt.Fprintln(out, entry.Metadata.String())
				default:
					fmt.Fprintln(out, "No metadata")
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newParseCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "parse FILE...",
		Short: "Show the metadata guessed from file names",
		Long: "Show the series, volume, issue, count, and year recovered from each file name.\n" +
			"Arguments are treated as names and need not exist.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]filename.Result, 0, len(args))
			for _, arg := range args {
				results = append(results, filename.Parse(arg))
			}
			if jsonOutput {
				type parseEntry struct {
					Name string `json:"name"`
					filename.Result
				}
				entries := make([]parseEntry, 0, len(results))
				for i, r := range results {
					entries = append(entries, parseEntry{Name: args[i], Result: r})
				}
				return writeJSON(cmd, entries)
			}

			rows := make([][]string, 0, len(results))
			for i, r := range results {
				rows = append(rows, []string{
					filename.Normalize(args[i]),
					r.Series,
					r.Volume,
					r.Issue,
					r.IssueCount,
					r.Year,
					r.Remainder,
				})
			}
			headers := []string{"Name", "Series", "Volume", "Issue", "Count", "Year", "Remainder"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newMissingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "missing FILE|DIR...",
		Short: "List archives without ComicInfo.xml",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, path := range ctx.expandInputs(args) {
				cm := ctx.openComic(path)
				if !cm.SeemsToBeComic() || cm.HasMetadata() {
					continue
				}
				rows = append(rows, []string{path, cm.Kind().String(), strconv.Itoa(cm.NumberOfPages())})
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "Every archive has metadata")
				return nil
			}
			fmt.Fprintln(out, renderTable([]string{"Path", "Kind", "Pages"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
			return nil
		},
	}
}
