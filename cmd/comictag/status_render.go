package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const statusIndent = "  "

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if colorize {
		if color := statusKindColor(kind); color != "" {
			statusText = color + statusText + ansiReset
		}
	}
	line := fmt.Sprintf("%s%s %s", statusIndent, statusText, label)
	if message != "" {
		line += ": " + message
	}
	return line
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "SKIP"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// reporter prints one status line per archive and tallies the outcomes.
type reporter struct {
	out      io.Writer
	colorize bool
	ok       int
	skipped  int
	failed   int
}

func newReporter(cmd *cobra.Command) *reporter {
	out := cmd.OutOrStdout()
	return &reporter{out: out, colorize: shouldColorize(out)}
}

func (r *reporter) report(path string, kind statusKind, message string) {
	switch kind {
	case statusOK:
		r.ok++
	case statusWarn:
		r.skipped++
	case statusError:
		r.failed++
	}
	fmt.Fprintln(r.out, renderStatusLine(filepath.Base(path), kind, message, r.colorize))
}

func (r *reporter) success(path, message string) { r.report(path, statusOK, message) }

func (r *reporter) skip(path, message string) { r.report(path, statusWarn, message) }

func (r *reporter) fail(path string, err error) { r.report(path, statusError, err.Error()) }

// finish prints the tally and returns an error when any archive failed.
func (r *reporter) finish(verb string) error {
	fmt.Fprintf(r.out, "%d %s, %d skipped, %d failed\n", r.ok, verb, r.skipped, r.failed)
	if r.failed > 0 {
		return fmt.Errorf("%d archive(s) failed", r.failed)
	}
	return nil
}
