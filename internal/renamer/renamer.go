package renamer

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"comictag/internal/comic"
	"comictag/internal/comicinfo"
	"comictag/internal/config"
	"comictag/internal/fileutil"
	"comictag/internal/language"
	"comictag/internal/logging"
	"comictag/internal/textutil"
)

// DefaultTemplate is used when Options.Template is empty.
const DefaultTemplate = "%series% v%volume% #%issue% (of %issuecount%) (%year%)"

const issueCountToken = "%issuecount%"

// Options control how names are rendered.
type Options struct {
	Template     string
	IssuePadding int
	// SmartCleanup drops the whole word around an empty token ("v%volume%")
	// and tidies the separators left behind.
	SmartCleanup bool
}

// OptionsFromConfig returns the rename options of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Template:     cfg.Rename.Template,
		IssuePadding: cfg.Rename.IssuePadding,
		SmartCleanup: cfg.Rename.SmartCleanup,
	}
}

// Renamer renders archive names from metadata and applies them.
type Renamer struct {
	opts   Options
	logger *slog.Logger
}

// New returns a Renamer. A nil logger discards output.
func New(opts Options, logger *slog.Logger) *Renamer {
	if opts.Template == "" {
		opts.Template = DefaultTemplate
	}
	return &Renamer{opts: opts, logger: logging.NewComponentLogger(logger, "renamer")}
}

var (
	emptyParensRe   = regexp.MustCompile(`\(\s*[-:]*\s*\)`)
	emptyBracketsRe = regexp.MustCompile(`\[\s*[-:]*\s*\]`)
	emptyBracesRe   = regexp.MustCompile(`\{\s*[-:]*\s*\}`)
	dashRunRe       = regexp.MustCompile(`[-_]{2,}\s+`)
	spacedDoubleRe  = regexp.MustCompile(`(\s--)+`)
	spacedDashRe    = regexp.MustCompile(`(\s-)+`)
	trailingDashRe  = regexp.MustCompile(`-{1,2}\s*$`)
)

func isToken(word string) bool {
	return len(word) > 1 && strings.HasPrefix(word, "%") && strings.HasSuffix(word, "%")
}

// replaceToken substitutes value for token. An empty value with smart
// cleanup removes every word containing the token, and for the issue count
// also the word before it ("of").
func (r *Renamer) replaceToken(text, value, token string) string {
	if value != "" {
		return strings.ReplaceAll(text, token, value)
	}
	if !r.opts.SmartCleanup {
		return strings.ReplaceAll(text, token, "")
	}

	words := strings.Fields(text)
	if token == issueCountToken {
		for i, word := range words {
			if i > 0 && strings.Contains(word, token) && !isToken(words[i-1]) {
				words[i-1] = ""
			}
		}
	}
	kept := words[:0]
	for _, word := range words {
		if word != "" && !strings.Contains(word, token) {
			kept = append(kept, word)
		}
	}
	return strings.Join(kept, " ")
}

func cleanup(name string) string {
	name = emptyParensRe.ReplaceAllString(name, "")
	name = emptyBracketsRe.ReplaceAllString(name, "")
	name = emptyBracesRe.ReplaceAllString(name, "")
	name = textutil.CollapseSpaces(name)

	name = dashRunRe.ReplaceAllString(name, "-- ")
	name = spacedDoubleRe.ReplaceAllString(name, " --")
	name = spacedDashRe.ReplaceAllString(name, " -")
	name = trailingDashRe.ReplaceAllString(name, "")
	return textutil.CollapseSpaces(name)
}

func monthName(month string) string {
	n, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || n < 1 || n > 12 {
		return ""
	}
	return time.Month(n).String()
}

func formatCode(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "hard cover", "hardcover":
		return "HC"
	case "trade paperback", "tpb":
		return "TPB"
	}
	return ""
}

func languageName(code string) string {
	if code == "" {
		return ""
	}
	return language.DisplayName(code)
}

// DetermineName renders the template for md and appends ext.
func (r *Renamer) DetermineName(md *comicinfo.Metadata, ext string) string {
	issue := ""
	if md.Issue != "" {
		text := md.Issue
		if text == "½" {
			text = "0.5"
		}
		issue = comicinfo.ParseIssue(text).Pad(r.opts.IssuePadding)
	}

	tokens := []struct{ token, value string }{
		{"%series%", md.Series},
		{"%volume%", md.Volume},
		{"%issue%", issue},
		{issueCountToken, md.IssueCount},
		{"%year%", md.Year},
		{"%publisher%", md.Publisher},
		{"%title%", md.Title},
		{"%month%", md.Month},
		{"%month_name%", monthName(md.Month)},
		{"%genre%", md.Genre},
		{"%language_code%", md.LanguageISO},
		{"%language%", languageName(md.LanguageISO)},
		{"%criticalrating%", md.CriticalRating},
		{"%alternateseries%", md.AlternateSeries},
		{"%alternatenumber%", md.AlternateNumber},
		{"%alternatecount%", md.AlternateCount},
		{"%imprint%", md.Imprint},
		{"%format%", formatCode(md.Format)},
		{"%maturityrating%", md.AgeRating},
		{"%storyarc%", md.StoryArc},
		{"%seriesgroup%", md.SeriesGroup},
		{"%scaninfo%", md.ScanInfo},
	}

	name := r.opts.Template
	for _, t := range tokens {
		name = r.replaceToken(name, t.value, t.token)
	}
	if r.opts.SmartCleanup {
		name = cleanup(name)
	}
	return textutil.SanitizeFileName(name + ext)
}

// Result describes one rename.
type Result struct {
	From    string
	To      string
	Renamed bool
}

// Rename moves c to the name rendered from md, in the same directory. When
// the name is already correct nothing happens; when another file holds the
// name a " (N)" suffix is added.
func (r *Renamer) Rename(c *comic.Comic, md *comicinfo.Metadata) (Result, error) {
	from := c.Path()
	res := Result{From: from, To: from}
	if md == nil || md.IsEmpty() {
		return res, fmt.Errorf("rename %s: no metadata", from)
	}

	name := r.DetermineName(md, filepath.Ext(from))
	if name == "" || name == filepath.Ext(from) {
		return res, fmt.Errorf("rename %s: template produced an empty name", from)
	}
	if name == filepath.Base(from) {
		r.logger.Debug("file name already matches template", logging.String(logging.FieldComic, from))
		return res, nil
	}

	target := fileutil.UniquePath(filepath.Join(filepath.Dir(from), name))
	if err := c.Rename(target); err != nil {
		return res, err
	}
	res.To = target
	res.Renamed = true
	r.logger.Info("archive renamed",
		logging.String(logging.FieldEventType, "archive_renamed"),
		logging.String(logging.FieldComic, target),
		logging.String("from", filepath.Base(from)),
	)
	return res, nil
}
