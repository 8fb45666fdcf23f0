package filename

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Result is the best-effort metadata recovered from a file name. Fields that
// could not be recovered are empty.
type Result struct {
	Series     string
	Volume     string
	Issue      string
	IssueCount string
	Year       string
	Remainder  string
	// IssueStart and IssueEnd are byte offsets of the issue token in the
	// normalized base name. Both are 0 when no issue was found.
	IssueStart int
	IssueEnd   int
}

var (
	parenRe       = regexp.MustCompile(`\(.*?\)`)
	bracketRe     = regexp.MustCompile(`\[.*?\]`)
	separatorRe   = regexp.MustCompile(`[-_]`)
	underscoreRe  = regexp.MustCompile(`_`)
	ofCountRe     = regexp.MustCompile(`of [\d]+`)
	wordRe        = regexp.MustCompile(`\S+`)
	hashIssueRe   = regexp.MustCompile(`^#-?(([0-9]*\.[0-9]+|[0-9]+)(\.[A-Za-z]+)?)`)
	bareIssueRe   = regexp.MustCompile(`^-?(([0-9]*\.[0-9]+|[0-9]+)(\.[A-Za-z]+)?)`)
	hashAnyRe     = regexp.MustCompile(`^#\S+`)
	volumeRe      = regexp.MustCompile(`^(.+)([vV]|[Vv][oO][Ll]\.?\s?)(\d+)\s*$`)
	yearVolumeRe  = regexp.MustCompile(`\((\d{4})(-(\d{4}|)|)\)`)
	boundedYearRe = regexp.MustCompile(`\(((?:19|20)\d{2})\)|--((?:19|20)\d{2})--`)
	bareYearRe    = regexp.MustCompile(`(?:^|[^0-9])((?:19|20)\d{2})(?:[^0-9]|$)`)
	spacedCountRe = regexp.MustCompile(`(?i)\sof\s(\d+)\s`)
	parenCountRe  = regexp.MustCompile(`(?i)\(of\s(\d+)\)`)
	doubleDashRe  = regexp.MustCompile(`--.*`)
	doubleUnderRe = regexp.MustCompile(`__.*`)
	oneShotWords  = map[string]struct{}{"tpb": {}, "os": {}, "one-shot": {}, "ogn": {}, "gn": {}}
	archiveExts   = map[string]struct{}{
		".cbz": {}, ".cbr": {}, ".cb7": {}, ".cbt": {}, ".cba": {},
		".zip": {}, ".rar": {}, ".7z": {}, ".tar": {}, ".pdf": {}, ".epub": {},
	}
)

// blank replaces every match of re in s with spaces of the same byte length.
func blank(re *regexp.Regexp, s string) string {
	return re.ReplaceAllStringFunc(s, func(m string) string {
		return strings.Repeat(" ", len(m))
	})
}

// fixSpaces turns name separators into spaces without moving any offsets.
// Dashes are kept when keepDashes is set so hyphenated series names survive.
func fixSpaces(s string, keepDashes bool) string {
	if keepDashes {
		return blank(underscoreRe, s)
	}
	return blank(separatorRe, s)
}

// stripTrailer blanks everything after a "--" or "__" marker, which some
// release groups use to separate the series and issue from trailing tags.
func stripTrailer(s string) string {
	switch {
	case strings.Contains(s, "--"):
		return blank(doubleDashRe, s)
	case strings.Contains(s, "__"):
		return blank(doubleUnderRe, s)
	}
	return s
}

// IssueNumber finds the issue token in name and returns it with its byte
// offsets. A leading "#" is part of the offsets but not of the issue. The
// first word is never considered so series names that start with a number
// ("2000 AD") are not mistaken for issues.
func IssueNumber(name string) (issue string, start, end int) {
	s := stripTrailer(name)
	s = strings.ReplaceAll(s, "+", " ")
	s = blank(parenRe, s)
	s = blank(bracketRe, s)
	s = fixSpaces(s, false)
	s = blank(ofCountRe, s)

	locs := wordRe.FindAllStringIndex(s, -1)
	if len(locs) <= 1 {
		return "", 0, 0
	}
	locs = locs[1:]
	word := func(i int) string { return s[locs[i][0]:locs[i][1]] }

	found := -1
	for i := len(locs) - 1; i >= 0; i-- {
		if hashIssueRe.MatchString(word(i)) {
			found = i
			break
		}
	}
	if found < 0 && bareIssueRe.MatchString(word(len(locs)-1)) {
		found = len(locs) - 1
	}
	if found < 0 {
		for i := len(locs) - 1; i >= 0; i-- {
			if hashAnyRe.MatchString(word(i)) {
				found = i
				break
			}
		}
	}
	if found < 0 {
		return "", 0, 0
	}

	issue = strings.TrimPrefix(word(found), "#")
	return issue, locs[found][0], locs[found][1]
}

// SeriesName returns the text before issueStart as the series, splitting off
// a trailing volume marker ("v2", "Vol. 3"). Without a marker, a parenthesized
// year as the last word ("(1994)") is used as the volume. When no issue was
// found, a trailing one-shot keyword such as "TPB" is dropped from the series.
func SeriesName(name string, issueStart int) (series, volume string) {
	s := name
	if issueStart != 0 && issueStart <= len(s) {
		s = s[:issueStart]
	}
	s = stripTrailer(s)
	s = strings.ReplaceAll(s, "+", " ")
	s = fixSpaces(s, true)

	var lastWord string
	if fields := strings.Fields(s); len(fields) > 0 {
		lastWord = fields[len(fields)-1]
	}

	series = parenRe.ReplaceAllString(s, "")
	if m := volumeRe.FindStringSubmatch(series); m != nil {
		series = m[1]
		volume = m[3]
	}
	if volume == "" {
		if m := yearVolumeRe.FindStringSubmatch(lastWord); m != nil {
			volume = m[1]
		}
	}
	series = strings.TrimSpace(series)

	if issueStart == 0 {
		if idx := strings.LastIndex(series, " "); idx >= 0 {
			if _, ok := oneShotWords[strings.ToLower(series[idx+1:])]; ok {
				series = strings.TrimSpace(series[:idx])
			}
		}
	}
	return series, strings.TrimSpace(volume)
}

// Year returns the first year in 1900–2099 found after issueEnd. Years
// wrapped in parentheses or "--" win over bare numbers.
func Year(name string, issueEnd int) string {
	tail := after(name, issueEnd)
	if m := boundedYearRe.FindStringSubmatch(tail); m != nil {
		if m[1] != "" {
			return m[1]
		}
		return m[2]
	}
	if m := bareYearRe.FindStringSubmatch(tail); m != nil {
		return m[1]
	}
	return ""
}

// IssueCount returns NN from an "of NN" phrase after issueEnd, without
// leading zeros.
func IssueCount(name string, issueEnd int) string {
	tail := fixSpaces(after(name, issueEnd), false)
	var count string
	if m := spacedCountRe.FindStringSubmatch(tail); m != nil {
		count = m[1]
	} else if m := parenCountRe.FindStringSubmatch(tail); m != nil {
		count = m[1]
	}
	return strings.TrimLeft(count, "0")
}

// Remainder returns what follows the issue once the recovered volume, year,
// and count have been taken out.
func Remainder(name, year, count, volume string, issueEnd int) string {
	var rest string
	switch {
	case strings.Contains(name, "--"):
		rest = strings.SplitN(name, "--", 2)[1]
	case strings.Contains(name, "__"):
		rest = strings.SplitN(name, "__", 2)[1]
	case issueEnd != 0:
		rest = after(name, issueEnd)
	}

	rest = fixSpaces(rest, true)
	if volume != "" {
		rest = strings.Replace(rest, "Vol."+volume, "", 1)
	}
	if year != "" {
		rest = strings.Replace(rest, year, "", 1)
	}
	if count != "" {
		rest = strings.Replace(rest, "of "+count, "", 1)
	}
	rest = strings.ReplaceAll(rest, "()", "")
	rest = strings.ReplaceAll(rest, "  ", " ")
	return strings.TrimSpace(rest)
}

func after(s string, offset int) string {
	if offset <= 0 {
		return s
	}
	if offset >= len(s) {
		return ""
	}
	return s[offset:]
}

// Normalize prepares a path for parsing: base name without its archive
// extension, percent-escapes decoded, NFC-normalized, and "_28"/"_29" runs
// left by double URL-encoding turned back into parentheses. Any other
// suffix after a dot is part of the name.
func Normalize(path string) string {
	name := filepath.Base(path)
	if ext := filepath.Ext(name); ext != "" {
		if _, ok := archiveExts[strings.ToLower(ext)]; ok {
			name = strings.TrimSuffix(name, ext)
		}
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	name = norm.NFC.String(name)
	if strings.Count(name, "_28") > 1 && strings.Count(name, "_29") > 1 {
		name = strings.ReplaceAll(name, "_28", "(")
		name = strings.ReplaceAll(name, "_29", ")")
	}
	return name
}

// Parse runs every stage over path. Offsets in the result refer to
// Normalize(path).
func Parse(path string) Result {
	name := Normalize(path)

	var r Result
	r.Issue, r.IssueStart, r.IssueEnd = IssueNumber(name)
	r.Series, r.Volume = SeriesName(name, r.IssueStart)

	end := r.IssueEnd
	if end == 0 {
		end = len(r.Series)
	}
	r.Year = Year(name, end)
	r.IssueCount = IssueCount(name, end)
	r.Remainder = Remainder(name, r.Year, r.IssueCount, r.Volume, end)

	if r.Issue != "" {
		r.Issue = strings.TrimLeft(r.Issue, "0")
		if r.Issue == "" {
			r.Issue = "0"
		}
		if r.Issue[0] == '.' {
			r.Issue = "0" + r.Issue
		}
	}
	return r
}
