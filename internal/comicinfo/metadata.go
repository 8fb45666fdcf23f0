package comicinfo

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// EntryName is the reserved archive entry holding the metadata document.
const EntryName = "ComicInfo.xml"

// Page types understood by ComicInfo readers.
const (
	PageFrontCover = "FrontCover"
	PageStory      = "Story"
)

// Credit names one creator and the roles they held.
type Credit struct {
	Person  string
	Roles   []string
	Primary bool
}

// Page describes one image of the archive. Zero Size, Width, and Height mean
// the value has not been computed.
type Page struct {
	Image      int
	Type       string
	Size       int
	Width      int
	Height     int
	DoublePage bool
}

// Metadata is one comic's descriptive record.
type Metadata struct {
	Series          string
	Volume          string
	Issue           string
	IssueCount      string
	Title           string
	Publisher       string
	Imprint         string
	Year            string
	Month           string
	Day             string
	StoryArc        string
	SeriesGroup     string
	Genre           string
	AgeRating       string
	LanguageISO     string
	Format          string
	Notes           string
	Summary         string
	Web             string
	ScanInfo        string
	AlternateSeries string
	AlternateNumber string
	AlternateCount  string
	CriticalRating  string
	Characters      string
	Teams           string
	Locations       string
	BlackAndWhite   string
	Manga           string
	PageCount       int

	Credits []Credit
	Pages   []Page
}

// scalarFields lists every string field in display order with its label.
func (m *Metadata) scalarFields() []struct {
	label string
	ptr   *string
} {
	return []struct {
		label string
		ptr   *string
	}{
		{"series", &m.Series},
		{"issue", &m.Issue},
		{"issue_count", &m.IssueCount},
		{"title", &m.Title},
		{"publisher", &m.Publisher},
		{"year", &m.Year},
		{"month", &m.Month},
		{"day", &m.Day},
		{"volume", &m.Volume},
		{"genre", &m.Genre},
		{"language", &m.LanguageISO},
		{"critical_rating", &m.CriticalRating},
		{"alternate_series", &m.AlternateSeries},
		{"alternate_number", &m.AlternateNumber},
		{"alternate_count", &m.AlternateCount},
		{"imprint", &m.Imprint},
		{"web_link", &m.Web},
		{"format", &m.Format},
		{"manga", &m.Manga},
		{"black_and_white", &m.BlackAndWhite},
		{"maturity_rating", &m.AgeRating},
		{"story_arc", &m.StoryArc},
		{"series_group", &m.SeriesGroup},
		{"scan_info", &m.ScanInfo},
		{"characters", &m.Characters},
		{"teams", &m.Teams},
		{"locations", &m.Locations},
		{"summary", &m.Summary},
		{"notes", &m.Notes},
	}
}

// IsEmpty reports whether the record carries no value at all. A page list
// that SetDefaultPageList could have produced carries no value.
func (m *Metadata) IsEmpty() bool {
	if m == nil {
		return true
	}
	for _, f := range m.scalarFields() {
		if *f.ptr != "" {
			return false
		}
	}
	return m.PageCount == 0 && len(m.Credits) == 0 && isDefaultPageList(m.Pages)
}

func isDefaultPageList(pages []Page) bool {
	for i, p := range pages {
		want := Page{Image: i}
		if i == 0 {
			want.Type = PageFrontCover
		}
		if p != want {
			return false
		}
	}
	return true
}

// Overlay merges other into m. A scalar from other replaces m's value only
// when it is set. Credits are unioned by person and role set. A non-empty
// page list from other replaces m's list wholesale.
func (m *Metadata) Overlay(other *Metadata) {
	if m == nil || other == nil {
		return
	}
	dst := m.scalarFields()
	for i, f := range other.scalarFields() {
		if *f.ptr != "" {
			*dst[i].ptr = *f.ptr
		}
	}
	if other.PageCount != 0 {
		m.PageCount = other.PageCount
	}
	for _, c := range other.Credits {
		m.AddCredit(c.Person, c.Primary, c.Roles...)
	}
	if len(other.Pages) > 0 {
		m.Pages = slices.Clone(other.Pages)
	}
}

// AddCredit records person in roles. An existing credit with the same person
// and role set is updated in place instead of duplicated.
func (m *Metadata) AddCredit(person string, primary bool, roles ...string) {
	person = strings.TrimSpace(person)
	if person == "" {
		return
	}
	cleaned := make([]string, 0, len(roles))
	for _, r := range roles {
		if r = strings.TrimSpace(r); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	for i := range m.Credits {
		c := &m.Credits[i]
		if strings.EqualFold(c.Person, person) && sameRoles(c.Roles, cleaned) {
			c.Primary = c.Primary || primary
			return
		}
	}
	m.Credits = append(m.Credits, Credit{Person: person, Roles: cleaned, Primary: primary})
}

func sameRoles(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	norm := func(in []string) []string {
		out := make([]string, len(in))
		for i, r := range in {
			out[i] = strings.ToLower(r)
		}
		slices.Sort(out)
		return out
	}
	return slices.Equal(norm(a), norm(b))
}

// SetDefaultPageList replaces the page list with count sequential entries,
// the first marked as the front cover.
func (m *Metadata) SetDefaultPageList(count int) {
	m.Pages = make([]Page, 0, count)
	for i := 0; i < count; i++ {
		p := Page{Image: i}
		if i == 0 {
			p.Type = PageFrontCover
		}
		m.Pages = append(m.Pages, p)
	}
}

// CoverImageIndex returns the page marked as front cover, or 0.
func (m *Metadata) CoverImageIndex() int {
	for _, p := range m.Pages {
		if p.Type == PageFrontCover {
			return p.Image
		}
	}
	return 0
}

// Clone returns a deep copy of m.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	out := *m
	out.Pages = slices.Clone(m.Pages)
	out.Credits = make([]Credit, len(m.Credits))
	for i, c := range m.Credits {
		c.Roles = slices.Clone(c.Roles)
		out.Credits[i] = c
	}
	if m.Credits == nil {
		out.Credits = nil
	}
	return &out
}

// String renders set fields as aligned "key: value" lines.
func (m *Metadata) String() string {
	if m.IsEmpty() {
		return "No metadata"
	}
	type line struct{ key, value string }
	var lines []line
	for _, f := range m.scalarFields() {
		if *f.ptr != "" {
			lines = append(lines, line{f.label, *f.ptr})
		}
	}
	if m.PageCount > 0 {
		lines = append(lines, line{"page_count", strconv.Itoa(m.PageCount)})
	}
	for _, c := range m.Credits {
		value := strings.Join(c.Roles, ", ") + ": " + c.Person
		if c.Primary {
			value += " [P]"
		}
		lines = append(lines, line{"credit", value})
	}

	width := 0
	for _, l := range lines {
		width = max(width, len(l.key))
	}
	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%-*s%s\n", width+2, l.key+":", l.value)
	}
	return b.String()
}
