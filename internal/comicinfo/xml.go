package comicinfo

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed reports a metadata document that is not valid ComicInfo XML.
var ErrMalformed = errors.New("malformed ComicInfo document")

// Canonical role names. Reading a document yields these; writing maps any
// recognized alias onto the matching element.
const (
	RoleWriter     = "Writer"
	RolePenciller  = "Penciller"
	RoleInker      = "Inker"
	RoleColorist   = "Colorist"
	RoleLetterer   = "Letterer"
	RoleCover      = "Cover"
	RoleEditor     = "Editor"
	RoleTranslator = "Translator"
)

var roleAliases = map[string][]string{
	RoleWriter:     {"writer", "plotter", "scripter"},
	RolePenciller:  {"artist", "penciller", "penciler", "breakdowns"},
	RoleInker:      {"inker", "artist", "finishes"},
	RoleColorist:   {"colorist", "colourist", "colorer", "colourer"},
	RoleLetterer:   {"letterer"},
	RoleCover:      {"cover", "covers", "coverartist", "cover artist"},
	RoleEditor:     {"editor"},
	RoleTranslator: {"translator", "translation"},
}

type xmlPage struct {
	Image       int    `xml:"Image,attr"`
	Type        string `xml:"Type,attr,omitempty"`
	DoublePage  bool   `xml:"DoublePage,attr,omitempty"`
	ImageSize   int    `xml:"ImageSize,attr,omitempty"`
	ImageWidth  int    `xml:"ImageWidth,attr,omitempty"`
	ImageHeight int    `xml:"ImageHeight,attr,omitempty"`
}

// xmlComicInfo follows the ComicInfo v2 element order.
type xmlComicInfo struct {
	XMLName         xml.Name  `xml:"ComicInfo"`
	XSI             string    `xml:"xmlns:xsi,attr,omitempty"`
	XSD             string    `xml:"xmlns:xsd,attr,omitempty"`
	Title           string    `xml:"Title,omitempty"`
	Series          string    `xml:"Series,omitempty"`
	Number          string    `xml:"Number,omitempty"`
	Count           string    `xml:"Count,omitempty"`
	Volume          string    `xml:"Volume,omitempty"`
	AlternateSeries string    `xml:"AlternateSeries,omitempty"`
	AlternateNumber string    `xml:"AlternateNumber,omitempty"`
	AlternateCount  string    `xml:"AlternateCount,omitempty"`
	Summary         string    `xml:"Summary,omitempty"`
	Notes           string    `xml:"Notes,omitempty"`
	Year            string    `xml:"Year,omitempty"`
	Month           string    `xml:"Month,omitempty"`
	Day             string    `xml:"Day,omitempty"`
	Writer          string    `xml:"Writer,omitempty"`
	Penciller       string    `xml:"Penciller,omitempty"`
	Inker           string    `xml:"Inker,omitempty"`
	Colorist        string    `xml:"Colorist,omitempty"`
	Letterer        string    `xml:"Letterer,omitempty"`
	CoverArtist     string    `xml:"CoverArtist,omitempty"`
	Editor          string    `xml:"Editor,omitempty"`
	Translator      string    `xml:"Translator,omitempty"`
	Publisher       string    `xml:"Publisher,omitempty"`
	Imprint         string    `xml:"Imprint,omitempty"`
	Genre           string    `xml:"Genre,omitempty"`
	Web             string    `xml:"Web,omitempty"`
	PageCount       int       `xml:"PageCount,omitempty"`
	LanguageISO     string    `xml:"LanguageISO,omitempty"`
	Format          string    `xml:"Format,omitempty"`
	BlackAndWhite   string    `xml:"BlackAndWhite,omitempty"`
	Manga           string    `xml:"Manga,omitempty"`
	Characters      string    `xml:"Characters,omitempty"`
	Teams           string    `xml:"Teams,omitempty"`
	Locations       string    `xml:"Locations,omitempty"`
	ScanInformation string    `xml:"ScanInformation,omitempty"`
	StoryArc        string    `xml:"StoryArc,omitempty"`
	SeriesGroup     string    `xml:"SeriesGroup,omitempty"`
	AgeRating       string    `xml:"AgeRating,omitempty"`
	Pages           []xmlPage `xml:"Pages>Page,omitempty"`
	CommunityRating string    `xml:"CommunityRating,omitempty"`
}

// creditFields pairs each role element with its canonical role.
func (x *xmlComicInfo) creditFields() []struct {
	role string
	ptr  *string
} {
	return []struct {
		role string
		ptr  *string
	}{
		{RoleWriter, &x.Writer},
		{RolePenciller, &x.Penciller},
		{RoleInker, &x.Inker},
		{RoleColorist, &x.Colorist},
		{RoleLetterer, &x.Letterer},
		{RoleCover, &x.CoverArtist},
		{RoleEditor, &x.Editor},
		{RoleTranslator, &x.Translator},
	}
}

// Marshal encodes md as an indented ComicInfo document.
func Marshal(md *Metadata) ([]byte, error) {
	if md == nil {
		return nil, errors.New("marshal ComicInfo: nil metadata")
	}
	doc := xmlComicInfo{
		XSI:             "http://www.w3.org/2001/XMLSchema-instance",
		XSD:             "http://www.w3.org/2001/XMLSchema",
		Title:           md.Title,
		Series:          md.Series,
		Number:          md.Issue,
		Count:           md.IssueCount,
		Volume:          md.Volume,
		AlternateSeries: md.AlternateSeries,
		AlternateNumber: md.AlternateNumber,
		AlternateCount:  md.AlternateCount,
		Summary:         md.Summary,
		Notes:           md.Notes,
		Year:            md.Year,
		Month:           md.Month,
		Day:             md.Day,
		Publisher:       md.Publisher,
		Imprint:         md.Imprint,
		Genre:           md.Genre,
		Web:             md.Web,
		PageCount:       md.PageCount,
		LanguageISO:     md.LanguageISO,
		Format:          md.Format,
		BlackAndWhite:   md.BlackAndWhite,
		Manga:           md.Manga,
		Characters:      md.Characters,
		Teams:           md.Teams,
		Locations:       md.Locations,
		ScanInformation: md.ScanInfo,
		StoryArc:        md.StoryArc,
		SeriesGroup:     md.SeriesGroup,
		AgeRating:       md.AgeRating,
		CommunityRating: md.CriticalRating,
	}

	for _, field := range doc.creditFields() {
		var names []string
		for _, c := range md.Credits {
			if hasRole(c.Roles, field.role) && !containsFold(names, c.Person) {
				names = append(names, c.Person)
			}
		}
		*field.ptr = joinNames(names)
	}

	for _, p := range md.Pages {
		doc.Pages = append(doc.Pages, xmlPage{
			Image:       p.Image,
			Type:        p.Type,
			DoublePage:  p.DoublePage,
			ImageSize:   p.Size,
			ImageWidth:  p.Width,
			ImageHeight: p.Height,
		})
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshal ComicInfo: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Unmarshal decodes a ComicInfo document. A person named in several role
// elements becomes one credit holding every matching canonical role.
func Unmarshal(data []byte) (*Metadata, error) {
	var doc xmlComicInfo
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	md := &Metadata{
		Series:          strings.TrimSpace(doc.Series),
		Volume:          strings.TrimSpace(doc.Volume),
		Issue:           strings.TrimSpace(doc.Number),
		IssueCount:      strings.TrimSpace(doc.Count),
		Title:           strings.TrimSpace(doc.Title),
		Publisher:       strings.TrimSpace(doc.Publisher),
		Imprint:         strings.TrimSpace(doc.Imprint),
		Year:            strings.TrimSpace(doc.Year),
		Month:           strings.TrimSpace(doc.Month),
		Day:             strings.TrimSpace(doc.Day),
		StoryArc:        strings.TrimSpace(doc.StoryArc),
		SeriesGroup:     strings.TrimSpace(doc.SeriesGroup),
		Genre:           strings.TrimSpace(doc.Genre),
		AgeRating:       strings.TrimSpace(doc.AgeRating),
		LanguageISO:     strings.TrimSpace(doc.LanguageISO),
		Format:          strings.TrimSpace(doc.Format),
		Notes:           strings.TrimSpace(doc.Notes),
		Summary:         strings.TrimSpace(doc.Summary),
		Web:             strings.TrimSpace(doc.Web),
		ScanInfo:        strings.TrimSpace(doc.ScanInformation),
		AlternateSeries: strings.TrimSpace(doc.AlternateSeries),
		AlternateNumber: strings.TrimSpace(doc.AlternateNumber),
		AlternateCount:  strings.TrimSpace(doc.AlternateCount),
		CriticalRating:  strings.TrimSpace(doc.CommunityRating),
		Characters:      strings.TrimSpace(doc.Characters),
		Teams:           strings.TrimSpace(doc.Teams),
		Locations:       strings.TrimSpace(doc.Locations),
		BlackAndWhite:   strings.TrimSpace(doc.BlackAndWhite),
		Manga:           strings.TrimSpace(doc.Manga),
		PageCount:       doc.PageCount,
	}
	for _, field := range doc.creditFields() {
		for _, name := range splitNames(*field.ptr) {
			addCreditRole(md, name, field.role)
		}
	}
	for _, p := range doc.Pages {
		md.Pages = append(md.Pages, Page{
			Image:      p.Image,
			Type:       p.Type,
			Size:       p.ImageSize,
			Width:      p.ImageWidth,
			Height:     p.ImageHeight,
			DoublePage: p.DoublePage,
		})
	}
	return md, nil
}

// Role elements hold a comma separated name list. When any name carries a
// comma of its own ("Lee, Jim") the element is written with semicolons
// instead, and a value containing a semicolon is split on semicolons only.
func joinNames(names []string) string {
	for _, name := range names {
		if strings.Contains(name, ",") {
			return strings.Join(names, "; ")
		}
	}
	return strings.Join(names, ", ")
}

func splitNames(value string) []string {
	sep := ","
	if strings.Contains(value, ";") {
		sep = ";"
	}
	var names []string
	for _, name := range strings.Split(value, sep) {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func addCreditRole(md *Metadata, person, role string) {
	for i := range md.Credits {
		c := &md.Credits[i]
		if strings.EqualFold(c.Person, person) {
			if !containsFold(c.Roles, role) {
				c.Roles = append(c.Roles, role)
			}
			return
		}
	}
	md.Credits = append(md.Credits, Credit{Person: person, Roles: []string{role}})
}

// UnmappedCredits returns the credit roles no ComicInfo element can hold,
// grouped by person. Marshal leaves them out of the document. A credit
// without any role is reported with an empty role list.
func UnmappedCredits(md *Metadata) []Credit {
	if md == nil {
		return nil
	}
	var out []Credit
	for _, c := range md.Credits {
		if len(c.Roles) == 0 {
			out = append(out, Credit{Person: c.Person})
			continue
		}
		var roles []string
		for _, r := range c.Roles {
			if !knownRole(r) {
				roles = append(roles, r)
			}
		}
		if len(roles) > 0 {
			out = append(out, Credit{Person: c.Person, Roles: roles})
		}
	}
	return out
}

func knownRole(role string) bool {
	for canonical := range roleAliases {
		if hasRole([]string{role}, canonical) {
			return true
		}
	}
	return false
}

// hasRole reports whether any of roles is an alias of the canonical role.
func hasRole(roles []string, canonical string) bool {
	aliases := roleAliases[canonical]
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if strings.EqualFold(r, canonical) {
			return true
		}
		for _, a := range aliases {
			if r == a {
				return true
			}
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
