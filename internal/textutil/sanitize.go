package textutil

import "strings"

// fileNameReplacer rewrites characters that break common filesystems. Colons
// keep surrounding spacing so "Batman: Year One" reads "Batman - Year One".
var fileNameReplacer = strings.NewReplacer(
	" :", " -",
	": ", " - ",
	":", "-",
	"/", "-",
	"\\", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// SanitizePathSegment behaves like SanitizeFileName and additionally strips
// trailing dots, which some filesystems silently drop from directory names.
// Segments that reduce to "." or ".." become empty.
func SanitizePathSegment(segment string) string {
	out := strings.TrimRight(SanitizeFileName(segment), ". ")
	if out == "" || out == "." || out == ".." {
		return ""
	}
	return out
}

// CollapseSpaces joins whitespace-separated fields with single spaces.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
