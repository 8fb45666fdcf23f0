// Package filename recovers series, issue, volume, year, and issue count from
// comic archive file names.
//
// Parsing is a pure function of the input string. Each stage works on a copy
// of the name in which ignored regions (parentheticals, separators) are
// blanked with spaces of equal byte length, so offsets found by one stage stay
// valid in the original string for the next.
package filename
