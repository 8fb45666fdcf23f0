// Package comicinfo models comic book metadata and its ComicInfo.xml encoding.
//
// Metadata is storage independent: scalar fields are kept as strings so that
// issue decorations ("1.MU", "½") and partial dates survive untouched, credits
// are unique by person and role set, and the page list describes the images
// of the archive the record belongs to. Overlay merges a secondary record
// into a primary one and is the only merge rule used by callers.
//
// Credits are stored one role element per role. Decoding groups a person's
// roles back into a single credit. The primary flag and roles without a
// matching element are not representable; UnmappedCredits reports the
// latter so writers can warn about them.
package comicinfo
