// Package comic binds an archive path to its backend and exposes the
// operations callers perform on a comic book: listing pages, reading page
// bytes, and reading, writing, or removing its ComicInfo.xml record.
//
// A Comic caches the entry list, the sorted page names, and the parsed
// metadata. Every mutation attempt drops the whole cache, so the next read
// reflects the archive on disk. Pages are ordered by natural sort of their
// lower-cased entry names.
package comic
