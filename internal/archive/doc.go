// Package archive gives entry-level access to comic book containers.
//
// A Backend lists, reads, writes, and removes named entries. The zip (cbz)
// backend cannot edit entries in place, so every mutation rebuilds the whole
// container into a temporary file beside the original and renames it over the
// original path; a crash at any point leaves either the old or the new file in
// place. Files that are not zip containers get the unsupported backend, which
// lists nothing and refuses every mutation.
//
// The backend variant is chosen once by Open from the file's magic bytes.
package archive
