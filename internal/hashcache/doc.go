// Package hashcache persists page fingerprints in SQLite so unchanged
// archives are not decoded again on every duplicate scan.
//
// Rows are keyed by archive path and page index and stamped with the file's
// size and modification time; a lookup only returns rows whose stamp matches
// the file as it is now. Writers replace every row of a path at once.
package hashcache
