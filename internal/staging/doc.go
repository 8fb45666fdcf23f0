// Package staging finds and removes the temporary files archive rebuilds
// leave behind when a run is interrupted.
//
// Every rebuild writes ".<name>-<random>.tmp" next to the archive and renames
// it over the original. A crash between the two steps leaves the temp file;
// the original archive is untouched.
package staging
