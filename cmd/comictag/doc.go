// Package main hosts the comictag CLI entrypoint and command graph.
//
// The Cobra command tree reads and writes ComicInfo.xml inside cbz archives,
// renames and sorts archives by their metadata, and reviews pages that occur
// in more than one archive. It owns configuration resolution, logger setup,
// the run lock, and all terminal interaction; the internal packages never
// print or prompt.
package main
