// Package preflight provides readiness checks for the filesystem paths and
// state files comictag depends on.
//
// The CLI "config validate" command runs RunAll and prints one line per
// check. Checks for features the config disables are skipped.
package preflight
