// Package logging assembles structured slog loggers and formatting helpers used
// across comictag commands.
//
// It owns the console and JSON handlers, fans each record out to the terminal
// and to a per-run log file, and stamps every record with the run identifier.
// Context helpers tag log lines with the archive being processed so batch
// output stays attributable. A no-op logger is provided for tests and wiring
// code that cannot fail.
package logging
