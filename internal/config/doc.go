// Package config loads, normalizes, and validates comictag configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// COMICTAG_SORT_DIR. The Config value is built once by the CLI and handed to
// each component explicitly; nothing in the core reads settings from global
// state.
package config
