// Package textutil provides string helpers for building file and directory
// names from metadata values.
package textutil
