// Package renamer renders archive file names from metadata using a
// %token% template such as "%series% v%volume% #%issue% (%year%)".
package renamer
