// Package sorter files tagged archives into a publisher/series/volume
// directory tree.
package sorter
