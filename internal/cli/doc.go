// Package cli renders reductions in a terminal: the execution banner, a
// spinner with an aggregate progress bar, the result with its optional
// per-partition table, and the optional result file.
package cli
