// Package tui implements the interactive terminal dashboard (--tui): one
// progress bar per partition, the overall progress and result, runtime
// memory and system load sparklines. It follows the Elm architecture of
// bubbletea; the bridge types adapt the orchestration reporting interfaces
// to bubbletea messages.
package tui
