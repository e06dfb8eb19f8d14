package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/gridsum/internal/progress"
)

// PresentationOptions configures how results are presented to the user.
type PresentationOptions struct {
	// Details shows the per-partition table.
	Details bool
	// Verbose shows memory statistics and full precision.
	Verbose bool
}

// ProgressReporter defines the interface for displaying reduction progress.
// This interface decouples the orchestration layer from the presentation layer,
// so the coordinator never depends on spinners, dashboards or terminals.
type ProgressReporter interface {
	// DisplayProgress starts displaying progress updates from the channel.
	// It should be called in a separate goroutine and will run until the
	// progressChan is closed.
	//
	// Parameters:
	//   - wg: A WaitGroup to signal when display is complete.
	//   - progressChan: Channel receiving progress updates from workers.
	//   - numPartitions: The number of partitions being tracked.
	//   - out: The writer for progress output.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numPartitions int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numPartitions int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numPartitions int, out io.Writer) {
	f(wg, progressChan, numPartitions, out)
}

// NullProgressReporter is a no-op implementation of ProgressReporter.
// It drains the progress channel without displaying anything.
// Useful for quiet mode or testing.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter defines the interface for presenting reduction results,
// allowing different output formats (CLI, TUI) without modifying the
// orchestration logic.
type ResultPresenter interface {
	// PresentResult displays the final sum and, optionally, per-partition details.
	PresentResult(result Result, opts PresentationOptions, out io.Writer)
}

// DurationFormatter formats durations for display.
type DurationFormatter interface {
	FormatDuration(d time.Duration) string
}

// ErrorHandler handles reduction errors and returns exit codes.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
