package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/gridsum/internal/format"
	"github.com/agbru/gridsum/internal/orchestration"
	"github.com/agbru/gridsum/internal/progress"
)

// CLIProgressReporter implements orchestration.ProgressReporter with a
// spinner and an aggregate progress bar.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress delegates to the package-level DisplayProgress.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numPartitions int, out io.Writer) {
	DisplayProgress(wg, progressChan, numPartitions, out)
}

// DisplayProgress shows a spinner whose suffix is the average progress of
// all partitions and an ETA. It runs until progressChan is closed, then
// stops the spinner. The final 100% bar is printed only when every partition
// reported completion, so a failed reduction ends on its error status alone.
//
// Parameters:
//   - wg: Signalled when the display has finished.
//   - progressChan: Updates from the workers; closed by the caller.
//   - numPartitions: The number of partitions being tracked.
//   - out: The terminal writer.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numPartitions int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numPartitions)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := newSpinner(spinner.WithWriter(out), spinner.WithHiddenCursor(true))
	s.UpdateSuffix(progressSuffix(0, 0))
	s.Start()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				if avg := agg.CalculateAverage(); avg >= completeThreshold {
					fmt.Fprintf(out, "[%s] %5.1f%%\n", format.ProgressBar(1, ProgressBarWidth), 100.0)
				}
				return
			}
			agg.Update(update)
		case <-ticker.C:
			s.UpdateSuffix(progressSuffix(agg.CalculateAverage(), agg.GetETA()))
		}
	}
}

// completeThreshold absorbs float rounding in the averaged progress.
const completeThreshold = 1 - 1e-9

func progressSuffix(avg float64, eta time.Duration) string {
	return " Summing " + format.FormatProgressBarWithETA(avg, eta, ProgressBarWidth)
}
