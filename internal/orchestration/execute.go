package orchestration

import (
	"context"
	"io"
	"sync"

	"github.com/agbru/gridsum/internal/grid"
	"github.com/agbru/gridsum/internal/progress"
)

// ExecuteReduction runs r.Reduce while a ProgressReporter displays worker
// progress.
//
// It owns the progress channel: the channel is created here, handed to the
// workers, and closed only after Reduce has returned (so after every worker
// has finished), after which ExecuteReduction waits for the reporter to drain
// it. The buffer holds ProgressBufferMultiplier updates per partition, up to
// MaxProgressBuffer; updates that do not fit are dropped by the workers.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - r: The reducer to run.
//   - g: The grid to sum.
//   - workerCount: The number of workers.
//   - reporter: The progress reporter (use NullProgressReporter for quiet mode).
//   - out: The io.Writer handed to the reporter.
//
// Returns:
//   - Result: The reduction result.
//   - error: The reduction error, if any.
func ExecuteReduction(ctx context.Context, r *Reducer, g grid.Grid, workerCount int, reporter ProgressReporter, out io.Writer) (Result, error) {
	numPartitions := min(max(workerCount, 0), grid.MaxPartitions)
	bufferSize := min(max(numPartitions, 1), MaxProgressBuffer/ProgressBufferMultiplier) * ProgressBufferMultiplier
	progressChan := make(chan progress.ProgressUpdate, bufferSize)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, numPartitions, out)

	res, err := r.Reduce(ctx, g, workerCount, progressChan)

	close(progressChan)
	displayWg.Wait()
	return res, err
}
