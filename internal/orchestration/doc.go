// Package orchestration coordinates parallel grid reductions: it validates the
// input, partitions the grid, runs one worker goroutine per partition, waits
// for all of them and reduces their partial sums in partition order. It
// decouples the reduction from presentation via the ProgressReporter and
// ResultPresenter interfaces.
package orchestration
