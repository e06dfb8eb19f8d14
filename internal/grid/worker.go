package grid

import (
	"context"
	"errors"
	"fmt"

	"github.com/agbru/gridsum/internal/progress"
)

const (
	// CancelCheckInterval is the number of elements summed between two
	// context checks.
	CancelCheckInterval = 1 << 14
	// ProgressReportInterval is the number of elements summed between two
	// progress reports.
	ProgressReportInterval = 1 << 16
)

// ErrRaggedRow is reported by a worker that meets a row whose length differs
// from the first row inside its partition.
var ErrRaggedRow = errors.New("ragged row")

// ErrOutOfRange is reported by a worker handed a partition that does not fit
// inside the grid.
var ErrOutOfRange = errors.New("partition out of range")

// Worker sums single partitions. The zero value uses the package defaults.
type Worker struct {
	// CheckInterval overrides CancelCheckInterval when positive.
	CheckInterval int
	// ReportInterval overrides ProgressReportInterval when positive.
	ReportInterval int
}

// SumPartition sums the values at every flat index of p, in ascending order.
//
// A zero-length partition returns 0. The worker fails, rather than producing a
// wrong partial sum, when a row it visits is ragged, when p lies outside the
// grid, or when ctx is canceled. It never writes to g.
//
// Parameters:
//   - ctx: Cancellation for long partitions.
//   - g: The shared read-only grid.
//   - p: The partition to sum.
//   - report: Optional progress callback, called with values in (0, 1].
//
// Returns:
//   - float64: The partial sum.
//   - error: ErrRaggedRow, ErrOutOfRange or the context error.
func (w Worker) SumPartition(ctx context.Context, g Grid, p Partition, report progress.ProgressCallback) (float64, error) {
	if p.Length == 0 {
		if report != nil {
			report(1)
		}
		return 0, nil
	}
	cols := g.Cols()
	if p.Start < 0 || p.Length < 0 || cols == 0 || p.End() > len(g)*cols {
		return 0, fmt.Errorf("%w: %s over %d elements", ErrOutOfRange, p, len(g)*cols)
	}

	checkEvery := w.CheckInterval
	if checkEvery <= 0 {
		checkEvery = CancelCheckInterval
	}
	reportEvery := w.ReportInterval
	if reportEvery <= 0 {
		reportEvery = ProgressReportInterval
	}

	var sum float64
	done, sinceCheck, sinceReport := 0, 0, 0
	for flat := p.Start; flat < p.End(); {
		row, col := flat/cols, flat%cols
		if len(g[row]) != cols {
			return 0, fmt.Errorf("%w: row %d has %d columns, want %d", ErrRaggedRow, row, len(g[row]), cols)
		}
		// Sum the rest of this row, bounded by the partition end and the
		// next context check.
		n := min(cols-col, p.End()-flat, checkEvery-sinceCheck)
		for _, v := range g[row][col : col+n] {
			sum += v
		}
		flat += n
		done += n
		sinceCheck += n
		sinceReport += n

		if sinceCheck >= checkEvery {
			sinceCheck = 0
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		if report != nil && sinceReport >= reportEvery {
			sinceReport = 0
			report(float64(done) / float64(p.Length))
		}
	}
	if report != nil {
		report(1)
	}
	return sum, nil
}

// SumPartition sums p with a default Worker.
func SumPartition(ctx context.Context, g Grid, p Partition, report progress.ProgressCallback) (float64, error) {
	return Worker{}.SumPartition(ctx, g, p, report)
}
