//go:generate mockgen -source=summer.go -destination=mocks/mock_summer.go -package=mocks

package orchestration

import (
	"context"
	"time"

	"github.com/agbru/gridsum/internal/grid"
	"github.com/agbru/gridsum/internal/progress"
)

// PartitionSummer computes the partial sum of one partition. grid.Worker is
// the production implementation; tests substitute mocks to observe how many
// workers the coordinator spawns and to inject faults.
type PartitionSummer interface {
	SumPartition(ctx context.Context, g grid.Grid, p grid.Partition, report progress.ProgressCallback) (float64, error)
}

// PartitionSummerFunc adapts a function to PartitionSummer.
type PartitionSummerFunc func(ctx context.Context, g grid.Grid, p grid.Partition, report progress.ProgressCallback) (float64, error)

// SumPartition calls f.
func (f PartitionSummerFunc) SumPartition(ctx context.Context, g grid.Grid, p grid.Partition, report progress.ProgressCallback) (float64, error) {
	return f(ctx, g, p, report)
}

// MetricsRecorder receives per-call and per-partition measurements.
// internal/metrics.Recorder implements it with Prometheus collectors.
type MetricsRecorder interface {
	ObserveSum(workers, elements int, duration time.Duration, err error)
	ObservePartition(length int, duration time.Duration, err error)
}

type nopMetrics struct{}

func (nopMetrics) ObserveSum(int, int, time.Duration, error)  {}
func (nopMetrics) ObservePartition(int, time.Duration, error) {}
