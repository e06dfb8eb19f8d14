package orchestration

import (
	"time"

	"github.com/agbru/gridsum/internal/progress"
)

// ProgressAggregator manages multi-partition progress aggregation.
// It wraps progress.Aggregate and adds a linear ETA estimate. Both the CLI
// and the TUI use it to avoid duplicating the aggregation logic.
type ProgressAggregator struct {
	state     *progress.Aggregate
	startTime time.Time
	now       func() time.Time
}

// NewProgressAggregator creates a new aggregator for the given number
// of partitions. Returns nil if numPartitions <= 0.
func NewProgressAggregator(numPartitions int) *ProgressAggregator {
	if numPartitions <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state:     progress.NewAggregate(numPartitions),
		startTime: time.Now(),
		now:       time.Now,
	}
}

// AggregatedProgress holds the result of processing a single progress update.
type AggregatedProgress struct {
	// PartitionIndex is the index of the partition that sent the update.
	PartitionIndex int
	// Value is the raw progress value from the update (0.0 to 1.0).
	Value float64
	// AverageProgress is the aggregated average across all partitions.
	AverageProgress float64
	// ETA is the estimated time remaining, 0 when unknown.
	ETA time.Duration
}

// Update processes a single progress update and returns the aggregated result.
func (a *ProgressAggregator) Update(update progress.ProgressUpdate) AggregatedProgress {
	avg := a.state.Update(update)
	return AggregatedProgress{
		PartitionIndex:  update.PartitionIndex,
		Value:           update.Value,
		AverageProgress: avg,
		ETA:             a.GetETA(),
	}
}

// CalculateAverage returns the current average progress without updating.
func (a *ProgressAggregator) CalculateAverage() float64 {
	return a.state.Average()
}

// PartitionValues returns the latest progress of every partition.
func (a *ProgressAggregator) PartitionValues() []float64 {
	return a.state.Values()
}

// GetETA extrapolates the remaining time from the elapsed time and the
// average progress. It returns 0 before any progress or after completion.
func (a *ProgressAggregator) GetETA() time.Duration {
	avg := a.state.Average()
	if avg <= 0 || avg >= 1 {
		return 0
	}
	elapsed := a.now().Sub(a.startTime)
	return time.Duration(float64(elapsed) * (1 - avg) / avg)
}

// NumPartitions returns the number of partitions being tracked.
func (a *ProgressAggregator) NumPartitions() int {
	return a.state.Len()
}

// DrainChannel reads all updates from the channel without processing.
func DrainChannel(progressChan <-chan progress.ProgressUpdate) {
	for range progressChan {
	}
}
