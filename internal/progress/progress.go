// Package progress defines the progress reporting types shared by the grid
// workers, the coordinator and the presentation layers.
package progress

// ProgressUpdate is a single progress notification from one worker.
type ProgressUpdate struct {
	// PartitionIndex identifies the partition (and therefore the worker).
	PartitionIndex int
	// Value is the fraction of the partition summed so far (0.0 to 1.0).
	Value float64
}

// ProgressCallback receives the completion fraction of a single worker.
type ProgressCallback func(value float64)

// NewChannelReporter returns a callback that forwards updates for the given
// partition to ch. Sends never block: if ch is full the update is dropped.
// A nil channel yields a no-op callback.
func NewChannelReporter(ch chan<- ProgressUpdate, partitionIndex int) ProgressCallback {
	if ch == nil {
		return func(float64) {}
	}
	return func(value float64) {
		select {
		case ch <- ProgressUpdate{PartitionIndex: partitionIndex, Value: value}:
		default:
		}
	}
}

// Aggregate tracks the latest progress of each partition and reports the
// average. It is not safe for concurrent use; a single consumer goroutine
// should own it.
type Aggregate struct {
	values []float64
}

// NewAggregate creates an aggregate over n partitions.
func NewAggregate(n int) *Aggregate {
	if n < 0 {
		n = 0
	}
	return &Aggregate{values: make([]float64, n)}
}

// Update records the value for one partition and returns the new average.
// Out-of-range indices are ignored.
func (a *Aggregate) Update(u ProgressUpdate) float64 {
	if u.PartitionIndex >= 0 && u.PartitionIndex < len(a.values) {
		a.values[u.PartitionIndex] = clamp(u.Value)
	}
	return a.Average()
}

// Average returns the mean progress across all partitions, 0 when empty.
func (a *Aggregate) Average() float64 {
	if len(a.values) == 0 {
		return 0
	}
	var total float64
	for _, v := range a.values {
		total += v
	}
	return total / float64(len(a.values))
}

// Values returns a copy of the per-partition progress.
func (a *Aggregate) Values() []float64 {
	out := make([]float64, len(a.values))
	copy(out, a.values)
	return out
}

// Len returns the number of tracked partitions.
func (a *Aggregate) Len() int { return len(a.values) }

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
