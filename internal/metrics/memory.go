package metrics

import (
	"runtime"
	"time"
)

// MemorySnapshot holds a point-in-time memory reading.
type MemorySnapshot struct {
	HeapAlloc    uint64 // bytes in use by application
	Sys          uint64 // total bytes obtained from OS
	TotalAlloc   uint64 // cumulative bytes allocated
	Mallocs      uint64 // cumulative heap objects allocated
	NumGC        uint32 // number of completed GC cycles
	PauseTotalNs uint64 // cumulative GC pause time
}

// MemoryDelta is the difference between two snapshots taken around a
// reduction. A grid reduction should allocate O(workers), not O(cells).
type MemoryDelta struct {
	Allocated uint64
	Mallocs   uint64
	GCCycles  uint32
	GCPause   time.Duration
	PeakHeap  uint64
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:    m.HeapAlloc,
		Sys:          m.Sys,
		TotalAlloc:   m.TotalAlloc,
		Mallocs:      m.Mallocs,
		NumGC:        m.NumGC,
		PauseTotalNs: m.PauseTotalNs,
	}
}

// Delta returns the change from before to after. Counters are monotonic so
// the subtraction never wraps for snapshots taken in order.
func Delta(before, after MemorySnapshot) MemoryDelta {
	return MemoryDelta{
		Allocated: after.TotalAlloc - before.TotalAlloc,
		Mallocs:   after.Mallocs - before.Mallocs,
		GCCycles:  after.NumGC - before.NumGC,
		GCPause:   time.Duration(after.PauseTotalNs - before.PauseTotalNs),
		PeakHeap:  max(before.HeapAlloc, after.HeapAlloc),
	}
}
