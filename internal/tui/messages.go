package tui

import (
	"time"

	"github.com/agbru/gridsum/internal/orchestration"
)

// Messages carrying a Generation belong to one run; the model drops those
// left over from a run that was restarted.

// ProgressMsg is one aggregated progress update from a worker.
type ProgressMsg struct {
	Generation      uint64
	PartitionIndex  int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// ProgressDoneMsg is sent when the progress channel has been closed.
type ProgressDoneMsg struct{ Generation uint64 }

// FinalResultMsg carries a successful reduction.
type FinalResultMsg struct {
	Generation uint64
	Result     orchestration.Result
	Verbose    bool
}

// ErrorMsg carries a failed reduction.
type ErrorMsg struct {
	Generation uint64
	Err        error
	Duration   time.Duration
}

// ReductionCompleteMsg ends a run with its exit code.
type ReductionCompleteMsg struct {
	Generation uint64
	ExitCode   int
}

// ContextCancelledMsg reports that the run context was cancelled.
type ContextCancelledMsg struct {
	Generation uint64
	Err        error
}

// TickMsg drives periodic sampling.
type TickMsg time.Time

// MemStatsMsg is a runtime memory sample.
type MemStatsMsg struct {
	Alloc        uint64
	HeapSys      uint64
	NumGC        uint32
	PauseTotalNs uint64
	NumGoroutine int
}

// SysStatsMsg is a system-wide CPU and memory sample.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
}
