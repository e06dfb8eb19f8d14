// This file generates the worker counts to benchmark from the hardware.

package calibration

import (
	"runtime"
	"slices"
)

// CandidateWorkerCounts lists the worker counts a full calibration tries:
// powers of two up to four times the logical CPU count, plus the CPU count
// itself. The list always starts with 1 (sequential).
func CandidateWorkerCounts() []int {
	return candidatesUpTo(runtime.NumCPU(), 4*runtime.NumCPU())
}

// QuickCandidateWorkerCounts is a shorter list around the CPU count.
func QuickCandidateWorkerCounts() []int {
	numCPU := runtime.NumCPU()
	if numCPU == 1 {
		return []int{1, 2}
	}
	return dedupSorted([]int{1, numCPU / 2, numCPU, 2 * numCPU})
}

func candidatesUpTo(numCPU, limit int) []int {
	counts := []int{numCPU}
	for n := 1; n <= limit; n *= 2 {
		counts = append(counts, n)
	}
	return dedupSorted(counts)
}

func dedupSorted(counts []int) []int {
	out := slices.DeleteFunc(slices.Clone(counts), func(n int) bool { return n < 1 })
	slices.Sort(out)
	return slices.Compact(out)
}

// limitToElements drops counts above the number of cells, keeping at least
// one candidate. Extra workers on a tiny grid would only measure empty
// partitions.
func limitToElements(counts []int, elements int) []int {
	out := slices.DeleteFunc(slices.Clone(counts), func(n int) bool { return n > elements })
	if len(out) == 0 {
		return []int{1}
	}
	return out
}
