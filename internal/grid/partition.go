package grid

import (
	"fmt"
	"sort"
)

// Partition policy names accepted by PartitionerByName.
const (
	PolicyBalanced    = "balanced"
	PolicyFrontLoaded = "front-loaded"
)

// Partition is a half-open range [Start, Start+Length) over the flat index
// space of a grid, assigned to exactly one worker.
type Partition struct {
	// Index is the position of the partition in dispatch and reduction order.
	Index int
	// Start is the first flat index covered.
	Start int
	// Length is the number of elements covered. Zero is allowed.
	Length int
}

// End returns the exclusive upper bound of the partition.
func (p Partition) End() int { return p.Start + p.Length }

// String renders the partition as "#i[start,end)".
func (p Partition) String() string {
	return fmt.Sprintf("#%d[%d,%d)", p.Index, p.Start, p.End())
}

// Partitioner splits a flat index space of total elements into exactly n
// contiguous partitions.
type Partitioner interface {
	// Name returns the policy name.
	Name() string
	// Split returns n partitions covering [0, total) in ascending order.
	Split(total, n int) ([]Partition, error)
}

// BalancedPartitioner gives every partition floor(total/n) elements and one
// extra element to each of the first total%n partitions, so sizes differ by
// at most one.
type BalancedPartitioner struct{}

// Name returns "balanced".
func (BalancedPartitioner) Name() string { return PolicyBalanced }

// Split implements Partitioner.
func (BalancedPartitioner) Split(total, n int) ([]Partition, error) {
	if err := checkSplitArgs(total, n); err != nil {
		return nil, err
	}
	base, extra := total/n, total%n
	parts := make([]Partition, n)
	start := 0
	for i := range parts {
		length := base
		if i < extra {
			length++
		}
		parts[i] = Partition{Index: i, Start: start, Length: length}
		start += length
	}
	return parts, nil
}

// FrontLoadedPartitioner assigns the whole remainder to the first partition:
// it gets floor(total/n) + total%n elements and every other partition gets
// floor(total/n). Offsets advance by each partition's actual length, so the
// ranges never drift past total.
type FrontLoadedPartitioner struct{}

// Name returns "front-loaded".
func (FrontLoadedPartitioner) Name() string { return PolicyFrontLoaded }

// Split implements Partitioner.
func (FrontLoadedPartitioner) Split(total, n int) ([]Partition, error) {
	if err := checkSplitArgs(total, n); err != nil {
		return nil, err
	}
	base := total / n
	parts := make([]Partition, n)
	start := 0
	for i := range parts {
		length := base
		if i == 0 {
			length += total % n
		}
		parts[i] = Partition{Index: i, Start: start, Length: length}
		start += length
	}
	return parts, nil
}

func checkSplitArgs(total, n int) error {
	if n < 1 {
		return fmt.Errorf("partition count must be at least 1, got %d", n)
	}
	if total < 0 {
		return fmt.Errorf("element count must be non-negative, got %d", total)
	}
	return nil
}

// PartitionerByName resolves a policy name. The empty name selects the
// balanced policy.
func PartitionerByName(name string) (Partitioner, error) {
	switch name {
	case "", PolicyBalanced:
		return BalancedPartitioner{}, nil
	case PolicyFrontLoaded:
		return FrontLoadedPartitioner{}, nil
	}
	return nil, fmt.Errorf("unknown partition policy %q (available: %v)", name, Policies())
}

// Policies lists the known policy names in sorted order.
func Policies() []string {
	names := []string{PolicyBalanced, PolicyFrontLoaded}
	sort.Strings(names)
	return names
}

// CoverageError describes the first partition that breaks the coverage
// invariant.
type CoverageError struct {
	// Partition is the offending partition (or the last one when the union
	// stops short of total).
	Partition Partition
	// Reason explains the violation.
	Reason string
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf("partition %s: %s", e.Partition, e.Reason)
}

// VerifyCoverage checks that parts are indexed 0..n-1 in order, contiguous,
// non-negative in length, and that their union is exactly [0, total).
func VerifyCoverage(parts []Partition, total int) error {
	next := 0
	for i, p := range parts {
		switch {
		case p.Index != i:
			return &CoverageError{Partition: p, Reason: fmt.Sprintf("out of order, expected index %d", i)}
		case p.Length < 0:
			return &CoverageError{Partition: p, Reason: "negative length"}
		case p.Start != next:
			return &CoverageError{Partition: p, Reason: fmt.Sprintf("starts at %d, expected %d", p.Start, next)}
		case p.End() > total:
			return &CoverageError{Partition: p, Reason: fmt.Sprintf("ends past %d", total)}
		}
		next = p.End()
	}
	if next != total {
		last := Partition{}
		if len(parts) > 0 {
			last = parts[len(parts)-1]
		}
		return &CoverageError{Partition: last, Reason: fmt.Sprintf("coverage stops at %d of %d", next, total)}
	}
	return nil
}
