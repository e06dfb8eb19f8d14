// Package grid holds the numeric grid type, the partition policies that split
// its row-major flat index space across workers, and the worker that sums a
// single partition.
//
// Flat index i maps to row i/C and column i%C, where C is the column count.
// Two policies are provided:
//
//   - balanced (default): the first R*C mod N partitions hold
//     floor(R*C/N)+1 elements, the rest floor(R*C/N).
//   - front-loaded: the first partition holds floor(R*C/N) + R*C mod N
//     elements, the rest floor(R*C/N).
//
// Both produce exactly N partitions whose union is [0, R*C) with no overlap.
// When N exceeds R*C the trailing partitions are empty.
package grid
