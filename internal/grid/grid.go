package grid

import (
	apperrors "github.com/agbru/gridsum/internal/errors"
)

// Size limits. MaxElements bounds the grids gridsum allocates itself;
// MaxPartitions bounds the worker count of a single reduction.
const (
	MaxElements   = 1 << 27
	MaxPartitions = 1 << 20
)

// Grid is a rectangular, row-major 2-D array of float64 values.
// A grid is treated as read-only for the duration of a reduction: every
// worker reads it concurrently without locking.
type Grid [][]float64

// Rows returns the number of rows.
func (g Grid) Rows() int { return len(g) }

// Cols returns the number of columns, taken from the first row.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Len returns the number of elements in the flattened index space (R*C).
func (g Grid) Len() int { return g.Rows() * g.Cols() }

// At returns the value at the given flat index using row-major order:
// row = flat / C, col = flat % C. The caller guarantees 0 <= flat < Len().
func (g Grid) At(flat int) float64 {
	c := g.Cols()
	return g[flat/c][flat%c]
}

// CheckShape reports whether a rows x cols grid can be allocated: both
// dimensions must be positive and rows*cols must not exceed MaxElements.
// The product is never computed before the bound is checked.
func CheckShape(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return apperrors.NewGridError("cannot build a %dx%d grid", rows, cols)
	}
	if cols > MaxElements/rows {
		return apperrors.NewGridError("a %dx%d grid exceeds the limit of %d elements", rows, cols, MaxElements)
	}
	return nil
}

// Validate checks that the grid has at least one row and one column and that
// every row has the same length as the first.
//
// Returns:
//   - error: A ValidationError of class ErrInvalidGrid, or nil.
func Validate(g Grid) error {
	if len(g) == 0 {
		return apperrors.NewGridError("grid has no rows")
	}
	cols := len(g[0])
	if cols == 0 {
		return apperrors.NewGridError("grid has no columns")
	}
	for i, row := range g {
		if len(row) != cols {
			return apperrors.NewGridError("row %d has %d columns, want %d", i, len(row), cols)
		}
	}
	return nil
}

// SequentialSum sums the grid on the calling goroutine in flat index order.
// It performs no validation and serves as the single-worker reference.
func SequentialSum(g Grid) float64 {
	var sum float64
	for _, row := range g {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}
