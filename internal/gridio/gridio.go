// Package gridio loads grids from CSV and JSON files and generates seeded
// random grids for benchmarking the reducer.
package gridio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/agbru/gridsum/internal/errors"
	"github.com/agbru/gridsum/internal/grid"
)

// Format names an on-disk grid encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// GeneratedRange bounds the integer values produced by Generate. Integer
// cells keep float64 sums exact so results do not depend on worker count.
const GeneratedRange = 1000

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", apperrors.NewConfigError("unsupported grid file %q: want .csv or .json", path)
}

// Load reads a grid from path, choosing the decoder from the extension.
// The returned grid is not validated; the reducer does that.
func Load(path string) (grid.Grid, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grid: %w", err)
	}
	defer file.Close()
	return Decode(file, f)
}

// Decode reads a grid in the given format.
//
// Parameters:
//   - r: The source.
//   - f: FormatCSV (one row per record, no header) or FormatJSON (an array
//     of arrays of numbers).
//
// Returns:
//   - grid.Grid: The decoded rows, possibly ragged.
//   - error: A grid ValidationError for malformed cells, or the I/O error.
func Decode(r io.Reader, f Format) (grid.Grid, error) {
	switch f {
	case FormatCSV:
		return decodeCSV(r)
	case FormatJSON:
		var g grid.Grid
		if err := json.NewDecoder(r).Decode(&g); err != nil {
			return nil, apperrors.NewGridError("decode JSON: %v", err)
		}
		return g, nil
	}
	return nil, apperrors.NewConfigError("unknown grid format %q", f)
}

func decodeCSV(r io.Reader) (grid.Grid, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var g grid.Grid
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return g, nil
		}
		if err != nil {
			return nil, apperrors.NewGridError("read CSV: %v", err)
		}
		row := make([]float64, len(rec))
		for i, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, apperrors.NewGridError("row %d column %d: %q is not a number", len(g), i, cell)
			}
			row[i] = v
		}
		g = append(g, row)
	}
}

// Encode writes g in the given format.
func Encode(w io.Writer, g grid.Grid, f Format) error {
	switch f {
	case FormatCSV:
		cw := csv.NewWriter(w)
		rec := make([]string, 0, g.Cols())
		for _, row := range g {
			rec = rec[:0]
			for _, v := range row {
				rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case FormatJSON:
		return json.NewEncoder(w).Encode(g)
	}
	return apperrors.NewConfigError("unknown grid format %q", f)
}

// Generate builds a rows x cols grid of integers in
// [-GeneratedRange, GeneratedRange]. The same seed always yields the same grid.
func Generate(rows, cols int, seed uint64) (grid.Grid, error) {
	if err := grid.CheckShape(rows, cols); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	g := make(grid.Grid, rows)
	cells := make([]float64, rows*cols)
	for i := range g {
		g[i] = cells[i*cols : (i+1)*cols : (i+1)*cols]
		for j := range g[i] {
			g[i][j] = float64(rng.IntN(2*GeneratedRange+1) - GeneratedRange)
		}
	}
	return g, nil
}
