package gridio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	apperrors "github.com/agbru/gridsum/internal/errors"
	"github.com/agbru/gridsum/internal/grid"
)

func TestDecode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		format  Format
		want    grid.Grid
		wantErr error
	}{
		{"csv", "1,2,3\n4, 5,6\n", FormatCSV, grid.Grid{{1, 2, 3}, {4, 5, 6}}, nil},
		{"csv ragged kept", "1,2\n3\n", FormatCSV, grid.Grid{{1, 2}, {3}}, nil},
		{"csv floats", "1.5,-2e3\n", FormatCSV, grid.Grid{{1.5, -2000}}, nil},
		{"csv bad cell", "1,x\n", FormatCSV, nil, apperrors.ErrInvalidGrid},
		{"json", "[[1,2],[3,4]]", FormatJSON, grid.Grid{{1, 2}, {3, 4}}, nil},
		{"json malformed", "[[1,2]", FormatJSON, nil, apperrors.ErrInvalidGrid},
		{"json wrong type", `{"a":1}`, FormatJSON, nil, apperrors.ErrInvalidGrid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Decode(strings.NewReader(tt.input), tt.format)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEncodeDecode_CSV(t *testing.T) {
	t.Parallel()
	g := grid.Grid{{1, 2.5}, {-3, 4}}
	var buf bytes.Buffer
	if err := Encode(&buf, g, FormatCSV); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if buf.String() != "1,2.5\n-3,4\n" {
		t.Errorf("Encode() = %q", buf.String())
	}
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"grid.csv", FormatCSV, false},
		{"dir/GRID.JSON", FormatJSON, false},
		{"grid.txt", "", true},
		{"grid", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "g.csv")
	if err := os.WriteFile(path, []byte("1,2\n3,4\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := grid.SequentialSum(g); got != 10 {
		t.Errorf("sum = %v, want 10", got)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	a, err := Generate(7, 5, 42)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if a.Rows() != 7 || a.Cols() != 5 {
		t.Fatalf("Generate() shape = %dx%d, want 7x5", a.Rows(), a.Cols())
	}
	if err := grid.Validate(a); err != nil {
		t.Errorf("generated grid is invalid: %v", err)
	}
	for _, row := range a {
		for _, v := range row {
			if v < -GeneratedRange || v > GeneratedRange || v != float64(int(v)) {
				t.Fatalf("value %v outside the integer range", v)
			}
		}
	}

	b, _ := Generate(7, 5, 42)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed should produce the same grid")
	}
	c, _ := Generate(7, 5, 43)
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds should produce different grids")
	}
}

func TestGenerate_InvalidShape(t *testing.T) {
	t.Parallel()
	for _, shape := range [][2]int{{0, 3}, {3, 0}, {-1, 2}, {4, 1 << 62}, {1 << 20, 1 << 20}} {
		if _, err := Generate(shape[0], shape[1], 1); !errors.Is(err, apperrors.ErrInvalidGrid) {
			t.Errorf("Generate(%d, %d) error = %v, want ErrInvalidGrid", shape[0], shape[1], err)
		}
	}
}
