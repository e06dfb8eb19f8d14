// # Naming Conventions
//
//   - Display* functions write formatted output to an [io.Writer].
//   - Format* functions return a string without performing I/O.
//   - Write* functions write to the filesystem.

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/agbru/gridsum/internal/orchestration"
	"github.com/agbru/gridsum/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the result (empty for no file output).
	OutputFile string
	// Quiet prints only the sum.
	Quiet bool
	// Verbose prints full precision.
	Verbose bool
	// Details prints the per-partition table.
	Details bool
	// Source describes where the grid came from, recorded in the file header.
	Source string
}

// WriteResultToFile writes a reduction result to config.OutputFile,
// creating parent directories as needed. An empty path is a no-op.
func WriteResultToFile(result orchestration.Result, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	if dir := filepath.Dir(config.OutputFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# Grid Reduction Result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Source: %s\n", config.Source)
	fmt.Fprintf(file, "# Cells: %d\n", result.Elements)
	fmt.Fprintf(file, "# Workers: %d (%s)\n", result.Workers, result.Policy)
	fmt.Fprintf(file, "# Duration: %s\n", result.Duration)
	for _, pr := range result.Partials {
		fmt.Fprintf(file, "# Partition %d [%d, %d): %s\n",
			pr.Partition.Index, pr.Partition.Start, pr.Partition.End(), FormatQuietResult(pr.Sum))
	}
	fmt.Fprintf(file, "\nsum = %s\n", FormatQuietResult(result.Sum))
	return file.Close()
}

// FormatQuietResult formats a sum for scripting: shortest round-trip
// representation, no separators.
func FormatQuietResult(sum float64) string {
	return strconv.FormatFloat(sum, 'g', -1, 64)
}

// DisplayQuietResult prints only the sum.
func DisplayQuietResult(out io.Writer, sum float64) {
	fmt.Fprintln(out, FormatQuietResult(sum))
}

// DisplayResultWithConfig displays a result in the mode selected by config
// and writes the result file when one is requested.
//
// Returns:
//   - error: An error if file output fails.
func DisplayResultWithConfig(out io.Writer, result orchestration.Result, config OutputConfig) error {
	if config.Quiet {
		DisplayQuietResult(out, result.Sum)
	} else {
		CLIResultPresenter{}.PresentResult(result, orchestration.PresentationOptions{
			Details: config.Details,
			Verbose: config.Verbose,
		}, out)
	}

	if config.OutputFile != "" {
		if err := WriteResultToFile(result, config); err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), config.OutputFile, ui.ColorReset())
		}
	}
	return nil
}
