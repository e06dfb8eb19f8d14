package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	apperrors "github.com/agbru/gridsum/internal/errors"
	"github.com/agbru/gridsum/internal/format"
	"github.com/agbru/gridsum/internal/metrics"
	"github.com/agbru/gridsum/internal/orchestration"
	"github.com/agbru/gridsum/internal/ui"
)

// CLIResultPresenter implements the orchestration presentation interfaces
// for colorized terminal output.
type CLIResultPresenter struct{}

var (
	_ orchestration.ResultPresenter   = CLIResultPresenter{}
	_ orchestration.DurationFormatter = CLIResultPresenter{}
	_ orchestration.ErrorHandler      = CLIResultPresenter{}
)

// PresentResult prints the total, a one-line summary and, with
// opts.Details, the per-partition table.
func (CLIResultPresenter) PresentResult(result orchestration.Result, opts orchestration.PresentationOptions, out io.Writer) {
	fmt.Fprintf(out, "\n--- Result ---\n")
	sum := format.FormatSum(result.Sum)
	if opts.Verbose {
		sum = fmt.Sprintf("%.17g", result.Sum)
	}
	fmt.Fprintf(out, "Sum: %s%s%s%s\n", ui.ColorBold(), ui.ColorGreen(), sum, ui.ColorReset())
	fmt.Fprintf(out, "Reduced %s cells with %d workers (%s) in %s%s%s.\n",
		format.FormatInt(result.Elements), result.Workers, result.Policy,
		ui.ColorYellow(), displayDuration(result.Duration), ui.ColorReset())
	if opts.Details {
		DisplayPartitionTable(result.Partials, out)
	}
}

// DisplayPartitionTable prints one row per partition: range, cell count,
// partial sum and worker time.
func DisplayPartitionTable(partials []orchestration.PartialResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Partitions ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  Partition\tRange\tCells\tPartial sum\tDuration\n")
	fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 9), strings.Repeat("─", 5), strings.Repeat("─", 5),
		strings.Repeat("─", 11), strings.Repeat("─", 8))
	for _, pr := range partials {
		p := pr.Partition
		fmt.Fprintf(tw, "  #%d\t[%d, %d)\t%s\t%s\t%s\n",
			p.Index, p.Start, p.End(), format.FormatInt(p.Length),
			format.FormatSum(pr.Sum), displayDuration(pr.Duration))
	}
	tw.Flush()
}

// FormatDuration formats a duration with the CLI's rules.
func (CLIResultPresenter) FormatDuration(d time.Duration) string {
	return displayDuration(d)
}

// HandleError prints err and returns its exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleSumError(err, duration, out, ui.CLIColorProvider{})
}

// DisplayMemoryStats shows the allocations made during a reduction.
func DisplayMemoryStats(d metrics.MemoryDelta, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	fmt.Fprintf(out, "  Peak heap:       %s\n", format.FormatBytes(d.PeakHeap))
	fmt.Fprintf(out, "  Allocated:       %s in %d objects\n", format.FormatBytes(d.Allocated), d.Mallocs)
	fmt.Fprintf(out, "  GC cycles:       %d\n", d.GCCycles)
	fmt.Fprintf(out, "  GC pause total:  %s\n", displayDuration(d.GCPause))
}

func displayDuration(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}
