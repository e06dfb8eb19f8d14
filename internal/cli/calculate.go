package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/agbru/gridsum/internal/config"
	"github.com/agbru/gridsum/internal/format"
	"github.com/agbru/gridsum/internal/grid"
	"github.com/agbru/gridsum/internal/sysmon"
	"github.com/agbru/gridsum/internal/ui"
)

// GridSource describes where the grid came from, for display.
func GridSource(cfg config.AppConfig) string {
	if cfg.Input != "" {
		return cfg.Input
	}
	return fmt.Sprintf("generated (seed %d)", cfg.Seed)
}

// PrintExecutionConfig displays the grid, the worker configuration and the
// host the reduction runs on.
//
// Parameters:
//   - cfg: The resolved application configuration.
//   - g: The grid about to be reduced.
//   - host: The host description from sysmon.Host.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, g grid.Grid, host sysmon.HostInfo, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Summing a %s%d x %d%s grid (%s%s%s cells) from %s, timeout %s%s%s.\n",
		ui.ColorBlue(), g.Rows(), g.Cols(), ui.ColorReset(),
		ui.ColorCyan(), format.FormatInt(g.Len()), ui.ColorReset(),
		GridSource(cfg),
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Workers: %s%d%s, at most %s%d%s at once, %s%s%s partitioning.\n",
		ui.ColorCyan(), cfg.Workers, ui.ColorReset(),
		ui.ColorCyan(), cfg.MaxParallel, ui.ColorReset(),
		ui.ColorGreen(), cfg.Policy, ui.ColorReset())
	PrintEnvironment(host, sysmon.Sample(), out)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}

// PrintEnvironment displays the CPU, Go runtime and current system load.
func PrintEnvironment(host sysmon.HostInfo, load sysmon.Stats, out io.Writer) {
	cpuDesc := fmt.Sprintf("%d logical", host.LogicalCPUs)
	if host.PhysicalCPUs > 0 {
		cpuDesc += fmt.Sprintf(" / %d physical", host.PhysicalCPUs)
	}
	if host.ModelName != "" {
		cpuDesc += " (" + host.ModelName + ")"
	}
	fmt.Fprintf(out, "Environment: %s%s%s processors, Go %s%s%s, %s/%s.\n",
		ui.ColorCyan(), cpuDesc, ui.ColorReset(),
		ui.ColorCyan(), runtime.Version(), ui.ColorReset(),
		runtime.GOOS, runtime.GOARCH)
	if len(host.Features) > 0 {
		fmt.Fprintf(out, "CPU features: %s\n", strings.Join(host.Features, " "))
	}
	mem := ""
	if host.TotalMemory > 0 {
		mem = " of " + format.FormatBytes(host.TotalMemory)
	}
	fmt.Fprintf(out, "System load: CPU %.1f%%, memory %.1f%%%s.\n", load.CPUPercent, load.MemPercent, mem)
}
