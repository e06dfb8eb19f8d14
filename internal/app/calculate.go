package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/agbru/gridsum/internal/cli"
	apperrors "github.com/agbru/gridsum/internal/errors"
	"github.com/agbru/gridsum/internal/metrics"
	"github.com/agbru/gridsum/internal/orchestration"
	"github.com/agbru/gridsum/internal/sysmon"
	"github.com/agbru/gridsum/internal/ui"
)

// runSum orchestrates one reduction from the command line.
func (a *Application) runSum(ctx context.Context, out io.Writer) int {
	g, err := a.loadGrid()
	if err != nil {
		return apperrors.HandleSumError(err, 0, out, ui.CLIColorProvider{})
	}
	r, err := a.newReducer(a.Logger)
	if err != nil {
		return apperrors.HandleSumError(err, 0, out, ui.CLIColorProvider{})
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, g, sysmon.Host(), out)
	}

	var progressReporter orchestration.ProgressReporter
	progressOut := out
	if a.Config.Quiet {
		progressOut = io.Discard
		progressReporter = orchestration.NullProgressReporter{}
	} else {
		progressReporter = cli.CLIProgressReporter{}
	}

	collector := metrics.NewMemoryCollector()
	before := collector.Snapshot()
	start := time.Now()

	result, err := orchestration.ExecuteReduction(ctx, r, g, a.Config.Workers, progressReporter, progressOut)
	if err != nil {
		err = apperrors.WrapTimeout(err, "sum", a.Config.Timeout)
		return apperrors.HandleSumError(err, time.Since(start), out, ui.CLIColorProvider{})
	}

	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
		Details:    a.Config.Details,
		Source:     cli.GridSource(a.Config),
	}
	if err := cli.DisplayResultWithConfig(out, result, outputCfg); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return apperrors.ExitErrorGeneric
	}

	if a.Config.Verbose && !a.Config.Quiet {
		cli.DisplayMemoryStats(metrics.Delta(before, collector.Snapshot()), out)
	}
	return apperrors.ExitSuccess
}
