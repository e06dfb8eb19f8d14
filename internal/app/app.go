// Package app wires configuration, the reducer and the run modes (one-shot
// CLI, calibration, TUI dashboard and HTTP server) into the gridsum binary.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/agbru/gridsum/internal/calibration"
	"github.com/agbru/gridsum/internal/config"
	apperrors "github.com/agbru/gridsum/internal/errors"
	"github.com/agbru/gridsum/internal/grid"
	"github.com/agbru/gridsum/internal/gridio"
	"github.com/agbru/gridsum/internal/logging"
	"github.com/agbru/gridsum/internal/metrics"
	"github.com/agbru/gridsum/internal/orchestration"
	"github.com/agbru/gridsum/internal/tui"
	"github.com/agbru/gridsum/internal/ui"
)

// Application represents the gridsum application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
	// Metrics collects reduction and HTTP metrics for every mode.
	Metrics *metrics.Recorder
	// Logger is the structured logger handed to the reducer and server.
	Logger logging.Logger

	extraOpts []orchestration.Option
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithReducerOptions appends options to every Reducer the application builds.
// Tests use it to substitute the partition summer.
func WithReducerOptions(opts ...orchestration.Option) AppOption {
	return func(a *Application) { a.extraOpts = append(a.extraOpts, opts...) }
}

// WithLogger replaces the default stderr logger.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// New creates a new Application instance by parsing command-line arguments.
//
// Parameters:
//   - args: The full argument vector, program name first.
//   - errWriter: Destination for usage text, parse errors and logs.
//   - opts: Optional overrides.
//
// Returns:
//   - *Application: The configured application.
//   - error: A flag or configuration error; see IsHelpError.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	programName := "gridsum"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}

	if !cfg.Calibrate {
		if withProfile, loaded := calibration.LoadCachedCalibration(cfg, cfg.CalibrationProfile); loaded {
			cfg = withProfile
		}
	}

	app := &Application{
		Config:    config.ApplyAdaptiveDefaults(cfg),
		ErrWriter: errWriter,
		Metrics:   metrics.NewRecorder(ClassifyError),
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.Logger == nil {
		app.Logger = logging.NewLogger(errWriter, "gridsum")
	}
	return app, nil
}

// Run executes the application based on the configured mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.ShowVersion {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}
	zerolog.SetGlobalLevel(logging.ParseLevel(a.Config.LogLevel))
	ui.InitTheme(a.Config.NoColor)

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	switch {
	case a.Config.Serve:
		return a.runServe(ctx)
	case a.Config.TUI:
		return a.runTUI(ctx)
	case a.Config.Calibrate:
		return a.runCalibration(ctx, out)
	default:
		return a.runSum(ctx, out)
	}
}

// newReducer builds the reducer for the configured policy.
func (a *Application) newReducer(logger logging.Logger) (*orchestration.Reducer, error) {
	p, err := grid.PartitionerByName(a.Config.Policy)
	if err != nil {
		return nil, apperrors.NewConfigError("%v", err)
	}
	opts := append([]orchestration.Option{
		orchestration.WithPartitioner(p),
		orchestration.WithLogger(logger),
		orchestration.WithMetrics(a.Metrics),
		orchestration.WithTracer(otel.Tracer("gridsum")),
		orchestration.WithMaxParallel(a.Config.MaxParallel),
	}, a.extraOpts...)
	return orchestration.New(opts...), nil
}

// loadGrid reads --input when set and generates a seeded grid otherwise.
func (a *Application) loadGrid() (grid.Grid, error) {
	if a.Config.Input != "" {
		return gridio.Load(a.Config.Input)
	}
	return gridio.Generate(a.Config.Rows, a.Config.Cols, a.Config.Seed)
}

// runTUI launches the interactive dashboard.
func (a *Application) runTUI(ctx context.Context) int {
	g, err := a.loadGrid()
	if err != nil {
		return apperrors.HandleSumError(err, 0, a.ErrWriter, ui.CLIColorProvider{})
	}
	// The dashboard owns the terminal, so the reducer must not log to it.
	r, err := a.newReducer(logging.NewNopLogger())
	if err != nil {
		return apperrors.HandleSumError(err, 0, a.ErrWriter, ui.CLIColorProvider{})
	}
	return tui.Run(ctx, r, g, a.Config, Version)
}

// runCalibration benchmarks worker counts on the configured grid.
func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	g, err := a.loadGrid()
	if err != nil {
		return apperrors.HandleSumError(err, 0, out, ui.CLIColorProvider{})
	}
	r, err := a.newReducer(a.Logger)
	if err != nil {
		return apperrors.HandleSumError(err, 0, out, ui.CLIColorProvider{})
	}
	return calibration.RunCalibration(ctx, out, r, g, a.Config)
}

// ClassifyError maps a reduction error to the status label of the
// gridsum_sums_total counter.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return metrics.StatusOK
	case apperrors.IsValidationError(err):
		return metrics.StatusInvalid
	case apperrors.IsContextError(err):
		return metrics.StatusCanceled
	default:
		return metrics.StatusFault
	}
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// ExitCodeForError maps an error returned by New to a process exit code.
func ExitCodeForError(err error, out io.Writer) int {
	if IsHelpError(err) {
		return apperrors.ExitSuccess
	}
	var cfgErr apperrors.ConfigError
	if errors.As(err, &cfgErr) {
		fmt.Fprintf(out, "Configuration error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	// The flag package already printed the parse error and usage.
	return apperrors.ExitErrorConfig
}
