// Package config parses the gridsum command line and environment into an
// AppConfig.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/agbru/gridsum/internal/errors"
	"github.com/agbru/gridsum/internal/grid"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "GRIDSUM_"

// Default values for the flags.
const (
	DefaultRows     = 1000
	DefaultCols     = 1000
	DefaultSeed     = 1
	DefaultTimeout  = 1 * time.Minute
	DefaultAddr     = ":8080"
	DefaultLogLevel = "info"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Rows and Cols size the generated grid when Input is empty.
	Rows, Cols int
	// Seed seeds the generated grid.
	Seed uint64
	// Input is a .csv or .json grid file. Overrides Rows/Cols/Seed.
	Input string
	// Workers is the requested worker (and partition) count. 0 means "one
	// per logical CPU", resolved by ApplyAdaptiveDefaults.
	Workers int
	// MaxParallel caps how many workers sum at the same time. 0 resolves to
	// GOMAXPROCS.
	MaxParallel int
	// Policy selects the partitioning policy by name.
	Policy  string
	Timeout time.Duration

	Quiet      bool
	Verbose    bool
	Details    bool
	OutputFile string
	NoColor    bool
	TUI        bool

	// Serve starts the HTTP server on Addr instead of running one sum.
	Serve bool
	Addr  string

	// Calibrate benchmarks worker counts on the grid and saves the fastest
	// one to CalibrationProfile.
	Calibrate bool
	// CalibrationProfile is the profile path; empty selects the default
	// location in the user's home directory.
	CalibrationProfile string

	LogLevel    string
	ShowVersion bool
}

// ParseConfig parses command-line arguments and environment overrides into
// an AppConfig and validates the result.
//
// Parameters:
//   - programName: The name used in usage output.
//   - args: The arguments without the program name.
//   - errWriter: Where flag errors and usage are written.
//
// Returns:
//   - AppConfig: The parsed configuration.
//   - error: flag.ErrHelp for -h, a ConfigError for invalid values, or the
//     flag parsing error.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	var cfg AppConfig
	fs.IntVar(&cfg.Rows, "rows", DefaultRows, "Rows of the generated grid.")
	fs.IntVar(&cfg.Cols, "cols", DefaultCols, "Columns of the generated grid.")
	fs.Uint64Var(&cfg.Seed, "seed", DefaultSeed, "Seed of the generated grid.")
	fs.StringVar(&cfg.Input, "input", "", "Load the grid from a .csv or .json file.")
	fs.StringVar(&cfg.Input, "i", "", "Shorthand for --input.")
	fs.IntVar(&cfg.Workers, "workers", 0, "Number of workers (0 = one per CPU).")
	fs.IntVar(&cfg.Workers, "w", 0, "Shorthand for --workers.")
	fs.IntVar(&cfg.MaxParallel, "max-parallel", 0, "Maximum workers summing at once (0 = GOMAXPROCS).")
	fs.StringVar(&cfg.Policy, "policy", grid.PolicyBalanced,
		fmt.Sprintf("Partitioning policy: %s.", strings.Join(grid.Policies(), ", ")))
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "Maximum time for one reduction.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Print only the sum.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Show memory statistics and full precision.")
	fs.BoolVar(&cfg.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&cfg.Details, "details", false, "Show the per-partition table.")
	fs.BoolVar(&cfg.Details, "d", false, "Shorthand for --details.")
	fs.StringVar(&cfg.OutputFile, "output", "", "Write the result to a file.")
	fs.StringVar(&cfg.OutputFile, "o", "", "Shorthand for --output.")
	fs.BoolVar(&cfg.TUI, "tui", false, "Run in the interactive terminal dashboard.")
	fs.BoolVar(&cfg.Serve, "serve", false, "Run the HTTP server.")
	fs.StringVar(&cfg.Addr, "addr", DefaultAddr, "Listen address for --serve.")
	fs.BoolVar(&cfg.Calibrate, "calibrate", false, "Benchmark worker counts and save the fastest.")
	fs.StringVar(&cfg.CalibrationProfile, "calibration-profile", "", "Calibration profile path.")
	fs.StringVar(&cfg.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	applyEnvOverrides(&cfg, fs)

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks the values the reducer cannot check for itself. Worker
// counts are checked by the reducer, but negative values are caught here so
// the CLI fails fast with a configuration error.
func (c AppConfig) Validate() error {
	var errs []error
	if c.Input == "" {
		if c.Rows <= 0 || c.Cols <= 0 {
			errs = append(errs, apperrors.NewConfigError("--rows and --cols must be positive, got %dx%d", c.Rows, c.Cols))
		} else if err := grid.CheckShape(c.Rows, c.Cols); err != nil {
			errs = append(errs, apperrors.NewConfigError("--rows/--cols: %v", err))
		}
	}
	if c.Workers < 0 || c.Workers > grid.MaxPartitions {
		errs = append(errs, apperrors.NewConfigError("--workers must be in [0, %d], got %d", grid.MaxPartitions, c.Workers))
	}
	if c.MaxParallel < 0 {
		errs = append(errs, apperrors.NewConfigError("--max-parallel must be >= 0, got %d", c.MaxParallel))
	}
	if _, err := grid.PartitionerByName(c.Policy); err != nil {
		errs = append(errs, apperrors.NewConfigError("%v", err))
	}
	if c.Timeout <= 0 {
		errs = append(errs, apperrors.NewConfigError("--timeout must be positive, got %s", c.Timeout))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error", "disabled":
	default:
		errs = append(errs, apperrors.NewConfigError("unknown --log-level %q", c.LogLevel))
	}
	if c.Serve && c.TUI {
		errs = append(errs, apperrors.NewConfigError("--serve and --tui are mutually exclusive"))
	}
	if c.Calibrate && (c.Serve || c.TUI) {
		errs = append(errs, apperrors.NewConfigError("--calibrate cannot be combined with --serve or --tui"))
	}
	return errors.Join(errs...)
}
