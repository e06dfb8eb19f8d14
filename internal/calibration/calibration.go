// Package calibration benchmarks worker counts on a grid and caches the
// fastest one in a per-machine profile.
package calibration

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/agbru/gridsum/internal/config"
	apperrors "github.com/agbru/gridsum/internal/errors"
	"github.com/agbru/gridsum/internal/grid"
	"github.com/agbru/gridsum/internal/orchestration"
	"github.com/agbru/gridsum/internal/ui"
)

// DefaultRounds is the number of timed runs per worker count.
const DefaultRounds = 3

// ProfileMaxAge is how long a cached profile is trusted.
const ProfileMaxAge = 30 * 24 * time.Hour

// sumTolerance bounds the relative difference between the sums measured
// for different worker counts. Partition boundaries change the addition
// order, so sums are not bit-identical across counts.
const sumTolerance = 1e-9

// Measurement is the outcome of benchmarking one worker count.
type Measurement struct {
	Workers int
	// Duration is the fastest of the rounds.
	Duration time.Duration
	Sum      float64
	Err      error
}

// Measure reduces g with every worker count in counts, rounds times each,
// and keeps the fastest round per count. It stops at the first
// cancellation; other errors are recorded in the measurement.
//
// Parameters:
//   - ctx: Cancellation for the whole calibration.
//   - r: The reducer to benchmark.
//   - g: The grid to reduce.
//   - counts: The worker counts to try.
//   - rounds: Timed runs per count; values below 1 are treated as 1.
//
// Returns:
//   - []Measurement: One entry per count, in the order of counts.
//   - error: A context error if the calibration was interrupted.
func Measure(ctx context.Context, r *orchestration.Reducer, g grid.Grid, counts []int, rounds int) ([]Measurement, error) {
	rounds = max(rounds, 1)
	results := make([]Measurement, 0, len(counts))
	for _, n := range counts {
		m := Measurement{Workers: n, Duration: math.MaxInt64}
		for range rounds {
			res, err := r.Reduce(ctx, g, n, nil)
			if err != nil {
				if apperrors.IsContextError(err) {
					return results, err
				}
				m.Err = err
				break
			}
			m.Sum = res.Sum
			m.Duration = min(m.Duration, res.Duration)
		}
		if m.Err != nil {
			m.Duration = 0
		}
		results = append(results, m)
	}
	return results, nil
}

// Best returns the fastest successful measurement. Ties go to the smaller
// worker count. ok is false when nothing succeeded.
func Best(results []Measurement) (best Measurement, ok bool) {
	for _, m := range results {
		if m.Err != nil {
			continue
		}
		if !ok || m.Duration < best.Duration || (m.Duration == best.Duration && m.Workers < best.Workers) {
			best, ok = m, true
		}
	}
	return best, ok
}

// Consistent reports whether every successful measurement agrees on the
// sum within floating-point tolerance.
func Consistent(results []Measurement) bool {
	ref, ok := Best(results)
	if !ok {
		return true
	}
	for _, m := range results {
		if m.Err != nil {
			continue
		}
		diff := math.Abs(m.Sum - ref.Sum)
		if diff > sumTolerance*math.Max(1, math.Abs(ref.Sum)) {
			return false
		}
	}
	return true
}

// RunCalibration benchmarks the candidate worker counts on g, prints the
// summary table and saves the fastest count to the profile.
//
// Parameters:
//   - ctx: Cancellation for the calibration.
//   - out: The writer for the report.
//   - r: The reducer to benchmark.
//   - g: The grid to reduce.
//   - cfg: The configuration; Policy and CalibrationProfile are used.
//
// Returns:
//   - int: The exit code.
func RunCalibration(ctx context.Context, out io.Writer, r *orchestration.Reducer, g grid.Grid, cfg config.AppConfig) int {
	counts := limitToElements(CandidateWorkerCounts(), g.Len())
	fmt.Fprintf(out, "--- Calibration ---\n")
	fmt.Fprintf(out, "Benchmarking %d worker counts on a %d x %d grid, %d rounds each.\n",
		len(counts), g.Rows(), g.Cols(), DefaultRounds)

	start := time.Now()
	results, err := Measure(ctx, r, g, counts, DefaultRounds)
	if err != nil {
		return apperrors.HandleSumError(err, time.Since(start), out, ui.CLIColorProvider{})
	}

	best, ok := Best(results)
	printCalibrationResults(out, results, best.Workers)
	if !ok {
		fmt.Fprintf(out, "%sCalibration failed:%s no worker count succeeded.\n", ui.ColorRed(), ui.ColorReset())
		return apperrors.ExitErrorGeneric
	}
	if !Consistent(results) {
		fmt.Fprintf(out, "%sWarning:%s sums disagree across worker counts beyond %.0e relative error.\n",
			ui.ColorYellow(), ui.ColorReset(), sumTolerance)
	}

	profile := NewProfile()
	profile.OptimalWorkers = best.Workers
	profile.Policy = cfg.Policy
	profile.CalibrationElements = g.Len()
	profile.CalibrationTime = time.Since(start).Round(time.Millisecond).String()

	path := ProfilePath(cfg.CalibrationProfile)
	if err := profile.SaveProfile(path); err != nil {
		fmt.Fprintf(out, "%sCould not save profile:%s %v\n", ui.ColorRed(), ui.ColorReset(), err)
		return apperrors.ExitErrorGeneric
	}
	printCalibrationOutput(profile, path, out)
	return apperrors.ExitSuccess
}

// LoadCachedCalibration applies a cached profile's worker count when the
// user did not choose one. The profile must match this machine, be younger
// than ProfileMaxAge and have been measured with the same policy.
func LoadCachedCalibration(cfg config.AppConfig, path string) (config.AppConfig, bool) {
	if cfg.Workers != 0 {
		return cfg, false
	}
	profile, err := loadProfile(ProfilePath(path))
	if err != nil || !profile.IsValid() || profile.IsStale(ProfileMaxAge) {
		return cfg, false
	}
	if profile.Policy != cfg.Policy || profile.OptimalWorkers < 1 {
		return cfg, false
	}
	cfg.Workers = profile.OptimalWorkers
	return cfg, true
}
