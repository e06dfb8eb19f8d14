package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/agbru/gridsum/internal/errors"
	"github.com/agbru/gridsum/internal/grid"
	"github.com/agbru/gridsum/internal/logging"
	"github.com/agbru/gridsum/internal/parallel"
	"github.com/agbru/gridsum/internal/progress"
)

// ProgressBufferMultiplier defines the buffer size multiplier for progress
// channels created by callers of Reduce. A larger buffer reduces the number
// of updates dropped when the UI is slow to consume them.
const ProgressBufferMultiplier = 5

// MaxProgressBuffer caps the progress channel created by ExecuteReduction.
const MaxProgressBuffer = 1 << 16

const tracerName = "github.com/agbru/gridsum/internal/orchestration"

// PartialResult is the outcome of one worker.
type PartialResult struct {
	// Partition is the range the worker summed.
	Partition grid.Partition
	// Sum is the partial sum. It is zero when the worker failed.
	Sum float64
	// Duration is the time the worker spent, including semaphore waits.
	Duration time.Duration
	// Err is the worker's fault, if any.
	Err error
}

// Result is the outcome of a successful reduction.
type Result struct {
	// Sum is the reduced total of all partial sums, in partition order.
	Sum float64
	// Workers is the number of partitions (and goroutines) used.
	Workers int
	// Elements is R*C.
	Elements int
	// Policy is the name of the partition policy used.
	Policy string
	// Partials holds one entry per partition, ordered by partition index.
	Partials []PartialResult
	// Duration is the wall time of the whole call.
	Duration time.Duration
}

// Reducer coordinates parallel grid reductions. A Reducer holds no per-call
// state and may be used by concurrent callers.
type Reducer struct {
	partitioner grid.Partitioner
	summer      PartitionSummer
	logger      logging.Logger
	metrics     MetricsRecorder
	tracer      trace.Tracer
	observer    StateObserver
	maxParallel int
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithPartitioner sets the partition policy. The default is balanced.
func WithPartitioner(p grid.Partitioner) Option {
	return func(r *Reducer) { r.partitioner = p }
}

// WithSummer replaces the worker implementation.
func WithSummer(s PartitionSummer) Option {
	return func(r *Reducer) { r.summer = s }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Reducer) { r.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(r *Reducer) { r.metrics = m }
}

// WithTracer sets the OpenTelemetry tracer. The default comes from the
// global tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *Reducer) { r.tracer = t }
}

// WithStateObserver registers a callback for state transitions.
func WithStateObserver(o StateObserver) Option {
	return func(r *Reducer) { r.observer = o }
}

// WithMaxParallel caps how many workers sum at the same time. Every worker
// goroutine is still started before the barrier; the extra ones wait on a
// semaphore. Zero or negative means no cap.
func WithMaxParallel(n int) Option {
	return func(r *Reducer) { r.maxParallel = n }
}

// New creates a Reducer with the given options.
func New(opts ...Option) *Reducer {
	r := &Reducer{
		partitioner: grid.BalancedPartitioner{},
		summer:      grid.Worker{},
		logger:      logging.NewNopLogger(),
		metrics:     nopMetrics{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}
	return r
}

var defaultReducer = New()

// Sum reduces g with workerCount parallel workers using the default Reducer.
// The sum is undefined when err is non-nil.
func Sum(g [][]float64, workerCount int) (float64, error) {
	return defaultReducer.Sum(context.Background(), g, workerCount)
}

// Sum reduces g with workerCount parallel workers and returns the total.
func (r *Reducer) Sum(ctx context.Context, g grid.Grid, workerCount int) (float64, error) {
	res, err := r.Reduce(ctx, g, workerCount, nil)
	if err != nil {
		return 0, err
	}
	return res.Sum, nil
}

// Reduce runs a full reduction: validation, partitioning, one goroutine per
// partition, a barrier on all of them, and a reduction of the partial sums in
// partition order.
//
// Validation failures are returned before any worker starts. If any worker
// fails, the fault of the lowest partition index is returned, wrapped in an
// apperrors.WorkerFault, and the Result is empty; Reduce still waits for every
// worker before returning.
//
// Parameters:
//   - ctx: Cancels dispatch and running workers.
//   - g: The grid, read-only for the duration of the call.
//   - workerCount: Number of partitions and worker goroutines (>= 1).
//   - progressChan: Optional channel for per-partition progress. Sends never
//     block; the caller owns and closes the channel after Reduce returns.
//
// Returns:
//   - Result: The total and per-partition details.
//   - error: A validation error, a WorkerFault, or a cancellation error.
func (r *Reducer) Reduce(ctx context.Context, g grid.Grid, workerCount int, progressChan chan<- progress.ProgressUpdate) (Result, error) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "gridsum.Reduce", trace.WithAttributes(
		attribute.Int("gridsum.workers", workerCount),
		attribute.Int("gridsum.rows", g.Rows()),
		attribute.String("gridsum.policy", r.partitioner.Name()),
	))
	defer span.End()

	r.enter(StateIdle)
	res, err := r.reduce(ctx, g, workerCount, progressChan)
	res.Duration = time.Since(start)
	r.metrics.ObserveSum(workerCount, res.Elements, res.Duration, err)

	if err != nil {
		r.enter(StateFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Error("reduction failed", err,
			logging.Int("workers", workerCount),
			logging.Duration("elapsed", res.Duration))
		return Result{Workers: workerCount, Policy: r.partitioner.Name(), Duration: res.Duration}, err
	}

	r.enter(StateDone)
	span.SetAttributes(attribute.Float64("gridsum.sum", res.Sum))
	r.logger.Debug("reduction complete",
		logging.Float64("sum", res.Sum),
		logging.Int("workers", workerCount),
		logging.Duration("elapsed", res.Duration))
	return res, nil
}

func (r *Reducer) reduce(ctx context.Context, g grid.Grid, workerCount int, progressChan chan<- progress.ProgressUpdate) (Result, error) {
	res := Result{Workers: workerCount, Policy: r.partitioner.Name()}

	r.enter(StateValidating)
	if workerCount < 1 {
		return res, apperrors.NewWorkerCountError(workerCount)
	}
	if workerCount > grid.MaxPartitions {
		return res, apperrors.NewWorkerLimitError(workerCount, grid.MaxPartitions)
	}
	if err := grid.Validate(g); err != nil {
		return res, err
	}
	res.Elements = g.Len()

	r.enter(StatePartitioning)
	parts, err := r.partitioner.Split(res.Elements, workerCount)
	if err != nil {
		return res, apperrors.WrapError(err, "%s partitioning", r.partitioner.Name())
	}
	if err := grid.VerifyCoverage(parts, res.Elements); err != nil {
		var covErr *grid.CoverageError
		if errors.As(err, &covErr) {
			return res, apperrors.WorkerFault{
				Partition: covErr.Partition.Index,
				Start:     covErr.Partition.Start,
				Length:    covErr.Partition.Length,
				Cause:     err,
			}
		}
		return res, err
	}
	if len(parts) != workerCount {
		return res, fmt.Errorf("%s partitioning returned %d partitions, want %d", r.partitioner.Name(), len(parts), workerCount)
	}
	if err := ctx.Err(); err != nil {
		return res, apperrors.WrapError(err, "canceled before dispatch")
	}

	r.enter(StateDispatching)
	r.logger.Debug("dispatching partitions",
		logging.Int("workers", workerCount),
		logging.Int("elements", res.Elements),
		logging.String("policy", r.partitioner.Name()))

	var sem *semaphore.Weighted
	if r.maxParallel > 0 && r.maxParallel < workerCount {
		sem = semaphore.NewWeighted(int64(r.maxParallel))
	}

	partials := make([]PartialResult, len(parts))
	var faults parallel.ErrorCollector
	var eg errgroup.Group
	for _, p := range parts {
		eg.Go(func() error {
			partials[p.Index] = r.runWorker(ctx, g, p, sem, progressChan, &faults)
			return nil
		})
	}

	r.enter(StateAwaitingAll)
	_ = eg.Wait() // workers report through faults, never through the group

	if err := faults.Err(); err != nil {
		if n := faults.Count(); n > 1 {
			r.logger.Warn("multiple workers failed",
				logging.Int("failures", n),
				logging.Int("first_partition", faults.Index()))
		}
		return res, err
	}

	r.enter(StateReducing)
	var sum float64
	for _, pr := range partials {
		sum += pr.Sum
	}
	res.Sum = sum
	res.Partials = partials
	return res, nil
}

// runWorker runs one worker and converts its error or panic into a
// WorkerFault recorded under the partition index.
func (r *Reducer) runWorker(ctx context.Context, g grid.Grid, p grid.Partition, sem *semaphore.Weighted,
	progressChan chan<- progress.ProgressUpdate, faults *parallel.ErrorCollector) (pr PartialResult) {
	pr.Partition = p
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			pr.Sum = 0
			pr.Err = apperrors.WorkerFault{Partition: p.Index, Start: p.Start, Length: p.Length, Cause: fmt.Errorf("panic: %v", rec)}
		}
		if pr.Err != nil {
			faults.SetError(p.Index, pr.Err)
		}
		pr.Duration = time.Since(start)
		r.metrics.ObservePartition(p.Length, pr.Duration, pr.Err)
	}()

	if sem != nil {
		if err := sem.Acquire(ctx, 1); err != nil {
			pr.Err = apperrors.WorkerFault{Partition: p.Index, Start: p.Start, Length: p.Length, Cause: err}
			return pr
		}
		defer sem.Release(1)
	}

	ctx, span := r.tracer.Start(ctx, "gridsum.SumPartition", trace.WithAttributes(
		attribute.Int("gridsum.partition", p.Index),
		attribute.Int("gridsum.start", p.Start),
		attribute.Int("gridsum.length", p.Length),
	))
	defer span.End()

	sum, err := r.summer.SumPartition(ctx, g, p, progress.NewChannelReporter(progressChan, p.Index))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		pr.Err = apperrors.WorkerFault{Partition: p.Index, Start: p.Start, Length: p.Length, Cause: err}
		return pr
	}
	pr.Sum = sum
	return pr
}

func (r *Reducer) enter(s State) {
	if r.observer != nil {
		r.observer(s)
	}
}
