package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every collector registered by this package.
const Namespace = "gridsum"

// Status label values for the sums_total counter.
const (
	StatusOK       = "ok"
	StatusInvalid  = "invalid"
	StatusFault    = "fault"
	StatusCanceled = "canceled"
)

// Classifier maps a reduction error to a status label. It is injected so this
// package does not depend on the error taxonomy.
type Classifier func(err error) string

// Recorder collects reduction metrics into its own Prometheus registry.
// A Recorder is safe for concurrent use; each instance owns an independent
// registry so tests and embedded servers never collide on registration.
type Recorder struct {
	registry *prometheus.Registry

	sums              *prometheus.CounterVec
	sumDuration       prometheus.Histogram
	partitionDuration *prometheus.HistogramVec
	elements          prometheus.Counter
	workers           prometheus.Histogram
	activeRequests    prometheus.Gauge
	requests          *prometheus.CounterVec

	classify Classifier
}

// NewRecorder builds a Recorder with Go runtime and process collectors
// registered alongside the reduction metrics.
//
// Parameters:
//   - classify: maps errors to a status label; nil uses DefaultClassifier.
//
// Returns:
//   - *Recorder: a ready-to-use recorder.
func NewRecorder(classify Classifier) *Recorder {
	if classify == nil {
		classify = DefaultClassifier
	}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		classify: classify,
		sums: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "sums_total",
			Help:      "Number of grid reductions by outcome.",
		}, []string{"status"}),
		sumDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "sum_duration_seconds",
			Help:      "Wall-clock duration of a full grid reduction.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		partitionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "partition_duration_seconds",
			Help:      "Duration of a single partition worker.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"status"}),
		elements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "elements_total",
			Help:      "Grid cells reduced by successful sums.",
		}),
		workers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "workers",
			Help:      "Worker count requested per reduction.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128},
		}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_requests",
			Help:      "HTTP requests currently being served.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "requests_total",
			Help:      "HTTP requests served, by path and status code.",
		}, []string{"path", "code"}),
	}
	r.registry.MustRegister(
		r.sums, r.sumDuration, r.partitionDuration, r.elements,
		r.workers, r.activeRequests, r.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// DefaultClassifier labels nil as ok and everything else as fault.
func DefaultClassifier(err error) string {
	if err == nil {
		return StatusOK
	}
	return StatusFault
}

// ObserveSum records one finished reduction.
func (r *Recorder) ObserveSum(workers, elements int, duration time.Duration, err error) {
	status := r.classify(err)
	r.sums.WithLabelValues(status).Inc()
	r.workers.Observe(float64(workers))
	if err == nil {
		r.sumDuration.Observe(duration.Seconds())
		r.elements.Add(float64(elements))
	}
}

// ObservePartition records one finished partition worker.
func (r *Recorder) ObservePartition(_ int, duration time.Duration, err error) {
	r.partitionDuration.WithLabelValues(r.classify(err)).Observe(duration.Seconds())
}

// IncrementActiveRequests increments the in-flight HTTP request gauge.
func (r *Recorder) IncrementActiveRequests() { r.activeRequests.Inc() }

// DecrementActiveRequests decrements the in-flight HTTP request gauge.
func (r *Recorder) DecrementActiveRequests() { r.activeRequests.Dec() }

// ObserveRequest counts a served HTTP request.
func (r *Recorder) ObserveRequest(path string, code int) {
	r.requests.WithLabelValues(path, strconv.Itoa(code)).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler returns an HTTP handler serving the registry in the Prometheus
// text exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
