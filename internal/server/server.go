// Package server exposes the reducer over HTTP: POST /sum, GET /health and
// GET /metrics.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/agbru/gridsum/internal/grid"
	"github.com/agbru/gridsum/internal/logging"
	"github.com/agbru/gridsum/internal/metrics"
	"github.com/agbru/gridsum/internal/orchestration"
)

// ShutdownTimeout bounds the graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// Config configures a Server.
type Config struct {
	Addr string
	// DefaultWorkers is used when a request omits "workers".
	DefaultWorkers int
	// RequestTimeout bounds a single reduction.
	RequestTimeout time.Duration
	Security       SecurityConfig
	Version        string
}

// Server serves reductions over HTTP.
type Server struct {
	cfg      Config
	reducers map[string]*orchestration.Reducer
	metrics  *metrics.Recorder
	logger   logging.Logger
	http     *http.Server
}

// New builds a Server with one Reducer per partitioning policy. opts are
// applied to every reducer before the server's own partitioner, metrics and
// logger options.
func New(cfg Config, rec *metrics.Recorder, logger logging.Logger, opts ...orchestration.Option) *Server {
	if cfg.DefaultWorkers <= 0 {
		cfg.DefaultWorkers = runtime.NumCPU()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = time.Minute
	}
	s := &Server{
		cfg:      cfg,
		reducers: make(map[string]*orchestration.Reducer),
		metrics:  rec,
		logger:   logger,
	}
	for _, name := range grid.Policies() {
		p, _ := grid.PartitionerByName(name)
		all := append(append([]orchestration.Option(nil), opts...),
			orchestration.WithPartitioner(p),
			orchestration.WithMetrics(rec),
			orchestration.WithLogger(logger))
		s.reducers[name] = orchestration.New(all...)
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/sum", s.wrap(s.handleSum))
	mux.HandleFunc("/health", s.wrap(s.handleHealth))
	mux.HandleFunc("/metrics", s.wrap(s.handleMetrics))
	return mux
}

func (s *Server) wrap(h http.HandlerFunc) http.HandlerFunc {
	return SecurityMiddleware(s.cfg.Security, s.loggingMiddleware(s.metricsMiddleware(h)))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- s.http.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
