package app

import (
	"context"

	"go.opentelemetry.io/otel"

	apperrors "github.com/agbru/gridsum/internal/errors"
	"github.com/agbru/gridsum/internal/logging"
	"github.com/agbru/gridsum/internal/orchestration"
	"github.com/agbru/gridsum/internal/server"
)

// runServe runs the HTTP server until ctx is cancelled.
func (a *Application) runServe(ctx context.Context) int {
	cfg := server.Config{
		Addr:           a.Config.Addr,
		DefaultWorkers: a.Config.Workers,
		RequestTimeout: a.Config.Timeout,
		Security:       server.DefaultSecurityConfig(),
		Version:        Version,
	}
	opts := append([]orchestration.Option{
		orchestration.WithTracer(otel.Tracer("gridsum")),
		orchestration.WithMaxParallel(a.Config.MaxParallel),
	}, a.extraOpts...)

	srv := server.New(cfg, a.Metrics, a.Logger, opts...)
	if err := srv.ListenAndServe(ctx); err != nil {
		a.Logger.Error("server failed", err, logging.String("addr", cfg.Addr))
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}
