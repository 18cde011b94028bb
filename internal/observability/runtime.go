package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campusconnect/campus-connect-api/internal/config"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Runtime struct {
	LoggerProvider *sdklog.LoggerProvider
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider
}

type shutdowner interface {
	Shutdown(context.Context) error
}

type namedShutdown struct {
	name string
	s    shutdowner
}

// InitRuntime brings up logs, metrics and traces in that order. A failure
// tears down whatever already started.
func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{}
	var err error
	if rt.LoggerProvider, err = InitLogs(ctx, cfg, logger); err != nil {
		return nil, err
	}
	if rt.MeterProvider, err = InitMetrics(ctx, cfg, logger); err != nil {
		_ = rt.Shutdown(ctx)
		return nil, err
	}
	if rt.TracerProvider, err = InitTracing(ctx, cfg, logger); err != nil {
		_ = rt.Shutdown(ctx)
		return nil, err
	}
	return rt, nil
}

// Shutdown flushes traces first so spans ended during drain still export,
// then metrics, then logs.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var order []namedShutdown
	if r.TracerProvider != nil {
		order = append(order, namedShutdown{"tracer provider", r.TracerProvider})
	}
	if r.MeterProvider != nil {
		order = append(order, namedShutdown{"meter provider", r.MeterProvider})
	}
	if r.LoggerProvider != nil {
		order = append(order, namedShutdown{"logger provider", r.LoggerProvider})
	}
	var errs []error
	for _, p := range order {
		if err := p.s.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.name, err))
		}
	}
	return errors.Join(errs...)
}
