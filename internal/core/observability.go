package core

import (
	"context"
	"time"
)

// MetricsRecorder receives operation outcomes for aggregation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer opens spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan terminates a single traced operation.
type TraceSpan interface {
	End(err error)
}

// instrument wraps an operation with optional tracing and metrics. The
// returned finish function must be called exactly once with the operation
// outcome.
func (s *Service) instrument(ctx context.Context, operation string) (context.Context, func(error)) {
	started := time.Now()
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	return ctx, func(err error) {
		if span != nil {
			span.End(err)
		}
		if s.metrics != nil {
			s.metrics.Observe(ctx, operation, err == nil, time.Since(started))
		}
	}
}
