package core

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

var expvarSeq uint64

// OperationStats aggregates the outcomes of one registry operation.
type OperationStats struct {
	Calls    int64   `json:"calls"`
	Failures int64   `json:"failures"`
	TotalMS  float64 `json:"total_ms"`
	MaxMS    float64 `json:"max_ms"`
}

// ExpvarMetricsRecorder publishes per-operation call, failure, and latency
// aggregates via expvar. It fulfills MetricsRecorder for deployments that
// prefer process-local metrics over a scraped collector.
type ExpvarMetricsRecorder struct {
	name string
	mu   sync.Mutex
	ops  map[string]OperationStats
}

// ExpvarMetricsSnapshot is a read-only view of the recorded aggregates,
// keyed by operation name (register, update, publish, ...).
type ExpvarMetricsSnapshot struct {
	Operations map[string]OperationStats `json:"operations"`
	RecordedAt time.Time                 `json:"recorded_at"`
}

// NewExpvarMetricsRecorder constructs a recorder and publishes it under the
// supplied expvar name. When name is empty, a unique one is generated.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("registry_operations_%d", id)
	}
	rec := &ExpvarMetricsRecorder{
		name: name,
		ops:  make(map[string]OperationStats),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name associated with the recorder.
func (r *ExpvarMetricsRecorder) Name() string {
	return r.name
}

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	ops := make(map[string]OperationStats, len(r.ops))
	for op, stats := range r.ops {
		ops[op] = stats
	}
	return ExpvarMetricsSnapshot{
		Operations: ops,
		RecordedAt: time.Now().UTC(),
	}
}

// Observe records a service operation outcome.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	ms := float64(duration) / float64(time.Millisecond)

	r.mu.Lock()
	stats := r.ops[operation]
	stats.Calls++
	if !success {
		stats.Failures++
	}
	stats.TotalMS += ms
	if ms > stats.MaxMS {
		stats.MaxMS = ms
	}
	r.ops[operation] = stats
	r.mu.Unlock()
}

// RegistrySpan is one completed registry operation as emitted by the JSON
// tracer: the operation name, its outcome, and its timing.
type RegistrySpan struct {
	Seq        uint64    `json:"seq"`
	Operation  string    `json:"operation"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS float64   `json:"duration_ms"`
}

// JSONTraceTracer serializes completed operations as JSON lines and retains
// them in order for inspection.
type JSONTraceTracer struct {
	mu    sync.Mutex
	seq   uint64
	spans []RegistrySpan
	enc   *json.Encoder
}

// NewJSONTracer constructs a tracer writing spans to w. A nil writer retains
// spans in memory only.
func NewJSONTracer(w io.Writer) *JSONTraceTracer {
	var enc *json.Encoder
	if w != nil {
		enc = json.NewEncoder(w)
	}
	return &JSONTraceTracer{enc: enc}
}

// Entries returns a copy of all completed spans in emission order.
func (t *JSONTraceTracer) Entries() []RegistrySpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]RegistrySpan, len(t.spans))
	copy(out, t.spans)
	return out
}

// Start implements the Tracer interface.
func (t *JSONTraceTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &jsonTraceSpan{
		tracer:    t,
		operation: operation,
		started:   time.Now().UTC(),
	}
}

type jsonTraceSpan struct {
	tracer    *JSONTraceTracer
	operation string
	started   time.Time
}

func (s *jsonTraceSpan) End(err error) {
	outcome := "ok"
	var errMsg string
	if err != nil {
		outcome = "failed"
		errMsg = err.Error()
	}
	ended := time.Now().UTC()

	s.tracer.mu.Lock()
	s.tracer.seq++
	span := RegistrySpan{
		Seq:        s.tracer.seq,
		Operation:  s.operation,
		Outcome:    outcome,
		Error:      errMsg,
		StartedAt:  s.started,
		DurationMS: float64(ended.Sub(s.started)) / float64(time.Millisecond),
	}
	s.tracer.spans = append(s.tracer.spans, span)
	if s.tracer.enc != nil {
		_ = s.tracer.enc.Encode(span)
	}
	s.tracer.mu.Unlock()
}
