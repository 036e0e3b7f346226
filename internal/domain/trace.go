package domain

import (
	"context"
	"sync"
)

type traceKey struct{}

// InferenceTrace collects the provider attempts made while serving one
// request. Stages run concurrently, so it is safe for concurrent use.
// The handler puts it into the context; the chain executor records into it.
type InferenceTrace struct {
	mu       sync.Mutex
	attempts int
	failures int
}

// NewContextWithTrace returns a context carrying a fresh trace.
func NewContextWithTrace(ctx context.Context) (context.Context, *InferenceTrace) {
	t := &InferenceTrace{}
	return context.WithValue(ctx, traceKey{}, t), t
}

// TraceFromContext returns the trace in ctx, or nil.
func TraceFromContext(ctx context.Context) *InferenceTrace {
	t, _ := ctx.Value(traceKey{}).(*InferenceTrace)
	return t
}

// Record counts one provider attempt. Nil-safe.
func (t *InferenceTrace) Record(failed bool) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attempts++
	if failed {
		t.failures++
	}
}

// Counts returns the number of attempts and failed attempts.
func (t *InferenceTrace) Counts() (attempts, failures int) {
	if t == nil {
		return 0, 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts, t.failures
}
