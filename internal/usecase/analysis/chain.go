package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/takenote/internal/domain"
	domana "github.com/kailas-cloud/takenote/internal/domain/analysis"
)

// Providers resolves a candidate's provider name to its client.
type Providers map[string]domain.Provider

// Chain describes one fallback run: the ordered candidates, how to build a
// request, when a response is good enough, and the local heuristic to use
// when no candidate delivers.
type Chain[T any] struct {
	Stage      string
	Candidates []Candidate
	Request    func(c Candidate) domain.InferenceRequest
	Accept     func(c Candidate, resp domain.InferenceResponse) (T, bool)
	Heuristic  func() T
	// HeuristicModel tags results produced by Heuristic.
	HeuristicModel string
}

// Outcome is the value a chain produced and where it came from.
type Outcome[T any] struct {
	Value    T
	Model    string
	Tier     domana.Tier
	Attempts int
	// Err is the last candidate failure. Nil for remote results and for
	// chains that had no candidates.
	Err error
}

// ErrMessage returns the last candidate failure for a heuristic result, or
// "" when no candidate failed.
func (o Outcome[T]) ErrMessage() string {
	if o.Tier != domana.TierLocal || o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Run tries candidates in order and returns the first acceptable response.
// Once a candidate is accepted no later candidate is called. When every
// candidate fails or is rejected the heuristic runs.
func Run[T any](ctx context.Context, providers Providers, ch Chain[T], logger *zap.Logger) Outcome[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	trace := domain.TraceFromContext(ctx)

	attempts := 0
	var lastErr error
	for _, c := range ch.Candidates {
		attempts++
		v, err := attempt(ctx, providers, ch, c)
		trace.Record(err != nil)
		if err != nil {
			lastErr = err
			logger.Debug("candidate failed",
				zap.String("stage", ch.Stage),
				zap.String("provider", c.Provider),
				zap.String("model", c.Model),
				zap.Error(err),
			)
			continue
		}
		logger.Debug("candidate accepted",
			zap.String("stage", ch.Stage),
			zap.String("provider", c.Provider),
			zap.String("model", c.Model),
		)
		return Outcome[T]{Value: v, Model: c.Model, Tier: domana.TierRemote, Attempts: attempts}
	}

	if attempts > 0 {
		logger.Info("falling back to local heuristic",
			zap.String("stage", ch.Stage),
			zap.Int("attempts", attempts),
			zap.String("heuristic", ch.HeuristicModel),
		)
	}
	return Outcome[T]{
		Value:    ch.Heuristic(),
		Model:    ch.HeuristicModel,
		Tier:     domana.TierLocal,
		Attempts: attempts,
		Err:      lastErr,
	}
}

func attempt[T any](ctx context.Context, providers Providers, ch Chain[T], c Candidate) (T, error) {
	var zero T
	p, ok := providers[c.Provider]
	if !ok || p == nil {
		return zero, domain.NewProviderError(c.Provider, c.Model, domain.KindUnsupported,
			fmt.Errorf("provider %q not configured", c.Provider))
	}
	req := ch.Request(c)
	req.Model = c.Model
	resp, err := p.Infer(ctx, req)
	if err != nil {
		return zero, err
	}
	v, ok := ch.Accept(c, resp)
	if !ok {
		return zero, fmt.Errorf("%s %s: %w", c.Provider, c.Model, domain.ErrProviderEmptyResult)
	}
	return v, nil
}
