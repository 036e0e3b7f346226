package analysis

import (
	"context"
	"errors"
	"sync"

	"github.com/kailas-cloud/takenote/internal/domain"
	domana "github.com/kailas-cloud/takenote/internal/domain/analysis"
)

const testProvider = "scripted"

type scriptedReply struct {
	resp domain.InferenceResponse
	err  error
}

// scriptedProvider replays queued replies per model and counts calls.
// A model with nothing queued fails as unreachable.
type scriptedProvider struct {
	mu       sync.Mutex
	replies  map[string][]scriptedReply
	calls    map[string]int
	requests []domain.InferenceRequest
}

func newScriptedProvider() *scriptedProvider {
	return &scriptedProvider{
		replies: make(map[string][]scriptedReply),
		calls:   make(map[string]int),
	}
}

func (p *scriptedProvider) succeed(model string, resp domain.InferenceResponse) *scriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies[model] = append(p.replies[model], scriptedReply{resp: resp})
	return p
}

func (p *scriptedProvider) fail(model string, kind domain.ProviderErrorKind) *scriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := domain.NewProviderError(testProvider, model, kind, errors.New("scripted failure"))
	p.replies[model] = append(p.replies[model], scriptedReply{err: err})
	return p
}

func (p *scriptedProvider) Infer(_ context.Context, req domain.InferenceRequest) (domain.InferenceResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[req.Model]++
	p.requests = append(p.requests, req)
	queue := p.replies[req.Model]
	if len(queue) == 0 {
		return domain.InferenceResponse{}, domain.NewProviderError(testProvider, req.Model, domain.KindUnreachable, nil)
	}
	r := queue[0]
	p.replies[req.Model] = queue[1:]
	return r.resp, r.err
}

func (p *scriptedProvider) callsTo(model string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[model]
}

func (p *scriptedProvider) totalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		n += c
	}
	return n
}

func (p *scriptedProvider) lastRequest() domain.InferenceRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.requests) == 0 {
		return domain.InferenceRequest{}
	}
	return p.requests[len(p.requests)-1]
}

func candidates(models ...string) []Candidate {
	out := make([]Candidate, len(models))
	for i, m := range models {
		out[i] = Candidate{Provider: testProvider, Model: m}
	}
	return out
}

func newTestEngine(p domain.Provider, models Models) *Engine {
	return New(Providers{testProvider: p}, Config{Models: models})
}

// Stage stubs for orchestrator tests.

type panicClassifier struct{}

func (panicClassifier) Classify(context.Context, string, string) domana.Classification {
	panic("classifier exploded")
}

type blockingTagger struct {
	release chan struct{}
}

func (b blockingTagger) ExtractTags(context.Context, string) domana.Tags {
	<-b.release
	return domana.Tags{Tags: []string{"late"}, ConfidenceScores: []float64{1}, Model: "slow"}
}
