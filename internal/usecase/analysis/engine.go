// Package analysis implements the text-analysis engine: fallback chains over
// remote inference providers, local heuristics for every stage, and the
// concurrent orchestration of a full note analysis.
package analysis

import (
	"context"
	"time"

	"go.uber.org/zap"

	domana "github.com/kailas-cloud/takenote/internal/domain/analysis"
	"github.com/kailas-cloud/takenote/internal/metrics"
)

// Stage names used in logs and metrics.
const (
	stageSummarize  = "summarize"
	stageCategorize = "categorize"
	stageClassify   = "classify"
	stageTags       = "tags"
	stageSearch     = "search"
)

// Config tunes the engine.
type Config struct {
	// Models lists the remote candidates per stage. Empty lists make the
	// stage run its local heuristic only.
	Models Models
	// Timeout bounds each provider call. Zero leaves it to the provider.
	Timeout time.Duration
	// Deadline bounds ProcessNote. Zero disables it.
	Deadline time.Duration
	Logger   *zap.Logger
}

// Engine runs the analysis stages. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	providers    Providers
	models       Models
	timeout      time.Duration
	logger       *zap.Logger
	orchestrator *Orchestrator
}

// New creates an engine over the given providers.
func New(providers Providers, cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if providers == nil {
		providers = Providers{}
	}
	e := &Engine{
		providers: providers,
		models:    cfg.Models,
		timeout:   cfg.Timeout,
		logger:    logger,
	}
	e.orchestrator = NewOrchestrator(e, e, e, cfg.Deadline, logger)
	return e
}

// ProcessNote runs summarization, classification and tag extraction
// concurrently. See Orchestrator.Process.
func (e *Engine) ProcessNote(ctx context.Context, content string) domana.Aggregate {
	return e.orchestrator.Process(ctx, content)
}

func observe(stage string, tier domana.Tier) {
	metrics.AnalysisResultsTotal.WithLabelValues(stage, string(tier)).Inc()
}
