package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/takenote/internal/domain"
	domana "github.com/kailas-cloud/takenote/internal/domain/analysis"
)

// Orchestrator runs the three note stages concurrently. A stage that panics
// or misses the deadline is replaced by a degraded result; the others are
// unaffected.
type Orchestrator struct {
	summarizer Summarizer
	classifier Classifier
	tagger     Tagger
	deadline   time.Duration
	logger     *zap.Logger
}

// NewOrchestrator creates an orchestrator. A zero deadline waits for every
// stage to finish.
func NewOrchestrator(s Summarizer, c Classifier, t Tagger, deadline time.Duration, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{summarizer: s, classifier: c, tagger: t, deadline: deadline, logger: logger}
}

type stageResult[T any] struct {
	value T
	err   error
}

// Process analyzes content. The aggregate always has every field set; when
// a stage failed its status is failed and Error names the failures.
func (o *Orchestrator) Process(ctx context.Context, content string) domana.Aggregate {
	sumCh := launch(ctx, stageSummarize, func(ctx context.Context) domana.Summary {
		return o.summarizer.Summarize(ctx, content)
	})
	clsCh := launch(ctx, stageClassify, func(ctx context.Context) domana.Classification {
		return o.classifier.Classify(ctx, "", content)
	})
	tagCh := launch(ctx, stageTags, func(ctx context.Context) domana.Tags {
		return o.tagger.ExtractTags(ctx, content)
	})

	var deadline <-chan struct{}
	if o.deadline > 0 {
		dctx, cancel := context.WithTimeout(context.Background(), o.deadline)
		defer cancel()
		deadline = dctx.Done()
	}

	sum := await(ctx, stageSummarize, sumCh, deadline)
	cls := await(ctx, stageClassify, clsCh, deadline)
	tags := await(ctx, stageTags, tagCh, deadline)

	agg := domana.Aggregate{ProcessingStatus: domana.StatusCompleted}
	var errs []string

	if sum.err != nil {
		errs = append(errs, o.degrade(stageSummarize, sum.err))
		agg.Summary = content
		agg.SummaryModel = domana.ModelDegraded
	} else {
		agg.Summary = sum.value.Summary
		agg.SummaryModel = sum.value.Model
	}

	if cls.err != nil {
		errs = append(errs, o.degrade(stageClassify, cls.err))
		agg.Categories = []string{domana.CategoryGeneralLabel}
		agg.CategoryScores = []float64{generalFallbackConf}
		agg.CategoryModel = domana.ModelDegraded
	} else {
		agg.Categories = cls.value.Categories
		agg.CategoryScores = cls.value.ConfidenceScores
		agg.CategoryModel = cls.value.Model
	}

	if tags.err != nil {
		errs = append(errs, o.degrade(stageTags, tags.err))
		agg.Tags = []string{}
		agg.TagScores = []float64{}
		agg.TagModel = domana.ModelDegraded
	} else {
		agg.Tags = tags.value.Tags
		agg.TagScores = tags.value.ConfidenceScores
		agg.TagModel = tags.value.Model
	}

	if len(errs) > 0 {
		agg.ProcessingStatus = domana.StatusFailed
		agg.Error = strings.Join(errs, "; ")
	}
	return agg
}

func (o *Orchestrator) degrade(stage string, err error) string {
	o.logger.Error("analysis stage failed", zap.String("stage", stage), zap.Error(err))
	observe(stage, domana.TierDegraded)
	return err.Error()
}

// launch runs fn in its own goroutine. The channel is buffered so the
// goroutine can finish even if nobody waits for it anymore.
func launch[T any](ctx context.Context, stage string, fn func(context.Context) T) <-chan stageResult[T] {
	ch := make(chan stageResult[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- stageResult[T]{err: fmt.Errorf("%s: %w: %v", stage, domain.ErrStageInternal, r)}
			}
		}()
		ch <- stageResult[T]{value: fn(ctx)}
	}()
	return ch
}

func await[T any](ctx context.Context, stage string, ch <-chan stageResult[T], deadline <-chan struct{}) stageResult[T] {
	select {
	case r := <-ch:
		return r
	case <-deadline:
		return stageResult[T]{err: fmt.Errorf("%s: %w: deadline exceeded", stage, domain.ErrStageInternal)}
	case <-ctx.Done():
		return stageResult[T]{err: fmt.Errorf("%s: %w", stage, ctx.Err())}
	}
}
