package analysis

import (
	"context"
	"strings"

	"github.com/kailas-cloud/takenote/internal/domain"
	domana "github.com/kailas-cloud/takenote/internal/domain/analysis"
	"github.com/kailas-cloud/takenote/internal/lexical"
)

// Categorize picks one category by counting keyword hits in title and
// content. The highest count wins; ties go to the earlier category and no
// hits at all yield General. It makes no remote calls.
func (e *Engine) Categorize(content, title string) domana.Category {
	if lexical.Len(strings.TrimSpace(content)) < categoryBypassLen {
		observe(stageCategorize, domana.TierBypass)
		return domana.Category{
			Category: domana.CategoryGeneral,
			Model:    domana.ModelDefault,
			Tier:     domana.TierBypass,
		}
	}

	text := lexical.Normalize(joinTitle(title, content))
	best, bestScore := domana.CategoryGeneral, 0
	for _, rule := range categoryRules {
		score := 0
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = rule.name, score
		}
	}

	observe(stageCategorize, domana.TierLocal)
	return domana.Category{
		Category:   best,
		Confidence: ruleBasedConfidence,
		Model:      domana.ModelRuleBased,
		Tier:       domana.TierLocal,
	}
}

// Classify asks the classification candidates for up to three labels and
// falls back to a keyword table.
func (e *Engine) Classify(ctx context.Context, title, content string) domana.Classification {
	if lexical.Len(strings.TrimSpace(content)) < categoryBypassLen {
		observe(stageClassify, domana.TierBypass)
		return domana.Classification{
			Categories:       []string{domana.CategoryGeneralLabel},
			ConfidenceScores: []float64{0},
			Model:            domana.ModelDefault,
			Tier:             domana.TierBypass,
		}
	}

	text := joinTitle(title, content)
	out := Run(ctx, e.providers, Chain[[]domain.Label]{
		Stage:      stageClassify,
		Candidates: e.models.Classification,
		Request: func(Candidate) domain.InferenceRequest {
			return domain.InferenceRequest{
				Task:       domain.TaskTextClassification,
				Inputs:     lexical.Truncate(text, classifyInputLen),
				Parameters: map[string]any{"top_k": maxClassifyLabels},
				Timeout:    e.timeout,
			}
		},
		Accept:         acceptLabels,
		Heuristic:      func() []domain.Label { return keywordLabels(text) },
		HeuristicModel: domana.ModelKeywords,
	}, e.logger)

	res := domana.Classification{
		Categories:       make([]string, len(out.Value)),
		ConfidenceScores: make([]float64, len(out.Value)),
		Model:            out.Model,
		Tier:             out.Tier,
		Error:            out.ErrMessage(),
	}
	for i, l := range out.Value {
		res.Categories[i] = l.Label
		res.ConfidenceScores[i] = l.Score
	}
	observe(stageClassify, res.Tier)
	return res
}

func acceptLabels(_ Candidate, resp domain.InferenceResponse) ([]domain.Label, bool) {
	labels := make([]domain.Label, 0, maxClassifyLabels)
	for _, l := range resp.Labels {
		if l.Label == "" {
			continue
		}
		labels = append(labels, l)
		if len(labels) == maxClassifyLabels {
			break
		}
	}
	return labels, len(labels) > 0
}

// keywordLabels returns every fallback label with a keyword in text, in
// table order, or general when none match.
func keywordLabels(text string) []domain.Label {
	lower := lexical.Normalize(text)
	var labels []domain.Label
	for _, rule := range classifyFallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				labels = append(labels, domain.Label{Label: rule.label, Score: rule.score})
				break
			}
		}
	}
	if len(labels) == 0 {
		return []domain.Label{{Label: domana.CategoryGeneralLabel, Score: generalFallbackConf}}
	}
	return labels
}

func joinTitle(title, content string) string {
	if strings.TrimSpace(title) == "" {
		return content
	}
	return title + " " + content
}
