package analysis

import (
	"context"
	"strings"
	"unicode"

	"github.com/kailas-cloud/takenote/internal/domain"
	domana "github.com/kailas-cloud/takenote/internal/domain/analysis"
	"github.com/kailas-cloud/takenote/internal/lexical"
)

type scoredTags struct {
	tags   []string
	scores []float64
}

// ExtractTags returns up to five tags for content. Entity recognition is
// attempted only for content of at least 50 characters; shorter content
// and failed chains use word frequency.
func (e *Engine) ExtractTags(ctx context.Context, content string) domana.Tags {
	n := lexical.Len(strings.TrimSpace(content))
	if n < tagBypassLen {
		observe(stageTags, domana.TierBypass)
		return domana.Tags{
			Tags:             []string{},
			ConfidenceScores: []float64{},
			Model:            domana.ModelDefault,
			Tier:             domana.TierBypass,
		}
	}

	candidates := e.models.NER
	if n < tagRemoteMinLen {
		candidates = nil
	}
	out := Run(ctx, e.providers, Chain[scoredTags]{
		Stage:      stageTags,
		Candidates: candidates,
		Request: func(Candidate) domain.InferenceRequest {
			return domain.InferenceRequest{
				Task:       domain.TaskTokenClassification,
				Inputs:     lexical.Truncate(content, nerInputLen),
				Parameters: map[string]any{"aggregation_strategy": "simple"},
				Timeout:    e.timeout,
			}
		},
		Accept:         acceptEntities,
		Heuristic:      func() scoredTags { return frequentWords(content) },
		HeuristicModel: domana.ModelKeywords,
	}, e.logger)

	observe(stageTags, out.Tier)
	return domana.Tags{
		Tags:             out.Value.tags,
		ConfidenceScores: out.Value.scores,
		Model:            out.Model,
		Tier:             out.Tier,
		Error:            out.ErrMessage(),
	}
}

// acceptEntities keeps alphabetic entity words longer than two characters,
// lowercased and deduplicated, at most five.
func acceptEntities(_ Candidate, resp domain.InferenceResponse) (scoredTags, bool) {
	res := scoredTags{tags: []string{}, scores: []float64{}}
	seen := make(map[string]struct{})
	for _, ent := range resp.Entities {
		if ent.EntityGroup == "" {
			continue
		}
		word := strings.TrimSpace(ent.Word)
		if lexical.Len(word) <= 2 || !isAlpha(word) {
			continue
		}
		word = lexical.Normalize(word)
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		res.tags = append(res.tags, word)
		res.scores = append(res.scores, ent.Score)
		if len(res.tags) == maxTags {
			break
		}
	}
	return res, len(res.tags) > 0
}

// frequentWords returns the most repeated non-stopword tokens as tags.
func frequentWords(content string) scoredTags {
	res := scoredTags{tags: []string{}, scores: []float64{}}
	for _, item := range rankWords(content) {
		res.tags = append(res.tags, item.Subject)
		res.scores = append(res.scores, item.Score)
	}
	return res
}

// rankWords scores the top five non-stopword tokens by count over the
// number of filtered tokens. Words seen only once never qualify, so fewer
// than five items may come back.
func rankWords(content string) []domana.ScoredItem {
	filtered := lexical.FilterStopwords(lexical.Tokenize(content, 3), lexical.Stopwords)
	if len(filtered) == 0 {
		return nil
	}
	ranked := lexical.RankByFrequency(filtered)
	if len(ranked) > maxTags {
		ranked = ranked[:maxTags]
	}
	var items []domana.ScoredItem
	for _, wc := range ranked {
		if wc.Count <= 1 {
			continue
		}
		items = append(items, domana.ScoredItem{
			Subject: wc.Word,
			Score:   float64(wc.Count) / float64(len(filtered)),
			Signals: []string{wc.Word},
		})
	}
	return items
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
