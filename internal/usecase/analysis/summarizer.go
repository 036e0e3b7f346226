package analysis

import (
	"context"
	"sort"
	"strings"

	"github.com/kailas-cloud/takenote/internal/domain"
	domana "github.com/kailas-cloud/takenote/internal/domain/analysis"
	"github.com/kailas-cloud/takenote/internal/lexical"
)

// Summarize returns a summary of content. Short content is returned as is,
// longer content goes through the summarization candidates and falls back
// to sentence scoring.
func (e *Engine) Summarize(ctx context.Context, content string) domana.Summary {
	n := lexical.Len(content)
	if n < summaryBypassLen {
		res := domana.NewSummary(content, n, n, domana.ModelShortContent, domana.TierBypass)
		observe(stageSummarize, res.Tier)
		return res
	}

	out := Run(ctx, e.providers, Chain[string]{
		Stage:      stageSummarize,
		Candidates: e.models.Summarization,
		Request: func(Candidate) domain.InferenceRequest {
			return domain.InferenceRequest{
				Task:   domain.TaskSummarization,
				Inputs: lexical.Truncate(content, summaryInputLen),
				Parameters: map[string]any{
					"max_length": 150,
					"min_length": 30,
					"do_sample":  false,
				},
				Timeout: e.timeout,
			}
		},
		Accept:         acceptSummary,
		Heuristic:      func() string { return scoreSentences(content) },
		HeuristicModel: domana.ModelSentenceScoring,
	}, e.logger)

	res := domana.NewSummary(out.Value, n, lexical.Len(out.Value), out.Model, out.Tier)
	res.Error = out.ErrMessage()
	observe(stageSummarize, res.Tier)
	return res
}

func acceptSummary(_ Candidate, resp domain.InferenceResponse) (string, bool) {
	if len(resp.Summaries) == 0 {
		return "", false
	}
	text := strings.TrimSpace(resp.Summaries[0])
	if lexical.Len(text) <= minSummaryLen {
		return "", false
	}
	return text, true
}

type scoredSentence struct {
	text  string
	score float64
}

// scoreSentences picks the highest scoring sentences of content. A sentence
// scores 0.1 per character plus twice the corpus frequency of each of its
// words longer than three characters. Content with two sentences or fewer
// is returned verbatim.
func scoreSentences(content string) string {
	sentences := lexical.Sentences(content)
	if len(sentences) <= 2 {
		return content
	}

	words := make([][]string, len(sentences))
	freq := make(map[string]int)
	for i, s := range sentences {
		for _, w := range lexical.Words(s) {
			if lexical.Len(w) > sentenceWordMinLen {
				words[i] = append(words[i], w)
				freq[w]++
			}
		}
	}

	ranked := make([]scoredSentence, len(sentences))
	for i, s := range sentences {
		score := sentenceLenWeight * float64(lexical.Len(s))
		for _, w := range words[i] {
			score += sentenceWordWeight * float64(freq[w])
		}
		ranked[i] = scoredSentence{text: s, score: score}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	k := min(summarySentenceMax, len(sentences)/2)
	parts := make([]string, k)
	for i := range k {
		parts[i] = ranked[i].text
	}
	summary := strings.Join(parts, ". ") + "."

	orig := float64(lexical.Len(content))
	if float64(lexical.Len(summary)) > summaryMaxShare*orig {
		summary = lexical.Truncate(summary, int(summaryCutShare*orig)) + "..."
	}
	return summary
}
