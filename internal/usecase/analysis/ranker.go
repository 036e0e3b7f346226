package analysis

import (
	"context"
	"sort"
	"strings"

	"github.com/kailas-cloud/takenote/internal/domain"
	domana "github.com/kailas-cloud/takenote/internal/domain/analysis"
	"github.com/kailas-cloud/takenote/internal/lexical"
)

// Search ranks notes against query. Similarity candidates score every note
// in one call; without them the notes are ranked by keyword matching.
// Only hits scoring over 0.3 are kept, at most ten.
func (e *Engine) Search(ctx context.Context, query string, notes []domana.NoteRef) domana.SearchResult {
	q := strings.TrimSpace(query)
	if lexical.Len(q) < searchMinQueryLen {
		observe(stageSearch, domana.TierBypass)
		return domana.SearchResult{
			Query:   query,
			Results: []domana.SearchHit{},
			Model:   domana.ModelShortQuery,
			Tier:    domana.TierBypass,
		}
	}

	texts := make([]string, len(notes))
	for i, n := range notes {
		texts[i] = lexical.Truncate(n.Title+" "+n.Content, searchNoteTextLen)
	}
	candidates := e.models.Similarity
	if len(notes) == 0 {
		candidates = nil
	}

	out := Run(ctx, e.providers, Chain[[]domana.SearchHit]{
		Stage:      stageSearch,
		Candidates: candidates,
		Request: func(Candidate) domain.InferenceRequest {
			return domain.InferenceRequest{
				Task:      domain.TaskSentenceSimilarity,
				Inputs:    q,
				Sentences: texts,
				Timeout:   e.timeout,
			}
		},
		Accept: func(c Candidate, resp domain.InferenceResponse) ([]domana.SearchHit, bool) {
			return similarityHits(c, resp, notes, texts)
		},
		Heuristic:      func() []domana.SearchHit { return keywordHits(q, notes) },
		HeuristicModel: domana.ModelKeywordMatching,
	}, e.logger)

	hits := out.Value
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	total := len(hits)
	if len(hits) > maxSearchResults {
		hits = hits[:maxSearchResults]
	}
	if hits == nil {
		hits = []domana.SearchHit{}
	}

	observe(stageSearch, out.Tier)
	return domana.SearchResult{
		Query:        query,
		Results:      hits,
		TotalMatches: total,
		Model:        out.Model,
		Tier:         out.Tier,
	}
}

// similarityHits turns one score per note into hits. A response whose
// length does not match the notes is rejected, as is one with no score over
// the threshold.
func similarityHits(
	c Candidate, resp domain.InferenceResponse, notes []domana.NoteRef, texts []string,
) ([]domana.SearchHit, bool) {
	if len(resp.Similarities) != len(notes) {
		return nil, false
	}
	var hits []domana.SearchHit
	for i, score := range resp.Similarities {
		if score <= searchThreshold {
			continue
		}
		hits = append(hits, domana.SearchHit{
			NoteID:         notes[i].ID,
			Title:          notes[i].Title,
			Score:          score,
			MatchedContent: lexical.Truncate(texts[i], matchedContentLen) + "...",
			Model:          c.Model,
		})
	}
	return hits, len(hits) > 0
}

// keywordHits keeps the notes whose keyword score is over the threshold.
func keywordHits(query string, notes []domana.NoteRef) []domana.SearchHit {
	var hits []domana.SearchHit
	for i, item := range scoreNotes(query, notes) {
		if item.Score <= searchThreshold {
			continue
		}
		hits = append(hits, domana.SearchHit{
			NoteID:       item.Subject,
			Title:        notes[i].Title,
			Score:        item.Score,
			MatchedTerms: item.Signals,
			Model:        domana.ModelKeywordMatching,
		})
	}
	return hits
}

// scoreNotes returns one item per note, in note order, scored as the sum of
// four signals:
//
//   - share of query tokens found in the note
//   - 0.5 per query token found in the title
//   - 0.4 per pair of long query/note tokens that contain each other or are
//     more than 0.8 similar
//   - 0.8 when the whole query appears in the note
//
// Identical long tokens count in both the first and third signal.
func scoreNotes(query string, notes []domana.NoteRef) []domana.ScoredItem {
	queryTokens := lexical.Unique(lexical.Tokenize(query, 2))
	phrase := lexical.Normalize(query)

	items := make([]domana.ScoredItem, len(notes))
	for i, n := range notes {
		text := n.Title + " " + n.Content
		contentTokens := lexical.Unique(lexical.Tokenize(text, 2))
		titleTokens := lexical.Unique(lexical.Tokenize(n.Title, 2))
		contentSet := toSet(contentTokens)
		titleSet := toSet(titleTokens)

		var score float64
		var matched []string

		if len(queryTokens) > 0 {
			overlap := 0
			for _, t := range queryTokens {
				if _, ok := contentSet[t]; ok {
					overlap++
					matched = append(matched, t)
				}
			}
			score += float64(overlap) / float64(len(queryTokens))
		}

		for _, t := range queryTokens {
			if _, ok := titleSet[t]; ok {
				score += titleBoost
				matched = append(matched, t)
			}
		}

		for _, qt := range queryTokens {
			if lexical.Len(qt) <= fuzzyMinLen {
				continue
			}
			for _, ct := range contentTokens {
				if lexical.Len(ct) <= fuzzyMinLen {
					continue
				}
				if strings.Contains(ct, qt) || strings.Contains(qt, ct) ||
					lexical.WordSimilarity(qt, ct) > fuzzySimilarity {
					score += fuzzyPairBonus
					matched = append(matched, ct)
				}
			}
		}

		if phrase != "" && strings.Contains(lexical.Normalize(text), phrase) {
			score += substringBonus
			matched = append(matched, phrase)
		}

		items[i] = domana.ScoredItem{Subject: n.ID, Score: score, Signals: lexical.Unique(matched)}
	}
	return items
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
