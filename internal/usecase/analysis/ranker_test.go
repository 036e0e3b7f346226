package analysis

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/kailas-cloud/takenote/internal/domain"
	domana "github.com/kailas-cloud/takenote/internal/domain/analysis"
)

func TestSearch_KeywordMatching(t *testing.T) {
	notes := []domana.NoteRef{
		{ID: "n1", Title: "Meeting Notes - Project Planning", Content: "Discussed the project timeline in the meeting."},
		{ID: "n2", Title: "Groceries", Content: "Buy apples and oranges"},
	}
	e := newTestEngine(newScriptedProvider(), Models{})

	res := e.Search(context.Background(), "project meeting", notes)

	if len(res.Results) != 1 || res.Results[0].NoteID != "n1" {
		t.Fatalf("expected only n1, got %+v", res.Results)
	}
	hit := res.Results[0]
	// overlap 1.0 + title boost 1.0 already clear the threshold.
	if hit.Score < 2 {
		t.Errorf("expected score >= 2, got %v", hit.Score)
	}
	for _, term := range []string{"project", "meeting"} {
		if !slices.Contains(hit.MatchedTerms, term) {
			t.Errorf("expected %q in matched terms %v", term, hit.MatchedTerms)
		}
	}
	if res.Model != domana.ModelKeywordMatching || hit.Model != domana.ModelKeywordMatching {
		t.Errorf("unexpected model %q / %q", res.Model, hit.Model)
	}
	if res.TotalMatches != 1 {
		t.Errorf("TotalMatches = %d, want 1", res.TotalMatches)
	}
}

func TestKeywordHits_Signals(t *testing.T) {
	tests := []struct {
		name  string
		query string
		note  domana.NoteRef
		want  float64
	}{
		{
			name:  "content overlap only",
			query: "apples pears",
			note:  domana.NoteRef{ID: "a", Title: "List", Content: "apples"},
			// overlap 1/2, fuzzy apples~apples 0.4
			want: 0.9,
		},
		{
			name:  "title boost",
			query: "list",
			note:  domana.NoteRef{ID: "a", Title: "List", Content: "things"},
			// overlap 1, title 0.5, substring 0.8
			want: 2.3,
		},
		{
			name:  "disjoint",
			query: "zebra",
			note:  domana.NoteRef{ID: "a", Title: "Groceries", Content: "Buy milk"},
			want:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := keywordHits(tt.query, []domana.NoteRef{tt.note})
			var got float64
			if len(hits) == 1 {
				got = hits[0].Score
			}
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearch_ShortQueryBypass(t *testing.T) {
	p := newScriptedProvider()
	e := newTestEngine(p, Models{Similarity: candidates("sim")})

	res := e.Search(context.Background(), "ab", []domana.NoteRef{{ID: "n1", Title: "ab", Content: "ab"}})

	if len(res.Results) != 0 || res.Results == nil {
		t.Errorf("expected empty results, got %v", res.Results)
	}
	if res.Model != domana.ModelShortQuery || res.Tier != domana.TierBypass {
		t.Errorf("got model %q tier %q", res.Model, res.Tier)
	}
	if p.totalCalls() != 0 {
		t.Errorf("expected no calls, got %d", p.totalCalls())
	}
}

func TestSearch_Remote(t *testing.T) {
	notes := []domana.NoteRef{
		{ID: "n1", Title: "One", Content: strings.Repeat("x", 600)},
		{ID: "n2", Title: "Two", Content: "unrelated"},
		{ID: "n3", Title: "Three", Content: "somewhat related"},
	}
	p := newScriptedProvider().succeed("sim", domain.InferenceResponse{Similarities: []float64{0.5, 0.1, 0.9}})
	e := newTestEngine(p, Models{Similarity: candidates("sim")})

	res := e.Search(context.Background(), "related things", notes)

	if len(res.Results) != 2 {
		t.Fatalf("expected 2 hits, got %+v", res.Results)
	}
	if res.Results[0].NoteID != "n3" || res.Results[1].NoteID != "n1" {
		t.Errorf("unexpected order %s, %s", res.Results[0].NoteID, res.Results[1].NoteID)
	}
	if res.Model != "sim" || res.Tier != domana.TierRemote || res.Results[0].Model != "sim" {
		t.Errorf("got model %q tier %q", res.Model, res.Tier)
	}
	if want := "Three somewhat related..."; res.Results[0].MatchedContent != want {
		t.Errorf("MatchedContent = %q, want %q", res.Results[0].MatchedContent, want)
	}
	if n := len(res.Results[1].MatchedContent); n != 103 {
		t.Errorf("expected 100 characters plus ellipsis, got %d", n)
	}

	req := p.lastRequest()
	if req.Inputs != "related things" || len(req.Sentences) != 3 {
		t.Errorf("unexpected request %+v", req)
	}
	if n := len(req.Sentences[0]); n != 500 {
		t.Errorf("expected note text capped at 500, got %d", n)
	}
}

func TestSearch_RemoteRejectedFallsThrough(t *testing.T) {
	notes := []domana.NoteRef{
		{ID: "n1", Title: "Project meeting", Content: "agenda"},
		{ID: "n2", Title: "Other", Content: "nothing"},
	}
	p := newScriptedProvider().
		succeed("short", domain.InferenceResponse{Similarities: []float64{0.9}}).
		succeed("low", domain.InferenceResponse{Similarities: []float64{0.2, 0.3}})
	e := newTestEngine(p, Models{Similarity: candidates("short", "low")})

	res := e.Search(context.Background(), "project meeting", notes)

	if res.Model != domana.ModelKeywordMatching {
		t.Errorf("expected keyword fallback, got %q", res.Model)
	}
	if len(res.Results) != 1 || res.Results[0].NoteID != "n1" {
		t.Errorf("unexpected results %+v", res.Results)
	}
	if p.totalCalls() != 2 {
		t.Errorf("expected 2 calls, got %d", p.totalCalls())
	}
}

func TestSearch_TruncatesToTen(t *testing.T) {
	var notes []domana.NoteRef
	for i := range 12 {
		notes = append(notes, domana.NoteRef{ID: fmt.Sprintf("n%02d", i), Title: "project meeting", Content: "agenda"})
	}
	e := newTestEngine(newScriptedProvider(), Models{})

	res := e.Search(context.Background(), "project meeting", notes)

	if len(res.Results) != 10 || res.TotalMatches != 12 {
		t.Fatalf("got %d results of %d", len(res.Results), res.TotalMatches)
	}
	for i, h := range res.Results {
		if want := fmt.Sprintf("n%02d", i); h.NoteID != want {
			t.Errorf("result %d = %s, want %s (stable order on ties)", i, h.NoteID, want)
		}
	}
}

func TestSearch_NoNotesSkipsRemote(t *testing.T) {
	p := newScriptedProvider()
	res := newTestEngine(p, Models{Similarity: candidates("sim")}).Search(context.Background(), "anything", nil)

	if p.totalCalls() != 0 {
		t.Errorf("expected no calls, got %d", p.totalCalls())
	}
	if res.Results == nil || len(res.Results) != 0 || res.TotalMatches != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestScoreNotes_OneItemPerNote(t *testing.T) {
	notes := []domana.NoteRef{
		{ID: "a", Title: "Groceries", Content: "Buy milk"},
		{ID: "b", Title: "List", Content: "apples"},
	}

	items := scoreNotes("apples", notes)

	if len(items) != 2 || items[0].Subject != "a" || items[1].Subject != "b" {
		t.Fatalf("expected items in note order, got %+v", items)
	}
	if items[0].Score != 0 || len(items[0].Signals) != 0 {
		t.Errorf("disjoint note must score 0, got %+v", items[0])
	}
	if items[1].Score <= searchThreshold || len(items[1].Signals) == 0 || items[1].Signals[0] != "apples" {
		t.Errorf("unexpected matching item %+v", items[1])
	}
}
