// Package analysis defines the results produced by the text-analysis engine.
package analysis

// Tier identifies which fallback level produced a result.
type Tier string

const (
	// TierRemote means an inference provider produced the result.
	TierRemote Tier = "remote"
	// TierLocal means a local heuristic produced the result.
	TierLocal Tier = "local"
	// TierBypass means the input was too short to analyze.
	TierBypass Tier = "bypass"
	// TierDegraded means the stage failed and a placeholder was substituted.
	TierDegraded Tier = "degraded"
)

// Status is the outcome of a multi-stage run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Model tags for results not produced by a remote model.
const (
	ModelShortContent    = "fallback_short_content"
	ModelShortQuery      = "fallback_short_query"
	ModelSentenceScoring = "intelligent_fallback"
	ModelKeywords        = "fallback_keywords"
	ModelKeywordMatching = "enhanced_keyword_matching"
	ModelRuleBased       = "rule_based"
	ModelDefault         = "default"
	ModelDegraded        = "fallback"
)

// Category names used when nothing more specific applies.
const (
	CategoryGeneral      = "General"
	CategoryGeneralLabel = "general"
)

// NoteRef is the read-only view of a note the engine works on.
type NoteRef struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Summary is the Summarizer result. Lengths are in characters. Error holds
// the last remote failure when the local heuristic had to step in; the same
// holds for Classification and Tags.
type Summary struct {
	Summary          string  `json:"summary"`
	Model            string  `json:"model"`
	Tier             Tier    `json:"tier"`
	OriginalLength   int     `json:"original_length"`
	SummaryLength    int     `json:"summary_length"`
	CompressionRatio float64 `json:"compression_ratio"`
	Error            string  `json:"error,omitempty"`
}

// NewSummary fills in the length fields for text summarized from original.
func NewSummary(text string, originalLength, summaryLength int, model string, tier Tier) Summary {
	ratio := 1.0
	if originalLength > 0 {
		ratio = float64(summaryLength) / float64(originalLength)
	}
	return Summary{
		Summary:          text,
		Model:            model,
		Tier:             tier,
		OriginalLength:   originalLength,
		SummaryLength:    summaryLength,
		CompressionRatio: ratio,
	}
}

// Category is the rule-based Categorizer result. It makes no remote calls
// and so carries no error.
type Category struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Model      string  `json:"model"`
	Tier       Tier    `json:"tier"`
}

// Classification is the remote-capable categorizer result: up to three labels.
type Classification struct {
	Categories       []string  `json:"categories"`
	ConfidenceScores []float64 `json:"confidence_scores"`
	Model            string    `json:"model"`
	Tier             Tier      `json:"tier"`
	Error            string    `json:"error,omitempty"`
}

// Tags is the TagExtractor result.
type Tags struct {
	Tags             []string  `json:"tags"`
	ConfidenceScores []float64 `json:"confidence_scores"`
	Model            string    `json:"model"`
	Tier             Tier      `json:"tier"`
	Error            string    `json:"error,omitempty"`
}

// ScoredItem is a ranked subject (a word or a note id) with the tokens
// that contributed to its score. The local heuristics rank ScoredItems
// before shaping them into Tags or SearchHits.
type ScoredItem struct {
	Subject string
	Score   float64
	Signals []string
}

// SearchHit is one ranked note.
type SearchHit struct {
	NoteID         string   `json:"note_id"`
	Title          string   `json:"title"`
	Score          float64  `json:"similarity_score"`
	MatchedTerms   []string `json:"matched_words,omitempty"`
	MatchedContent string   `json:"matched_content,omitempty"`
	Model          string   `json:"model"`
}

// SearchResult is the SearchRanker envelope. TotalMatches counts every hit
// over the threshold, before truncation.
type SearchResult struct {
	Query        string      `json:"query"`
	Results      []SearchHit `json:"results"`
	TotalMatches int         `json:"total_matches"`
	Model        string      `json:"model"`
	Tier         Tier        `json:"tier"`
}

// Aggregate is the combined result of one processNote run.
// All fields are populated even when stages fail.
type Aggregate struct {
	Summary          string    `json:"summary"`
	SummaryModel     string    `json:"summary_model"`
	Categories       []string  `json:"categories"`
	CategoryScores   []float64 `json:"category_scores"`
	CategoryModel    string    `json:"category_model"`
	Tags             []string  `json:"tags"`
	TagScores        []float64 `json:"tag_scores"`
	TagModel         string    `json:"tag_model"`
	ProcessingStatus Status    `json:"processing_status"`
	Error            string    `json:"error,omitempty"`
}
