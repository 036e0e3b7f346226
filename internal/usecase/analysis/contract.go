package analysis

import (
	"context"

	domana "github.com/kailas-cloud/takenote/internal/domain/analysis"
)

// Summarizer produces a summary of note content.
type Summarizer interface {
	Summarize(ctx context.Context, content string) domana.Summary
}

// Classifier assigns up to three labels to a note.
type Classifier interface {
	Classify(ctx context.Context, title, content string) domana.Classification
}

// Tagger extracts keyword tags from note content.
type Tagger interface {
	ExtractTags(ctx context.Context, content string) domana.Tags
}
