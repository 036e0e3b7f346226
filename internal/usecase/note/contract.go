package note

import (
	"context"

	domana "github.com/kailas-cloud/takenote/internal/domain/analysis"
	domnote "github.com/kailas-cloud/takenote/internal/domain/note"
)

// Repository defines the storage contract for notes.
// Get and ListByUser include soft-deleted notes; filtering is the service's job.
type Repository interface {
	Save(ctx context.Context, n *domnote.Note) error
	Get(ctx context.Context, userID, id string) (domnote.Note, error)
	ListByUser(ctx context.Context, userID string) ([]domnote.Note, error)
}

// Analyzer runs the analysis engine over note text.
type Analyzer interface {
	ProcessNote(ctx context.Context, content string) domana.Aggregate
	Search(ctx context.Context, query string, notes []domana.NoteRef) domana.SearchResult
}
