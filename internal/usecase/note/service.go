package note

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/takenote/internal/domain"
	domana "github.com/kailas-cloud/takenote/internal/domain/analysis"
	domnote "github.com/kailas-cloud/takenote/internal/domain/note"
)

// Page is one page of a user's notes.
type Page struct {
	Notes []domnote.Note
	Total int
	Page  int
	Size  int
}

// Service handles note CRUD and analysis of stored notes.
// Every operation is scoped to the owning user.
type Service struct {
	repo            Repository
	analyzer        Analyzer
	now             func() time.Time
	newID           func() string
	defaultPageSize int
	maxPageSize     int
}

// New creates a note service.
func New(repo Repository, analyzer Analyzer) *Service {
	return &Service{
		repo:            repo,
		analyzer:        analyzer,
		now:             time.Now,
		newID:           uuid.NewString,
		defaultPageSize: 50,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Create validates and stores a new note.
func (s *Service) Create(ctx context.Context, userID, title, content string, pinned bool) (domnote.Note, error) {
	n, err := domnote.New(s.newID(), userID, title, content, pinned, s.now())
	if err != nil {
		return domnote.Note{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err := s.repo.Save(ctx, &n); err != nil {
		return domnote.Note{}, fmt.Errorf("save note: %w", err)
	}
	return n, nil
}

// Get returns a live note. Soft-deleted notes are reported as not found.
func (s *Service) Get(ctx context.Context, userID, id string) (domnote.Note, error) {
	n, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return domnote.Note{}, fmt.Errorf("get note: %w", err)
	}
	if n.Deleted() {
		return domnote.Note{}, fmt.Errorf("get note %s: %w", id, domain.ErrNoteNotFound)
	}
	return n, nil
}

// List returns one page of live notes, newest first. A non-empty search
// keeps only notes whose title or content contains it.
func (s *Service) List(ctx context.Context, userID string, page, size int, search string) (Page, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = s.defaultPageSize
	}
	if size > s.maxPageSize {
		size = s.maxPageSize
	}

	notes, err := s.live(ctx, userID, search)
	if err != nil {
		return Page{}, err
	}

	total := len(notes)
	if page-1 > total/size {
		return Page{Notes: []domnote.Note{}, Total: total, Page: page, Size: size}, nil
	}
	start := min((page-1)*size, total)
	end := min(start+size, total)
	return Page{Notes: notes[start:end], Total: total, Page: page, Size: size}, nil
}

// Search returns up to limit live notes matching query, newest first.
func (s *Service) Search(ctx context.Context, userID, query string, limit int) ([]domnote.Note, error) {
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	notes, err := s.live(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	if len(notes) > limit {
		notes = notes[:limit]
	}
	return notes, nil
}

// Update applies a partial update. An empty patch returns the note unchanged.
func (s *Service) Update(ctx context.Context, userID, id string, p domnote.Patch) (domnote.Note, error) {
	n, err := s.Get(ctx, userID, id)
	if err != nil {
		return domnote.Note{}, err
	}
	if p.IsEmpty() {
		return n, nil
	}
	updated, err := n.Apply(p, s.now())
	if err != nil {
		return domnote.Note{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return s.save(ctx, updated)
}

// Delete soft-deletes a note.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	n, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	_, err = s.save(ctx, n.SoftDelete(s.now()))
	return err
}

// Restore brings back a soft-deleted note. Restoring a live note is a no-op.
func (s *Service) Restore(ctx context.Context, userID, id string) (domnote.Note, error) {
	n, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return domnote.Note{}, fmt.Errorf("get note: %w", err)
	}
	if !n.Deleted() {
		return n, nil
	}
	return s.save(ctx, n.Restore(s.now()))
}

// TogglePin flips the pinned flag of a live note.
func (s *Service) TogglePin(ctx context.Context, userID, id string) (domnote.Note, error) {
	n, err := s.Get(ctx, userID, id)
	if err != nil {
		return domnote.Note{}, err
	}
	return s.save(ctx, n.TogglePin(s.now()))
}

// Analyze runs the full analysis over a stored note's content.
func (s *Service) Analyze(ctx context.Context, userID, id string) (domana.Aggregate, error) {
	n, err := s.Get(ctx, userID, id)
	if err != nil {
		return domana.Aggregate{}, err
	}
	return s.analyzer.ProcessNote(ctx, n.Content()), nil
}

// SemanticSearch ranks the user's live notes against query.
func (s *Service) SemanticSearch(ctx context.Context, userID, query string) (domana.SearchResult, error) {
	notes, err := s.live(ctx, userID, "")
	if err != nil {
		return domana.SearchResult{}, err
	}
	refs := make([]domana.NoteRef, len(notes))
	for i := range notes {
		refs[i] = domana.NoteRef{ID: notes[i].ID(), Title: notes[i].Title(), Content: notes[i].Content()}
	}
	return s.analyzer.Search(ctx, query, refs), nil
}

func (s *Service) save(ctx context.Context, n domnote.Note) (domnote.Note, error) {
	if err := s.repo.Save(ctx, &n); err != nil {
		return domnote.Note{}, fmt.Errorf("save note: %w", err)
	}
	return n, nil
}

// live returns the user's non-deleted notes matching filter, newest first.
func (s *Service) live(ctx context.Context, userID, filter string) ([]domnote.Note, error) {
	all, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	notes := make([]domnote.Note, 0, len(all))
	for i := range all {
		if all[i].Deleted() {
			continue
		}
		if filter != "" && !all[i].Matches(filter) {
			continue
		}
		notes = append(notes, all[i])
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt().After(notes[j].CreatedAt())
	})
	return notes, nil
}
