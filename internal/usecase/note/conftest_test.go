package note

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kailas-cloud/takenote/internal/domain"
	domana "github.com/kailas-cloud/takenote/internal/domain/analysis"
	domnote "github.com/kailas-cloud/takenote/internal/domain/note"
)

// --- Mocks ---

type mockRepo struct {
	mu      sync.Mutex
	notes   map[string]domnote.Note
	saveErr error
	listErr error
	saves   int
}

func newMockRepo() *mockRepo {
	return &mockRepo{notes: make(map[string]domnote.Note)}
}

func (m *mockRepo) key(userID, id string) string { return userID + "/" + id }

func (m *mockRepo) Save(_ context.Context, n *domnote.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.notes[m.key(n.UserID(), n.ID())] = *n
	return nil
}

func (m *mockRepo) Get(_ context.Context, userID, id string) (domnote.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[m.key(userID, id)]
	if !ok {
		return domnote.Note{}, domain.ErrNoteNotFound
	}
	return n, nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID string) ([]domnote.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domnote.Note
	for _, n := range m.notes {
		if n.UserID() == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

type mockAnalyzer struct {
	processed []string
	searched  []domana.NoteRef
}

func (m *mockAnalyzer) ProcessNote(_ context.Context, content string) domana.Aggregate {
	m.processed = append(m.processed, content)
	return domana.Aggregate{Summary: content, ProcessingStatus: domana.StatusCompleted}
}

func (m *mockAnalyzer) Search(_ context.Context, query string, notes []domana.NoteRef) domana.SearchResult {
	m.searched = notes
	return domana.SearchResult{Query: query, Results: []domana.SearchHit{}}
}

// --- Helpers ---

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestService() (*Service, *mockRepo, *mockAnalyzer) {
	repo := newMockRepo()
	an := &mockAnalyzer{}
	svc := New(repo, an)
	clock := &testClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	svc.now = clock.now
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("note-%d", seq)
	}
	return svc, repo, an
}
