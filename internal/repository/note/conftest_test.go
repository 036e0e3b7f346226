package note

import (
	"context"
	"errors"
	"testing"
	"time"

	domnote "github.com/kailas-cloud/takenote/internal/domain/note"
)

// memStore is an in-memory stand-in for the hash and set commands.
type memStore struct {
	hashes map[string]map[string]string
	sets   map[string][]string
	err    error
}

func newMemStore() *memStore {
	return &memStore{hashes: make(map[string]map[string]string), sets: make(map[string][]string)}
}

func (m *memStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.err != nil {
		return m.err
	}
	h := m.hashes[key]
	if h == nil {
		h = make(map[string]string)
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *memStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hashes[key], nil
}

func (m *memStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		h, err := m.HGetAll(ctx, k)
		if err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}

func (m *memStore) SAdd(_ context.Context, key string, members ...string) error {
	if m.err != nil {
		return m.err
	}
	for _, mem := range members {
		found := false
		for _, existing := range m.sets[key] {
			if existing == mem {
				found = true
				break
			}
		}
		if !found {
			m.sets[key] = append(m.sets[key], mem)
		}
	}
	return nil
}

func (m *memStore) SMembers(_ context.Context, key string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sets[key], nil
}

var errStore = errors.New("store down")

var baseTime = time.Date(2026, 5, 10, 8, 30, 0, 123456789, time.UTC)

func mustNote(t *testing.T, id, userID string, offset time.Duration) domnote.Note {
	t.Helper()
	n, err := domnote.New(id, userID, "Title "+id, "Content of "+id, false, baseTime.Add(offset))
	if err != nil {
		t.Fatalf("new note: %v", err)
	}
	return n
}

// repository is what both backends implement.
type repository interface {
	Save(ctx context.Context, n *domnote.Note) error
	Get(ctx context.Context, userID, id string) (domnote.Note, error)
	ListByUser(ctx context.Context, userID string) ([]domnote.Note, error)
}
