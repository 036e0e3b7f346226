package embcache

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/takenote/internal/db"
	"github.com/kailas-cloud/takenote/internal/domain"
)

// mockEmbedder returns one vector per text, derived from its length.
type mockEmbedder struct {
	tokensPerText int
	err           error
	batchCalls    int
	batchTexts    []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text))}, TotalTokens: m.tokensPerText}, nil
}

func (m *mockEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	m.batchTexts = append(m.batchTexts, texts...)
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	out := domain.BatchEmbeddingResult{}
	for _, t := range texts {
		r, _ := m.Embed(ctx, t)
		out.Embeddings = append(out.Embeddings, r.Embedding)
		out.TotalTokens += r.TotalTokens
	}
	return out, nil
}

// memStore is an in-memory store.
type memStore struct {
	data map[string][]byte
	gets int
	sets int
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.gets++
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.sets++
	m.data[key] = value
	return nil
}

func newTestCache(t *testing.T, inner *mockEmbedder, model string) (*CachedEmbedder, *memStore) {
	t.Helper()
	ms := &memStore{data: map[string][]byte{}}
	return New(inner, ms, "takenote:", model, nil, zap.NewNop()), ms
}
