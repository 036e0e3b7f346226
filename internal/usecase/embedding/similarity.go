// Package embedding serves the sentence-similarity task from an embedding
// model: the query and every candidate are embedded and compared by cosine.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/takenote/internal/domain"
)

// DefaultMaxAPIBatchSize caps the number of texts sent in one upstream call.
const DefaultMaxAPIBatchSize = 256

// SimilarityProvider implements domain.Provider for TaskSentenceSimilarity
// on top of an Embedder.
type SimilarityProvider struct {
	name     string
	model    string
	embedder domain.Embedder
	logger   *zap.Logger
}

// NewSimilarityProvider wraps embedder, which must embed with model.
func NewSimilarityProvider(name, model string, embedder domain.Embedder, logger *zap.Logger) *SimilarityProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimilarityProvider{name: name, model: model, embedder: embedder, logger: logger}
}

// Infer implements domain.Provider.
func (p *SimilarityProvider) Infer(ctx context.Context, req domain.InferenceRequest) (domain.InferenceResponse, error) {
	if req.Task != domain.TaskSentenceSimilarity {
		return domain.InferenceResponse{}, domain.NewProviderError(p.name, req.Model, domain.KindUnsupported,
			fmt.Errorf("task %q", req.Task))
	}
	if req.Model != p.model {
		return domain.InferenceResponse{}, domain.NewProviderError(p.name, req.Model, domain.KindUnsupported,
			fmt.Errorf("model %q not served (have %q)", req.Model, p.model))
	}
	if len(req.Sentences) == 0 {
		return domain.InferenceResponse{Similarities: []float64{}}, nil
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	start := time.Now()
	texts := make([]string, 0, len(req.Sentences)+1)
	texts = append(texts, req.Inputs)
	texts = append(texts, req.Sentences...)

	vectors, err := p.embedChunked(ctx, texts)
	if err != nil {
		return domain.InferenceResponse{}, p.wrap(req.Model, err)
	}

	source := vectors[0]
	scores := make([]float64, len(req.Sentences))
	for i, v := range vectors[1:] {
		scores[i] = Cosine(source, v)
	}

	p.logger.Debug("Embedding similarity completed",
		zap.String("model", p.model),
		zap.Int("sentences", len(req.Sentences)),
		zap.Duration("duration", time.Since(start)),
	)
	return domain.InferenceResponse{Similarities: scores}, nil
}

// embedChunked splits texts into chunks of DefaultMaxAPIBatchSize.
func (p *SimilarityProvider) embedChunked(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for offset := 0; offset < len(texts); offset += DefaultMaxAPIBatchSize {
		end := min(offset+DefaultMaxAPIBatchSize, len(texts))
		res, err := domain.EmbedAll(ctx, p.embedder, texts[offset:end])
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", offset, err)
		}
		if len(res.Embeddings) != end-offset {
			return nil, domain.NewProviderError(p.name, p.model, domain.KindMalformed,
				fmt.Errorf("got %d vectors for %d texts", len(res.Embeddings), end-offset))
		}
		out = append(out, res.Embeddings...)
	}
	return out, nil
}

func (p *SimilarityProvider) wrap(model string, err error) error {
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		return err
	}
	kind := domain.KindUnreachable
	if errors.Is(err, context.DeadlineExceeded) {
		kind = domain.KindTimeout
	}
	return domain.NewProviderError(p.name, model, kind, err)
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a
// zero vector or their dimensions differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
