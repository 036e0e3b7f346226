// Package openai is an embeddings client for OpenAI-compatible APIs.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/takenote/internal/domain"
	"github.com/kailas-cloud/takenote/internal/metrics"
)

// ProviderName identifies this provider in candidate lists and metrics.
const ProviderName = "openai"

const embeddingTask = "embedding"

// Embedder is an embedding provider using the OpenAI-compatible API.
type Embedder struct {
	client  *openai.Client
	model   openai.EmbeddingModel
	timeout time.Duration
	logger  *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   openai.EmbeddingModel(cfg.Model),
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Model returns the configured embedding model.
func (e *Embedder) Model() string { return string(e.model) }

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: res.Embeddings[0], TotalTokens: res.TotalTokens}, nil
}

// BatchEmbed implements domain.BatchEmbedder. Vectors come back in input order.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	model := string(e.model)
	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          texts,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	duration := time.Since(start)

	if err != nil {
		perr := parseAPIError(model, err)
		e.recordError(model, domain.ProviderErrorKindOf(perr))
		e.logger.Debug("Embedding request failed", zap.String("model", model), zap.Error(perr))
		return domain.BatchEmbeddingResult{}, perr
	}
	if len(resp.Data) != len(texts) {
		e.recordError(model, domain.KindMalformed)
		return domain.BatchEmbeddingResult{}, domain.NewProviderError(ProviderName, model, domain.KindMalformed,
			fmt.Errorf("got %d embeddings for %d inputs", len(resp.Data), len(texts)))
	}

	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	out := domain.BatchEmbeddingResult{
		Embeddings:  make([][]float32, len(resp.Data)),
		TotalTokens: resp.Usage.TotalTokens,
	}
	for i, d := range resp.Data {
		out.Embeddings[i] = d.Embedding
	}

	metrics.InferenceRequestsTotal.WithLabelValues(ProviderName, model, embeddingTask, "success").Inc()
	metrics.InferenceRequestDuration.WithLabelValues(ProviderName, model, embeddingTask).Observe(duration.Seconds())
	return out, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (e *Embedder) recordError(model string, kind domain.ProviderErrorKind) {
	metrics.InferenceRequestsTotal.WithLabelValues(ProviderName, model, embeddingTask, "error").Inc()
	metrics.InferenceErrorsTotal.WithLabelValues(ProviderName, model, string(kind)).Inc()
}

// parseAPIError maps go-openai errors onto provider failure kinds.
func parseAPIError(model string, err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return &domain.ProviderError{
			Provider: ProviderName, Model: model, Kind: domain.KindBadStatus,
			StatusCode: reqErr.HTTPStatusCode, Err: errors.New(detail),
		}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &domain.ProviderError{
			Provider: ProviderName, Model: model, Kind: domain.KindBadStatus,
			StatusCode: apiErr.HTTPStatusCode, Err: errors.New(apiErr.Message),
		}
	}

	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return domain.NewProviderError(ProviderName, model, domain.KindTimeout, err)
	}
	return domain.NewProviderError(ProviderName, model, domain.KindUnreachable, err)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
