// Package huggingface is an inference provider backed by the Hugging Face
// Inference API: one POST to <base_url>/<model> per call.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/takenote/internal/domain"
	"github.com/kailas-cloud/takenote/internal/lexical"
	"github.com/kailas-cloud/takenote/internal/metrics"
	"github.com/kailas-cloud/takenote/internal/version"
)

// ProviderName identifies this provider in candidate lists and metrics.
const ProviderName = "huggingface"

// DefaultBaseURL is the public serverless inference endpoint.
const DefaultBaseURL = "https://api-inference.huggingface.co/models"

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 8 << 20
	// maxLoggedBody caps error bodies in debug logs, in characters.
	maxLoggedBody = 200
)

// Config holds the provider settings. An empty APIKey means anonymous access.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client calls the Hugging Face Inference API. It never retries.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	logger  *zap.Logger
}

// New creates a Client.
func New(cfg *Config) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		http:    cfg.HTTPClient,
		logger:  cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

type request struct {
	Inputs     any            `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type similarityInputs struct {
	SourceSentence string   `json:"source_sentence"`
	Sentences      []string `json:"sentences"`
}

type summaryItem struct {
	SummaryText string `json:"summary_text"`
}

// Infer implements domain.Provider.
func (c *Client) Infer(ctx context.Context, req domain.InferenceRequest) (domain.InferenceResponse, error) {
	body, err := buildPayload(req)
	if err != nil {
		return domain.InferenceResponse{}, c.fail(req, domain.KindUnsupported, err)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+req.Model, bytes.NewReader(body))
	if err != nil {
		return domain.InferenceResponse{}, c.fail(req, domain.KindUnreachable, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", version.UserAgent())
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		kind := domain.KindUnreachable
		if isTimeout(err) {
			kind = domain.KindTimeout
		}
		return domain.InferenceResponse{}, c.fail(req, kind, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		kind := domain.KindUnreachable
		if isTimeout(err) {
			kind = domain.KindTimeout
		}
		return domain.InferenceResponse{}, c.fail(req, kind, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("Inference API returned error status",
			zap.String("model", req.Model),
			zap.Int("status", resp.StatusCode),
			zap.String("body", lexical.Truncate(string(raw), maxLoggedBody)),
		)
		metrics.InferenceRequestsTotal.WithLabelValues(ProviderName, req.Model, string(req.Task), "error").Inc()
		metrics.InferenceErrorsTotal.WithLabelValues(ProviderName, req.Model, string(domain.KindBadStatus)).Inc()
		return domain.InferenceResponse{}, domain.NewStatusError(ProviderName, req.Model, resp.StatusCode)
	}

	out, err := decode(req.Task, raw)
	if err != nil {
		return domain.InferenceResponse{}, c.fail(req, domain.KindMalformed, err)
	}

	metrics.InferenceRequestsTotal.WithLabelValues(ProviderName, req.Model, string(req.Task), "success").Inc()
	metrics.InferenceRequestDuration.WithLabelValues(ProviderName, req.Model, string(req.Task)).Observe(duration.Seconds())
	return out, nil
}

// HealthCheck reports whether the endpoint answers at all. Any HTTP
// response below 500 counts as reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("inference endpoint: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("inference endpoint status %d: %w", resp.StatusCode, domain.ErrProviderUnreachable)
	}
	return nil
}

func (c *Client) fail(req domain.InferenceRequest, kind domain.ProviderErrorKind, err error) error {
	metrics.InferenceRequestsTotal.WithLabelValues(ProviderName, req.Model, string(req.Task), "error").Inc()
	metrics.InferenceErrorsTotal.WithLabelValues(ProviderName, req.Model, string(kind)).Inc()
	c.logger.Debug("Inference call failed",
		zap.String("model", req.Model),
		zap.String("task", string(req.Task)),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
	return domain.NewProviderError(ProviderName, req.Model, kind, err)
}

func buildPayload(req domain.InferenceRequest) ([]byte, error) {
	var p request
	switch req.Task {
	case domain.TaskSummarization, domain.TaskTextClassification, domain.TaskTokenClassification:
		p = request{Inputs: req.Inputs, Parameters: req.Parameters}
	case domain.TaskSentenceSimilarity:
		sentences := req.Sentences
		if sentences == nil {
			sentences = []string{}
		}
		p = request{Inputs: similarityInputs{SourceSentence: req.Inputs, Sentences: sentences}}
	default:
		return nil, fmt.Errorf("task %q: %w", req.Task, domain.ErrUnsupportedTask)
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return b, nil
}

func decode(task domain.Task, raw []byte) (domain.InferenceResponse, error) {
	var out domain.InferenceResponse
	switch task {
	case domain.TaskSummarization:
		var items []summaryItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return out, fmt.Errorf("decode summaries: %w", err)
		}
		for _, it := range items {
			out.Summaries = append(out.Summaries, it.SummaryText)
		}
	case domain.TaskTextClassification:
		labels, err := decodeLabels(raw)
		if err != nil {
			return out, err
		}
		out.Labels = labels
	case domain.TaskTokenClassification:
		if err := json.Unmarshal(raw, &out.Entities); err != nil {
			return out, fmt.Errorf("decode entities: %w", err)
		}
	case domain.TaskSentenceSimilarity:
		scores, err := decodeScores(raw)
		if err != nil {
			return out, err
		}
		out.Similarities = scores
	default:
		return out, fmt.Errorf("task %q: %w", task, domain.ErrUnsupportedTask)
	}
	return out, nil
}

// decodeLabels accepts both [{label,score}] and [[{label,score}]].
func decodeLabels(raw []byte) ([]domain.Label, error) {
	var flat []domain.Label
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}
	var nested [][]domain.Label
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	if len(nested) == 0 {
		return nil, nil
	}
	return nested[0], nil
}

// decodeScores accepts both [f, ...] and [[f, ...]].
func decodeScores(raw []byte) ([]float64, error) {
	var flat []float64
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}
	var nested [][]float64
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, fmt.Errorf("decode similarities: %w", err)
	}
	if len(nested) == 0 {
		return nil, nil
	}
	return nested[0], nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

