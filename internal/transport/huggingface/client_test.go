package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/takenote/internal/domain"
	"github.com/kailas-cloud/takenote/internal/metrics"
	"github.com/kailas-cloud/takenote/internal/version"
)

func TestMain(m *testing.M) {
	metrics.RegisterInferenceMetrics()
	os.Exit(m.Run())
}

func newTestClient(url, key string) *Client {
	return New(&Config{BaseURL: url, APIKey: key, Timeout: time.Second, Logger: zap.NewNop()})
}

func TestInfer_Summarization(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/facebook/bart-large-cnn" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer hf-key" {
			t.Errorf("unexpected auth header: %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("User-Agent") != version.UserAgent() {
			t.Errorf("unexpected user agent: %q", r.Header.Get("User-Agent"))
		}
		var body struct {
			Inputs     string         `json:"inputs"`
			Parameters map[string]any `json:"parameters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Inputs != "long text" || body.Parameters["max_length"] != float64(150) {
			t.Errorf("unexpected body: %+v", body)
		}
		_, _ = w.Write([]byte(`[{"summary_text":"short text here"}]`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, "hf-key")
	resp, err := c.Infer(context.Background(), domain.InferenceRequest{
		Task:       domain.TaskSummarization,
		Model:      "facebook/bart-large-cnn",
		Inputs:     "long text",
		Parameters: map[string]any{"max_length": 150},
	})
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	if len(resp.Summaries) != 1 || resp.Summaries[0] != "short text here" {
		t.Errorf("Summaries = %v", resp.Summaries)
	}
	if calls.Load() != 1 {
		t.Errorf("expected exactly one call, got %d", calls.Load())
	}
}

func TestInfer_AnonymousOmitsAuthorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Authorization"]; ok {
			t.Error("Authorization header must be absent without a key")
		}
		_, _ = w.Write([]byte(`[{"entity_group":"ORG","word":"Acme","score":0.9}]`))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL, "").Infer(context.Background(), domain.InferenceRequest{
		Task: domain.TaskTokenClassification, Model: "dslim/bert-base-NER", Inputs: "Acme Corp",
	})
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	if len(resp.Entities) != 1 || resp.Entities[0].Word != "Acme" || resp.Entities[0].EntityGroup != "ORG" {
		t.Errorf("Entities = %+v", resp.Entities)
	}
}

func TestInfer_ClassificationNested(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[[{"label":"joy","score":0.7},{"label":"optimism","score":0.2}]]`))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL, "").Infer(context.Background(), domain.InferenceRequest{
		Task: domain.TaskTextClassification, Model: "m", Inputs: "great day",
	})
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	if len(resp.Labels) != 2 || resp.Labels[0].Label != "joy" {
		t.Errorf("Labels = %+v", resp.Labels)
	}
}

func TestInfer_SentenceSimilarity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Inputs similarityInputs `json:"inputs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Inputs.SourceSentence != "query" || len(body.Inputs.Sentences) != 2 {
			t.Errorf("unexpected inputs: %+v", body.Inputs)
		}
		_, _ = w.Write([]byte(`[0.9, 0.1]`))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL, "").Infer(context.Background(), domain.InferenceRequest{
		Task: domain.TaskSentenceSimilarity, Model: "m", Inputs: "query", Sentences: []string{"a", "b"},
	})
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	if len(resp.Similarities) != 2 || resp.Similarities[0] != 0.9 {
		t.Errorf("Similarities = %v", resp.Similarities)
	}
}

func TestInfer_Failures(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		kind     domain.ProviderErrorKind
		sentinel error
	}{
		{
			name: "non-200",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"error":"Model is currently loading"}`))
			},
			kind:     domain.KindBadStatus,
			sentinel: domain.ErrProviderBadResponse,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"error":"unexpected object"}`))
			},
			kind:     domain.KindMalformed,
			sentinel: domain.ErrProviderBadResponse,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			kind:     domain.KindTimeout,
			sentinel: domain.ErrProviderUnreachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := newTestClient(server.URL, "").Infer(context.Background(), domain.InferenceRequest{
				Task: domain.TaskSummarization, Model: "m", Inputs: "x", Timeout: 50 * time.Millisecond,
			})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := domain.ProviderErrorKindOf(err); got != tt.kind {
				t.Errorf("kind = %q, want %q (err: %v)", got, tt.kind, err)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("expected %v, got %v", tt.sentinel, err)
			}
		})
	}
}

func TestInfer_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url, "").Infer(context.Background(), domain.InferenceRequest{
		Task: domain.TaskSummarization, Model: "m", Inputs: "x",
	})
	if domain.ProviderErrorKindOf(err) != domain.KindUnreachable {
		t.Errorf("expected unreachable, got %v", err)
	}
}

func TestInfer_UnsupportedTask(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1", "")
	_, err := c.Infer(context.Background(), domain.InferenceRequest{Task: "translation", Model: "m"})
	if !errors.Is(err, domain.ErrUnsupportedTask) {
		t.Errorf("expected ErrUnsupportedTask, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusNotFound)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != version.UserAgent() {
			t.Errorf("unexpected user agent: %q", r.Header.Get("User-Agent"))
		}
		w.WriteHeader(int(status.Load()))
	}))
	defer server.Close()

	c := newTestClient(server.URL, "")
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("4xx should count as reachable: %v", err)
	}
	status.Store(http.StatusBadGateway)
	if err := c.HealthCheck(context.Background()); err == nil {
		t.Error("expected error on 5xx")
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New(&Config{})
	if c.baseURL != DefaultBaseURL || c.timeout != defaultTimeout {
		t.Errorf("defaults not applied: %q %v", c.baseURL, c.timeout)
	}
}

func TestInfer_ErrorBodyLoggedOnRuneBoundary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("a" + strings.Repeat("ü", 300)))
	}))
	defer server.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	c := New(&Config{BaseURL: server.URL, Timeout: time.Second, Logger: zap.New(core)})
	_, err := c.Infer(context.Background(), domain.InferenceRequest{
		Task: domain.TaskSummarization, Model: "m", Inputs: "text",
	})
	if !errors.Is(err, domain.ErrProviderBadResponse) {
		t.Fatalf("expected bad response, got %v", err)
	}

	entries := logs.FilterMessage("Inference API returned error status").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	body, _ := entries[0].ContextMap()["body"].(string)
	if !utf8.ValidString(body) {
		t.Errorf("logged body is not valid UTF-8: %q", body)
	}
	if n := utf8.RuneCountInString(body); n != maxLoggedBody {
		t.Errorf("logged body has %d characters, want %d", n, maxLoggedBody)
	}
}
