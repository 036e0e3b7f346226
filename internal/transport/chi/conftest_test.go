package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	noterepo "github.com/kailas-cloud/takenote/internal/repository/note"
	analysisuc "github.com/kailas-cloud/takenote/internal/usecase/analysis"
	healthuc "github.com/kailas-cloud/takenote/internal/usecase/health"
	noteuc "github.com/kailas-cloud/takenote/internal/usecase/note"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type testAPI struct {
	t       *testing.T
	handler http.Handler
	token   string
}

// newTestAPI wires the full stack over an in-memory SQLite store and an
// engine with no providers, so every stage runs its local heuristic.
func newTestAPI(t *testing.T, tokens map[string]string) *testAPI {
	t.Helper()
	repo, err := noterepo.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return newTestAPIWith(t, repo, repo, tokens)
}

func newTestAPIWith(t *testing.T, repo noteuc.Repository, pinger healthuc.StorePinger, tokens map[string]string) *testAPI {
	t.Helper()
	logger := zap.NewNop()
	engine := analysisuc.New(nil, analysisuc.Config{Logger: logger})
	server := NewServer(noteuc.New(repo, engine), engine, healthuc.New(pinger, nil), logger)

	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(logger))
	r.Use(SecurityHeaders)
	r.Use(BearerAuthMiddleware(tokens))
	r.Use(MaxBodySize(MaxBodyBytes))
	server.Routes(r)

	return &testAPI{t: t, handler: r}
}

func (a *testAPI) as(token string) *testAPI {
	return &testAPI{t: a.t, handler: a.handler, token: token}
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var rd io.Reader = http.NoBody
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = bytes.NewBufferString(b)
		default:
			buf, err := json.Marshal(b)
			if err != nil {
				a.t.Fatalf("marshal body: %v", err)
			}
			rd = bytes.NewReader(buf)
		}
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func (a *testAPI) createNote(title, content string) noteResponse {
	a.t.Helper()
	rr := a.do("POST", "/notes", map[string]any{"title": title, "content": content})
	if rr.Code != http.StatusCreated {
		a.t.Fatalf("create note: got %d: %s", rr.Code, rr.Body.String())
	}
	var n noteResponse
	decodeBody(a.t, rr, &n)
	return n
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, code errorCode) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, status, rr.Body.String())
	}
	var e errorResponse
	decodeBody(t, rr, &e)
	if e.Code != code {
		t.Errorf("error code: got %s, want %s", e.Code, code)
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
