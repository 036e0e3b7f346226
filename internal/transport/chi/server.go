// Package chi is the HTTP API: note CRUD, analysis endpoints, health and metrics.
package chi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/takenote/internal/domain"
	analysisuc "github.com/kailas-cloud/takenote/internal/usecase/analysis"
	healthuc "github.com/kailas-cloud/takenote/internal/usecase/health"
	noteuc "github.com/kailas-cloud/takenote/internal/usecase/note"
	"github.com/kailas-cloud/takenote/internal/version"
)

// Server serves the note and analysis API.
type Server struct {
	notes         *noteuc.Service
	engine        *analysisuc.Engine
	health        *healthuc.Service
	logger        *zap.Logger
	validate      *validator.Validate
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	notes *noteuc.Service,
	engine *analysisuc.Engine,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		notes:         notes,
		engine:        engine,
		health:        health,
		logger:        logger,
		validate:      newValidator(),
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	r.Get("/", s.Root)
	r.Get("/health", s.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/notes", s.ListNotes)
	r.Post("/notes", s.CreateNote)
	r.Post("/notes/search", s.SearchNotes)
	r.Get("/notes/{id}", s.GetNote)
	r.Put("/notes/{id}", s.UpdateNote)
	r.Delete("/notes/{id}", s.DeleteNote)
	r.Post("/notes/{id}/restore", s.RestoreNote)
	r.Patch("/notes/{id}/pin", s.TogglePin)
	r.Post("/notes/{id}/analyze", s.AnalyzeNote)

	r.Post("/ai/summarize", s.Summarize)
	r.Post("/ai/categorize", s.Categorize)
	r.Post("/ai/classify", s.Classify)
	r.Post("/ai/tags", s.ExtractTags)
	r.Post("/ai/process", s.ProcessNote)
	r.Post("/ai/search", s.SemanticSearch)
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, successResponse{
		Message: "takenote API is running",
		Data: map[string]any{
			"version": version.Version,
			"commit":  version.Commit,
		},
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// setInferenceHeaders reports how many provider calls served the request.
func setInferenceHeaders(w http.ResponseWriter, trace *domain.InferenceTrace) {
	attempts, failures := trace.Counts()
	w.Header().Set("X-Inference-Attempts", strconv.Itoa(attempts))
	w.Header().Set("X-Inference-Failures", strconv.Itoa(failures))
}
