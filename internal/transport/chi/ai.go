package chi

import (
	"net/http"

	"github.com/kailas-cloud/takenote/internal/domain"
)

// Analysis endpoints never fail because of the engine: a degraded result is
// still a 200 with its error field set.

// Summarize handles POST /ai/summarize.
func (s *Server) Summarize(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, trace := domain.NewContextWithTrace(r.Context())
	res := s.engine.Summarize(ctx, req.Content)
	setInferenceHeaders(w, trace)
	writeJSON(w, http.StatusOK, res)
}

// Categorize handles POST /ai/categorize.
func (s *Server) Categorize(w http.ResponseWriter, r *http.Request) {
	var req titledContentRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Categorize(req.Content, req.Title))
}

// Classify handles POST /ai/classify.
func (s *Server) Classify(w http.ResponseWriter, r *http.Request) {
	var req titledContentRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, trace := domain.NewContextWithTrace(r.Context())
	res := s.engine.Classify(ctx, req.Title, req.Content)
	setInferenceHeaders(w, trace)
	writeJSON(w, http.StatusOK, res)
}

// ExtractTags handles POST /ai/tags.
func (s *Server) ExtractTags(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, trace := domain.NewContextWithTrace(r.Context())
	res := s.engine.ExtractTags(ctx, req.Content)
	setInferenceHeaders(w, trace)
	writeJSON(w, http.StatusOK, res)
}

// ProcessNote handles POST /ai/process.
func (s *Server) ProcessNote(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, trace := domain.NewContextWithTrace(r.Context())
	res := s.engine.ProcessNote(ctx, req.Content)
	setInferenceHeaders(w, trace)
	writeJSON(w, http.StatusOK, res)
}

// SemanticSearch handles POST /ai/search over the caller's notes.
func (s *Server) SemanticSearch(w http.ResponseWriter, r *http.Request) {
	var req semanticSearchRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, trace := domain.NewContextWithTrace(r.Context())
	res, err := s.notes.SemanticSearch(ctx, UserFromContext(ctx), req.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setInferenceHeaders(w, trace)
	writeJSON(w, http.StatusOK, res)
}
