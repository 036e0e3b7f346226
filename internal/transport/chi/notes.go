package chi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/takenote/internal/domain"
)

// ListNotes handles GET /notes.
func (s *Server) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var params listNotesParams
	var err error
	if params.Page, err = intParam(q.Get("page")); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "page: "+err.Error())
		return
	}
	if params.Size, err = intParam(q.Get("size")); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "size: "+err.Error())
		return
	}
	params.Search = q.Get("search")
	if !s.check(w, params) {
		return
	}

	page, err := s.notes.List(r.Context(), UserFromContext(r.Context()), params.Page, params.Size, params.Search)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, noteListResponse{
		Notes: notesToResponse(page.Notes),
		Total: page.Total,
		Page:  page.Page,
		Size:  page.Size,
	})
}

// CreateNote handles POST /notes.
func (s *Server) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if !s.decode(w, r, &req) {
		return
	}

	n, err := s.notes.Create(r.Context(), UserFromContext(r.Context()), req.Title, req.Content, req.IsPinned)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, noteToResponse(n))
}

// SearchNotes handles POST /notes/search.
func (s *Server) SearchNotes(w http.ResponseWriter, r *http.Request) {
	var req searchNotesRequest
	if !s.decode(w, r, &req) {
		return
	}

	notes, err := s.notes.Search(r.Context(), UserFromContext(r.Context()), req.Query, req.Limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, noteListResponse{
		Notes: notesToResponse(notes),
		Total: len(notes),
		Page:  1,
		Size:  len(notes),
	})
}

// GetNote handles GET /notes/{id}.
func (s *Server) GetNote(w http.ResponseWriter, r *http.Request) {
	n, err := s.notes.Get(r.Context(), UserFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, noteToResponse(n))
}

// UpdateNote handles PUT /notes/{id}.
func (s *Server) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req updateNoteRequest
	if !s.decode(w, r, &req) {
		return
	}

	n, err := s.notes.Update(r.Context(), UserFromContext(r.Context()), chi.URLParam(r, "id"), req.patch())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, noteToResponse(n))
}

// DeleteNote handles DELETE /notes/{id}.
func (s *Server) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.notes.Delete(r.Context(), UserFromContext(r.Context()), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{
		Message: fmt.Sprintf("Note %s deleted successfully", id),
		Data:    map[string]any{"note_id": id},
	})
}

// RestoreNote handles POST /notes/{id}/restore.
func (s *Server) RestoreNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.notes.Restore(r.Context(), UserFromContext(r.Context()), id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{
		Message: fmt.Sprintf("Note %s restored successfully", id),
		Data:    map[string]any{"note_id": id},
	})
}

// TogglePin handles PATCH /notes/{id}/pin.
func (s *Server) TogglePin(w http.ResponseWriter, r *http.Request) {
	n, err := s.notes.TogglePin(r.Context(), UserFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, noteToResponse(n))
}

// AnalyzeNote handles POST /notes/{id}/analyze.
func (s *Server) AnalyzeNote(w http.ResponseWriter, r *http.Request) {
	ctx, trace := domain.NewContextWithTrace(r.Context())
	id := chi.URLParam(r, "id")

	agg, err := s.notes.Analyze(ctx, UserFromContext(ctx), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setInferenceHeaders(w, trace)
	writeJSON(w, http.StatusOK, noteAnalysisResponse{NoteID: id, Aggregate: agg})
}

// intParam parses an optional integer query parameter; absent means 0.
func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("must be an integer")
	}
	return n, nil
}
