package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	domana "github.com/kailas-cloud/takenote/internal/domain/analysis"
	domnote "github.com/kailas-cloud/takenote/internal/domain/note"
)

type createNoteRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Content  string `json:"content" validate:"required,max=10000"`
	IsPinned bool   `json:"is_pinned"`
}

// updateNoteRequest is a partial update; absent fields stay unchanged.
type updateNoteRequest struct {
	Title    *string `json:"title" validate:"omitempty,max=200"`
	Content  *string `json:"content" validate:"omitempty,max=10000"`
	IsPinned *bool   `json:"is_pinned"`
}

func (r updateNoteRequest) patch() domnote.Patch {
	return domnote.Patch{Title: r.Title, Content: r.Content, Pinned: r.IsPinned}
}

type searchNotesRequest struct {
	Query string `json:"query" validate:"required,max=100"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=100"`
}

type listNotesParams struct {
	Page   int    `validate:"omitempty,min=1"`
	Size   int    `validate:"omitempty,min=1,max=100"`
	Search string `validate:"omitempty,max=100"`
}

type contentRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

type titledContentRequest struct {
	Title   string `json:"title" validate:"max=200"`
	Content string `json:"content" validate:"required,max=10000"`
}

type semanticSearchRequest struct {
	Query string `json:"query" validate:"required,max=100"`
}

type noteResponse struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	IsPinned  bool       `json:"is_pinned"`
	IsDeleted bool       `json:"is_deleted"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

type noteListResponse struct {
	Notes []noteResponse `json:"notes"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

type successResponse struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type noteAnalysisResponse struct {
	NoteID string `json:"note_id"`
	domana.Aggregate
}

func noteToResponse(n domnote.Note) noteResponse {
	return noteResponse{
		ID:        n.ID(),
		UserID:    n.UserID(),
		Title:     n.Title(),
		Content:   n.Content(),
		IsPinned:  n.Pinned(),
		IsDeleted: n.Deleted(),
		CreatedAt: n.CreatedAt(),
		UpdatedAt: n.UpdatedAt(),
		DeletedAt: n.DeletedAt(),
	}
}

func notesToResponse(notes []domnote.Note) []noteResponse {
	out := make([]noteResponse, len(notes))
	for i := range notes {
		out[i] = noteToResponse(notes[i])
	}
	return out
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// decode reads a JSON body into dst and validates it. On failure the error
// response has been written and decode returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return s.check(w, dst)
}

func (s *Server) check(w http.ResponseWriter, v any) bool {
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, validationMessage(err))
		return false
	}
	return true
}
