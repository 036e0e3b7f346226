package note

import (
	"fmt"
	"strconv"
	"time"

	domnote "github.com/kailas-cloud/takenote/internal/domain/note"
)

// Hash field names, shared by both backends' column names.
const (
	fieldID        = "id"
	fieldUserID    = "user_id"
	fieldTitle     = "title"
	fieldContent   = "content"
	fieldPinned    = "is_pinned"
	fieldDeleted   = "is_deleted"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
	fieldDeletedAt = "deleted_at"
)

// buildHashFields flattens a note for HSET. Absent timestamps are stored as "".
func buildHashFields(n *domnote.Note) map[string]string {
	return map[string]string{
		fieldID:        n.ID(),
		fieldUserID:    n.UserID(),
		fieldTitle:     n.Title(),
		fieldContent:   n.Content(),
		fieldPinned:    strconv.FormatBool(n.Pinned()),
		fieldDeleted:   strconv.FormatBool(n.Deleted()),
		fieldCreatedAt: formatTime(n.CreatedAt()),
		fieldUpdatedAt: formatOptTime(n.UpdatedAt()),
		fieldDeletedAt: formatOptTime(n.DeletedAt()),
	}
}

// parseHashFields hydrates a note from HGETALL output.
func parseHashFields(m map[string]string) (domnote.Note, error) {
	created, err := parseTime(m[fieldCreatedAt])
	if err != nil {
		return domnote.Note{}, fmt.Errorf("parse %s: %w", fieldCreatedAt, err)
	}
	updated, err := parseOptTime(m[fieldUpdatedAt])
	if err != nil {
		return domnote.Note{}, fmt.Errorf("parse %s: %w", fieldUpdatedAt, err)
	}
	deleted, err := parseOptTime(m[fieldDeletedAt])
	if err != nil {
		return domnote.Note{}, fmt.Errorf("parse %s: %w", fieldDeletedAt, err)
	}
	pinned, _ := strconv.ParseBool(m[fieldPinned])
	isDeleted, _ := strconv.ParseBool(m[fieldDeleted])

	return domnote.Reconstruct(
		m[fieldID], m[fieldUserID], m[fieldTitle], m[fieldContent],
		pinned, isDeleted, created, updated, deleted,
	), nil
}

// timeLayout is RFC 3339 with fixed-width nanoseconds, so stored
// timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatOptTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func parseOptTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
