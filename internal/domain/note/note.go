package note

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits, in characters.
const (
	MaxTitleLength   = 200
	MaxContentLength = 10000
)

// Note is the note aggregate.
type Note struct {
	id        string
	userID    string
	title     string
	content   string
	pinned    bool
	deleted   bool
	createdAt time.Time
	updatedAt *time.Time
	deletedAt *time.Time
}

// New validates and creates a Note owned by userID.
func New(id, userID, title, content string, pinned bool, now time.Time) (Note, error) {
	if id == "" {
		return Note{}, fmt.Errorf("note ID is required")
	}
	if userID == "" {
		return Note{}, fmt.Errorf("user ID is required")
	}
	if err := ValidateTitle(title); err != nil {
		return Note{}, err
	}
	if err := ValidateContent(content); err != nil {
		return Note{}, err
	}
	return Note{
		id:        id,
		userID:    userID,
		title:     title,
		content:   content,
		pinned:    pinned,
		createdAt: now.UTC(),
	}, nil
}

// Reconstruct creates a Note without validation (storage hydration).
func Reconstruct(
	id, userID, title, content string, pinned, deleted bool,
	createdAt time.Time, updatedAt, deletedAt *time.Time,
) Note {
	return Note{
		id: id, userID: userID, title: title, content: content,
		pinned: pinned, deleted: deleted,
		createdAt: createdAt, updatedAt: updatedAt, deletedAt: deletedAt,
	}
}

// ValidateTitle checks title length (1-200 characters, not blank).
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("title too long (max %d characters)", MaxTitleLength)
	}
	return nil
}

// ValidateContent checks content length (1-10000 characters, not blank).
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content is required")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return fmt.Errorf("content too long (max %d characters)", MaxContentLength)
	}
	return nil
}

// ID returns the note identifier.
func (n *Note) ID() string { return n.id }

// UserID returns the owner.
func (n *Note) UserID() string { return n.userID }

// Title returns the note title.
func (n *Note) Title() string { return n.title }

// Content returns the note body.
func (n *Note) Content() string { return n.content }

// Pinned reports whether the note is pinned.
func (n *Note) Pinned() bool { return n.pinned }

// Deleted reports whether the note is soft-deleted.
func (n *Note) Deleted() bool { return n.deleted }

// CreatedAt returns the creation time (UTC).
func (n *Note) CreatedAt() time.Time { return n.createdAt }

// UpdatedAt returns the last modification time, nil if never modified.
func (n *Note) UpdatedAt() *time.Time { return n.updatedAt }

// DeletedAt returns the soft-delete time, nil unless deleted.
func (n *Note) DeletedAt() *time.Time { return n.deletedAt }

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title   *string
	Content *string
	Pinned  *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Pinned == nil
}

// Apply validates p and returns the patched note. An empty patch returns n unchanged.
func (n Note) Apply(p Patch, now time.Time) (Note, error) {
	if p.IsEmpty() {
		return n, nil
	}
	if p.Title != nil {
		if err := ValidateTitle(*p.Title); err != nil {
			return Note{}, err
		}
		n.title = *p.Title
	}
	if p.Content != nil {
		if err := ValidateContent(*p.Content); err != nil {
			return Note{}, err
		}
		n.content = *p.Content
	}
	if p.Pinned != nil {
		n.pinned = *p.Pinned
	}
	n.touch(now)
	return n, nil
}

// SoftDelete marks the note deleted.
func (n Note) SoftDelete(now time.Time) Note {
	t := now.UTC()
	n.deleted = true
	n.deletedAt = &t
	n.touch(now)
	return n
}

// Restore clears the deleted flag.
func (n Note) Restore(now time.Time) Note {
	n.deleted = false
	n.deletedAt = nil
	n.touch(now)
	return n
}

// TogglePin flips the pinned flag.
func (n Note) TogglePin(now time.Time) Note {
	n.pinned = !n.pinned
	n.touch(now)
	return n
}

// Matches reports whether query occurs in the title or content, case-insensitively.
func (n *Note) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(n.title), q) ||
		strings.Contains(strings.ToLower(n.content), q)
}

func (n *Note) touch(now time.Time) {
	t := now.UTC()
	n.updatedAt = &t
}
