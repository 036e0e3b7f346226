package note

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kailas-cloud/takenote/internal/domain"
	domnote "github.com/kailas-cloud/takenote/internal/domain/note"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteRepo implements usecase/note.Repository on a single SQLite file.
type SQLiteRepo struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// Use ":memory:" for an ephemeral database.
func OpenSQLite(path string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one connection: SQLite serializes writers and :memory: is per-connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteRepo{db: db}, nil
}

// Close closes the database.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// Ping checks the database connection.
func (r *SQLiteRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Save inserts or replaces the note.
func (r *SQLiteRepo) Save(ctx context.Context, n *domnote.Note) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (id, user_id, title, content, is_pinned, is_deleted, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			is_pinned = excluded.is_pinned,
			is_deleted = excluded.is_deleted,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`,
		n.ID(), n.UserID(), n.Title(), n.Content(), n.Pinned(), n.Deleted(),
		formatTime(n.CreatedAt()), nullTime(n.UpdatedAt()), nullTime(n.DeletedAt()),
	)
	if err != nil {
		return fmt.Errorf("upsert note %s: %w", n.ID(), err)
	}
	return nil
}

// Get returns a note, deleted or not.
func (r *SQLiteRepo) Get(ctx context.Context, userID, id string) (domnote.Note, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, content, is_pinned, is_deleted, created_at, updated_at, deleted_at
		FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domnote.Note{}, domain.ErrNoteNotFound
	}
	if err != nil {
		return domnote.Note{}, fmt.Errorf("get note %s: %w", id, err)
	}
	return n, nil
}

// ListByUser returns every note of userID, newest first.
func (r *SQLiteRepo) ListByUser(ctx context.Context, userID string) ([]domnote.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, content, is_pinned, is_deleted, created_at, updated_at, deleted_at
		FROM notes WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var notes []domnote.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (domnote.Note, error) {
	var (
		id, userID, title, content, createdAt string
		pinned, deleted                       bool
		updatedAt, deletedAt                  sql.NullString
	)
	if err := s.Scan(&id, &userID, &title, &content, &pinned, &deleted, &createdAt, &updatedAt, &deletedAt); err != nil {
		return domnote.Note{}, err
	}
	created, err := parseTime(createdAt)
	if err != nil {
		return domnote.Note{}, fmt.Errorf("parse %s: %w", fieldCreatedAt, err)
	}
	updated, err := parseOptTime(updatedAt.String)
	if err != nil {
		return domnote.Note{}, fmt.Errorf("parse %s: %w", fieldUpdatedAt, err)
	}
	deletedTime, err := parseOptTime(deletedAt.String)
	if err != nil {
		return domnote.Note{}, fmt.Errorf("parse %s: %w", fieldDeletedAt, err)
	}
	return domnote.Reconstruct(id, userID, title, content, pinned, deleted, created, updated, deletedTime), nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
