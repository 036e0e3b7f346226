// Package note stores notes in Redis/Valkey hashes or in SQLite.
package note

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/takenote/internal/db"
	"github.com/kailas-cloud/takenote/internal/domain"
	domnote "github.com/kailas-cloud/takenote/internal/domain/note"
)

// store is the consumer interface for the hash-backed repository (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// RedisRepo implements usecase/note.Repository on Redis-compatible stores.
// Each note is a hash at {prefix}note:{user}:{id}; the ids of a user's
// notes live in the set {prefix}user_notes:{user}.
type RedisRepo struct {
	store  store
	prefix string
}

// NewRedis creates a hash-backed note repository.
func NewRedis(s store, keyPrefix string) *RedisRepo {
	return &RedisRepo{store: s, prefix: keyPrefix}
}

// Save writes the note and indexes it under its owner.
func (r *RedisRepo) Save(ctx context.Context, n *domnote.Note) error {
	key := r.noteKey(n.UserID(), n.ID())
	if err := r.store.HSet(ctx, key, buildHashFields(n)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	if err := r.store.SAdd(ctx, r.userKey(n.UserID()), n.ID()); err != nil {
		return fmt.Errorf("index note %s: %w", n.ID(), err)
	}
	return nil
}

// Get returns a note, deleted or not.
func (r *RedisRepo) Get(ctx context.Context, userID, id string) (domnote.Note, error) {
	key := r.noteKey(userID, id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domnote.Note{}, domain.ErrNoteNotFound
		}
		return domnote.Note{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domnote.Note{}, domain.ErrNoteNotFound
	}
	return parseHashFields(m)
}

// ListByUser returns every note of userID in one pipelined round-trip.
// Ids whose hash has vanished are skipped.
func (r *RedisRepo) ListByUser(ctx context.Context, userID string) ([]domnote.Note, error) {
	ids, err := r.store.SMembers(ctx, r.userKey(userID))
	if err != nil {
		return nil, fmt.Errorf("list note ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.noteKey(userID, id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch notes: %w", err)
	}

	notes := make([]domnote.Note, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		n, err := parseHashFields(m)
		if err != nil {
			return nil, fmt.Errorf("parse note %s: %w", ids[i], err)
		}
		notes = append(notes, n)
	}
	return notes, nil
}

func (r *RedisRepo) noteKey(userID, id string) string {
	return r.prefix + "note:" + userID + ":" + id
}

func (r *RedisRepo) userKey(userID string) string {
	return r.prefix + "user_notes:" + userID
}
