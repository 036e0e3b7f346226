package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/takenote/internal/db"
)

// Get reads a cached embedding blob. A missing key maps to db.ErrKeyNotFound
// so the cache can tell a miss from a broken connection.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.b().Get().Key(key).Build()
	data, err := s.do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: fmt.Errorf("key %s: %w", key, err)}
	}
	return data, nil
}

// Set writes value as a binary-safe string.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: fmt.Errorf("key %s: %w", key, err)}
	}
	return nil
}
