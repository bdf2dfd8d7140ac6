// Package intakelog keeps a bounded append-only record of accepted
// submissions.
package intakelog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/it-era/intake/internal/domain"
)

// RedisStore persists the log as a Redis list under a single key.
// Appending pushes and trims inside one transactional pipeline, so
// concurrent submissions cannot lose each other's entries and the cap
// holds without any read-modify-write cycle.
type RedisStore struct {
	client     *redis.Client
	key        string
	maxEntries int
}

// NewRedisStore creates a store over an existing Redis client.
func NewRedisStore(client *redis.Client, key string, maxEntries int) *RedisStore {
	return &RedisStore{
		client:     client,
		key:        key,
		maxEntries: maxEntries,
	}
}

// Append serializes the entry and appends it atomically.
func (s *RedisStore) Append(ctx context.Context, entry domain.LogEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal log entry: %w", err)
	}

	// RPUSH then LTRIM to the last maxEntries elements, in one MULTI/EXEC.
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.key, payload)
	pipe.LTrim(ctx, s.key, int64(-s.maxEntries), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append log entry: %w", err)
	}

	return nil
}

// Recent returns up to n entries, newest last.
func (s *RedisStore) Recent(ctx context.Context, n int) ([]domain.LogEntry, error) {
	start := int64(0)
	if n > 0 {
		start = int64(-n)
	}

	raw, err := s.client.LRange(ctx, s.key, start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read log entries: %w", err)
	}

	entries := make([]domain.LogEntry, 0, len(raw))
	for _, item := range raw {
		var entry domain.LogEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			// A corrupt element should not hide the rest of the log.
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
