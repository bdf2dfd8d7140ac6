// Package intakelog keeps a bounded append-only record of accepted
// submissions. The log is best-effort: append failures are reported to
// the caller for logging but must never fail a submission.
package intakelog

import (
	"context"
	"sync"

	"github.com/it-era/intake/internal/domain"
)

// Store is a bounded append-only log of intake entries.
type Store interface {
	// Append adds an entry, evicting the oldest entries beyond the cap.
	Append(ctx context.Context, entry domain.LogEntry) error

	// Recent returns up to n entries, newest last.
	Recent(ctx context.Context, n int) ([]domain.LogEntry, error)
}

// MemoryStore keeps the log in process memory. It backs tests and
// deployments without a Redis instance; entries do not survive restarts.
type MemoryStore struct {
	mu         sync.Mutex
	entries    []domain.LogEntry
	maxEntries int
}

// NewMemoryStore creates an in-memory store capped at maxEntries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		maxEntries: maxEntries,
	}
}

// Append adds the entry, dropping the oldest entries once the cap is hit.
func (s *MemoryStore) Append(ctx context.Context, entry domain.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	if overflow := len(s.entries) - s.maxEntries; overflow > 0 {
		s.entries = append([]domain.LogEntry(nil), s.entries[overflow:]...)
	}
	return nil
}

// Recent returns up to n entries, newest last.
func (s *MemoryStore) Recent(ctx context.Context, n int) ([]domain.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]domain.LogEntry, n)
	copy(out, s.entries[len(s.entries)-n:])
	return out, nil
}
