package memory

import (
	"context"
	"sync"

	"quiz-room-service/internal/domain"
)

// ResultStore is an in-memory append-only attempt log, keyed by room or quiz
// ID. Useful for tests, demos, and single-node deployments without Redis.
type ResultStore struct {
	mu       sync.RWMutex
	attempts map[string][]domain.Attempt
}

func NewResultStore() *ResultStore {
	return &ResultStore{attempts: make(map[string][]domain.Attempt)}
}

func (s *ResultStore) Append(_ context.Context, scopeID string, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[scopeID] = append(s.attempts[scopeID], attempt)
	return nil
}

func (s *ResultStore) ListAll(_ context.Context, scopeID string) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.attempts[scopeID]
	out := make([]domain.Attempt, len(stored))
	copy(out, stored)
	return out, nil
}
