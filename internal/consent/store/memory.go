// Package store persists consent ledger entries.
package store

import (
	"context"
	"sync"

	"travelogy/internal/consent/models"
	id "travelogy/pkg/domain"
)

// MemoryStore keeps ledger entries in memory for tests and development.
// Entries are stored oldest first and reversed on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[id.UserID][]*models.ConsentLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[id.UserID][]*models.ConsentLog)}
}

func (s *MemoryStore) Append(_ context.Context, entry *models.ConsentLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *entry
	s.entries[entry.UserID] = append(s.entries[entry.UserID], &clone)
	return nil
}

// ListByUser returns the user's ledger newest first. An empty history is not
// an error; a user with no consent updates has an empty ledger.
func (s *MemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]*models.ConsentLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.entries[userID]
	result := make([]*models.ConsentLog, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		clone := *stored[i]
		result = append(result, &clone)
	}
	return result, nil
}
