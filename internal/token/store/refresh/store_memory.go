package refresh

import (
	"context"
	"fmt"
	"sync"

	"travelogy/internal/token/models"
	id "travelogy/pkg/domain"
	"travelogy/pkg/platform/sentinel"
)

// MemoryStore keeps refresh token records in memory for tests and single
// process development. Records are cloned on the way in and out so callers
// cannot mutate shared state.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]*models.RefreshTokenRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]*models.RefreshTokenRecord)}
}

func (s *MemoryStore) Create(_ context.Context, record *models.RefreshTokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tokens[record.Token]; exists {
		return fmt.Errorf("refresh token already exists: %w", sentinel.ErrConflict)
	}
	clone := *record
	s.tokens[record.Token] = &clone
	return nil
}

func (s *MemoryStore) Find(_ context.Context, token string) (*models.RefreshTokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.tokens[token]
	if !ok {
		return nil, fmt.Errorf("refresh token not found: %w", sentinel.ErrNotFound)
	}
	clone := *record
	return &clone, nil
}

func (s *MemoryStore) DeleteByUserID(_ context.Context, userID id.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for token, record := range s.tokens {
		if record.UserID == userID {
			delete(s.tokens, token)
			deleted++
		}
	}
	return deleted, nil
}
