// Package user provides the credential store implementations. The memory
// store backs unit tests and local development; the Postgres store is the
// production implementation.
//
// Error contract (all store methods):
// - sentinel.ErrNotFound when the requested user does not exist
// - sentinel.ErrConflict when the email is already registered
// - wrapped infrastructure errors otherwise
package user

import (
	"context"
	"fmt"
	"sync"
	"time"

	"travelogy/internal/auth/models"
	"travelogy/pkg/domain"
	"travelogy/pkg/platform/sentinel"
)

// MemoryStore stores users in memory for tests and development.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[domain.UserID]*models.User
	byEmail map[string]domain.UserID
}

// NewMemoryStore constructs an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[domain.UserID]*models.User),
		byEmail: make(map[string]domain.UserID),
	}
}

// Create inserts a new user. The email-uniqueness check and the insert happen
// under one lock, mirroring the unique index the Postgres store relies on.
func (s *MemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[user.Email]; exists {
		return fmt.Errorf("email already registered: %w", sentinel.ErrConflict)
	}
	cloned := *user
	s.byID[user.ID] = &cloned
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, userID domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[userID]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	cloned := *user
	return &cloned, nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	cloned := *s.byID[userID]
	return &cloned, nil
}

// Update rewrites the mutable profile fields of an existing user.
func (s *MemoryStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[user.ID]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	cloned := *user
	cloned.Email = existing.Email // email is immutable after registration
	s.byID[user.ID] = &cloned
	return nil
}

func (s *MemoryStore) UpdateLastActivity(_ context.Context, userID domain.UserID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	user.LastActivity = now
	user.UpdatedAt = now
	return nil
}

// SetActive flips the soft-delete flag. Idempotent: repeating the same value
// is not an error.
func (s *MemoryStore) SetActive(_ context.Context, userID domain.UserID, active bool, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	user.IsActive = active
	user.UpdatedAt = now
	return nil
}

func (s *MemoryStore) UpdatePassword(_ context.Context, userID domain.UserID, passwordHash string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = now
	return nil
}

// SetConsentFlag updates one consent flag in place. The memory consent store
// calls this under its own transaction lock so flag and ledger stay in step.
func (s *MemoryStore) SetConsentFlag(_ context.Context, userID domain.UserID, consentType domain.ConsentType, granted bool, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	user.SetConsentFlag(consentType, granted)
	user.UpdatedAt = now
	return nil
}
