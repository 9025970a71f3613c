package blacklist

import (
	"context"
	"sync"
	"time"
)

// MemoryBlacklist is the in-process implementation for tests and dev.
type MemoryBlacklist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	clock   Clock
}

// MemoryBlacklistOption configures a MemoryBlacklist instance.
type MemoryBlacklistOption func(*MemoryBlacklist)

// WithMemoryClock sets the clock function for testability.
func WithMemoryClock(clock Clock) MemoryBlacklistOption {
	return func(b *MemoryBlacklist) {
		if clock != nil {
			b.clock = clock
		}
	}
}

func NewMemoryBlacklist(opts ...MemoryBlacklistOption) *MemoryBlacklist {
	b := &MemoryBlacklist{
		entries: make(map[string]time.Time),
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Revoke records the token until its TTL elapses. Re-revoking extends
// nothing; first write wins, matching the insert-if-absent semantics of the
// persistent implementations.
func (b *MemoryBlacklist) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if expiresAt, ok := b.entries[token]; ok && b.clock().Before(expiresAt) {
		return nil
	}
	b.entries[token] = b.clock().Add(ttl)
	return nil
}

// IsRevoked reports whether the token has an unexpired blacklist entry.
func (b *MemoryBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	expiresAt, ok := b.entries[token]
	if !ok {
		return false, nil
	}
	return b.clock().Before(expiresAt), nil
}
