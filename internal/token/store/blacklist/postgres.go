package blacklist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresBlacklist persists revoked refresh tokens. It is the fallback when
// Redis is not configured; single-instance deployments lose nothing.
type PostgresBlacklist struct {
	db    *sql.DB
	clock Clock
}

// PostgresBlacklistOption configures a PostgresBlacklist instance.
type PostgresBlacklistOption func(*PostgresBlacklist)

// WithPostgresClock sets the clock function for testability.
func WithPostgresClock(clock Clock) PostgresBlacklistOption {
	return func(b *PostgresBlacklist) {
		if clock != nil {
			b.clock = clock
		}
	}
}

func NewPostgresBlacklist(db *sql.DB, opts ...PostgresBlacklistOption) *PostgresBlacklist {
	b := &PostgresBlacklist{
		db:    db,
		clock: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Revoke inserts the token with its expiry. ON CONFLICT DO NOTHING keeps the
// first expiry when two logouts race; revocation is idempotent either way.
func (b *PostgresBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	expiresAt := b.clock().Add(ttl)
	query := `
		INSERT INTO token_blacklist (token, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token) DO NOTHING
	`
	if _, err := b.db.ExecContext(ctx, query, token, expiresAt); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

// IsRevoked checks for an unexpired blacklist row.
func (b *PostgresBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	var expiresAt time.Time
	err := b.db.QueryRowContext(ctx,
		`SELECT expires_at FROM token_blacklist WHERE token = $1`, token).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check token blacklist: %w", err)
	}
	if b.clock().After(expiresAt) {
		return false, nil
	}
	return true, nil
}
