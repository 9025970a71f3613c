package refresh

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"travelogy/internal/token/models"
	id "travelogy/pkg/domain"
	"travelogy/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists refresh token records. The token string is the
// primary key; expired rows are reaped by ops tooling, not by this store.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, record *models.RefreshTokenRecord) error {
	query := `
		INSERT INTO refresh_tokens (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.Token, record.UserID.String(), record.CreatedAt, record.ExpiresAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return fmt.Errorf("refresh token already exists: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, token string) (*models.RefreshTokenRecord, error) {
	query := `
		SELECT token, user_id, created_at, expires_at
		FROM refresh_tokens
		WHERE token = $1
	`
	var (
		record models.RefreshTokenRecord
		rawID  string
	)
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&record.Token, &rawID, &record.CreatedAt, &record.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("refresh token not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	userID, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, fmt.Errorf("corrupt user id on refresh token: %w", err)
	}
	record.UserID = userID
	return &record, nil
}

func (s *PostgresStore) DeleteByUserID(ctx context.Context, userID id.UserID) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = $1`, userID.String())
	if err != nil {
		return 0, fmt.Errorf("delete refresh tokens: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete refresh tokens: %w", err)
	}
	return int(affected), nil
}
