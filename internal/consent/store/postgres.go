package store

import (
	"context"
	"database/sql"
	"fmt"

	"travelogy/internal/consent/models"
	id "travelogy/pkg/domain"
	txcontext "travelogy/pkg/platform/tx"
)

// PostgresStore persists ledger entries in PostgreSQL. Appends pick up the
// context transaction so they commit atomically with the user flag update.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, entry *models.ConsentLog) error {
	query := `
		INSERT INTO consent_logs (id, user_id, consent_type, granted, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		entry.ID.String(), entry.UserID.String(), entry.Type.String(),
		entry.Granted, entry.IPAddress, entry.UserAgent, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("append consent log: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.ConsentLog, error) {
	query := `
		SELECT id, user_id, consent_type, granted, ip_address, user_agent, created_at
		FROM consent_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list consent logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.ConsentLog
	for rows.Next() {
		entry, err := scanConsentLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list consent logs: %w", err)
	}
	return entries, nil
}

func scanConsentLog(rows *sql.Rows) (*models.ConsentLog, error) {
	var (
		entry         models.ConsentLog
		rawID, rawUID string
		rawType       string
	)
	err := rows.Scan(&rawID, &rawUID, &rawType, &entry.Granted,
		&entry.IPAddress, &entry.UserAgent, &entry.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("scan consent log: %w", err)
	}
	logID, err := id.ParseConsentLogID(rawID)
	if err != nil {
		return nil, fmt.Errorf("corrupt consent log id: %w", err)
	}
	userID, err := id.ParseUserID(rawUID)
	if err != nil {
		return nil, fmt.Errorf("corrupt user id on consent log: %w", err)
	}
	consentType, err := id.ParseConsentType(rawType)
	if err != nil {
		return nil, fmt.Errorf("corrupt consent type on log: %w", err)
	}
	entry.ID = logID
	entry.UserID = userID
	entry.Type = consentType
	return &entry, nil
}
