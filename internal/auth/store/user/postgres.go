package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"travelogy/internal/auth/models"
	"travelogy/pkg/domain"
	"travelogy/pkg/platform/sentinel"
	txcontext "travelogy/pkg/platform/tx"
)

// uniqueViolation is the Postgres error code raised by the users_email_key
// index under concurrent registration.
const uniqueViolation = "23505"

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed user store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// execer returns the context transaction when one is open, so consent updates
// can touch the users table inside the ledger transaction.
func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const userColumns = `id, email, password_hash, first_name, last_name, phone_number,
	date_of_birth, city, country, preferred_language, timezone,
	data_sharing_consent, location_tracking_consent, analytics_consent, marketing_consent,
	is_active, created_at, updated_at, last_activity`

// Create inserts a new user. The unique index on email makes the
// existence-check-plus-insert a single atomic operation; a duplicate surfaces
// as sentinel.ErrConflict.
func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		user.ID.String(), user.Email, user.PasswordHash,
		user.FirstName, user.LastName, user.PhoneNumber,
		nullable(user.DateOfBirth), user.City, user.Country,
		user.PreferredLanguage, user.Timezone,
		user.DataSharingConsent, user.LocationTrackingConsent,
		user.AnalyticsConsent, user.MarketingConsent,
		user.IsActive, user.CreatedAt, user.UpdatedAt, user.LastActivity,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return fmt.Errorf("email already registered: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID domain.UserID) (*models.User, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID.String())
	return scanUser(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Update rewrites the mutable profile fields. Email, password, and consent
// flags have dedicated operations and are not touched here.
func (s *PostgresStore) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			first_name = $2, last_name = $3, phone_number = $4, date_of_birth = $5,
			city = $6, country = $7, preferred_language = $8, timezone = $9,
			updated_at = $10
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		user.ID.String(), user.FirstName, user.LastName, user.PhoneNumber,
		nullable(user.DateOfBirth), user.City, user.Country,
		user.PreferredLanguage, user.Timezone, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) UpdateLastActivity(ctx context.Context, userID domain.UserID, now time.Time) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE users SET last_activity = $2, updated_at = $2 WHERE id = $1`,
		userID.String(), now)
	if err != nil {
		return fmt.Errorf("update last activity: %w", err)
	}
	return requireRow(res)
}

// SetActive flips the soft-delete flag; idempotent by construction.
func (s *PostgresStore) SetActive(ctx context.Context, userID domain.UserID, active bool, now time.Time) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE users SET is_active = $2, updated_at = $3 WHERE id = $1`,
		userID.String(), active, now)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) UpdatePassword(ctx context.Context, userID domain.UserID, passwordHash string, now time.Time) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		userID.String(), passwordHash, now)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireRow(res)
}

// SetConsentFlag updates one consent column. Runs inside the consent ledger
// transaction when the context carries one, keeping flag and log atomic.
func (s *PostgresStore) SetConsentFlag(ctx context.Context, userID domain.UserID, consentType domain.ConsentType, granted bool, now time.Time) error {
	column, ok := consentColumns[consentType]
	if !ok {
		return fmt.Errorf("unknown consent type %q: %w", consentType, sentinel.ErrInvalidState)
	}
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE users SET `+column+` = $2, updated_at = $3 WHERE id = $1`,
		userID.String(), granted, now)
	if err != nil {
		return fmt.Errorf("set consent flag: %w", err)
	}
	return requireRow(res)
}

// consentColumns maps consent types to column names. Only values from this
// map are ever interpolated into SQL.
var consentColumns = map[domain.ConsentType]string{
	domain.ConsentDataSharing:      "data_sharing_consent",
	domain.ConsentLocationTracking: "location_tracking_consent",
	domain.ConsentAnalytics:        "analytics_consent",
	domain.ConsentMarketing:        "marketing_consent",
}

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var idStr string
	var dateOfBirth sql.NullString
	err := row.Scan(
		&idStr, &user.Email, &user.PasswordHash,
		&user.FirstName, &user.LastName, &user.PhoneNumber,
		&dateOfBirth, &user.City, &user.Country,
		&user.PreferredLanguage, &user.Timezone,
		&user.DataSharingConsent, &user.LocationTrackingConsent,
		&user.AnalyticsConsent, &user.MarketingConsent,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt, &user.LastActivity,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	userID, err := domain.ParseUserID(idStr)
	if err != nil {
		return nil, fmt.Errorf("scan user id: %w", err)
	}
	user.ID = userID
	user.DateOfBirth = dateOfBirth.String
	return &user, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
