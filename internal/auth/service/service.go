// Package service implements account lifecycle: registration, login,
// password changes, profile updates, and soft deletion. Consent state lives
// in the consent service; tokens in the token service.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"travelogy/internal/auth/models"
	"travelogy/internal/auth/password"
	"travelogy/internal/platform/metrics"
	tokenmodels "travelogy/internal/token/models"
	id "travelogy/pkg/domain"
	dErrors "travelogy/pkg/domain-errors"
	"travelogy/pkg/platform/audit"
	"travelogy/pkg/platform/sentinel"
	"travelogy/pkg/requestcontext"
)

const (
	defaultLanguage = "en"
	defaultTimezone = "UTC"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastActivity(ctx context.Context, userID id.UserID, now time.Time) error
	SetActive(ctx context.Context, userID id.UserID, active bool, now time.Time) error
	UpdatePassword(ctx context.Context, userID id.UserID, passwordHash string, now time.Time) error
}

type TokenIssuer interface {
	Issue(ctx context.Context, userID id.UserID) (*tokenmodels.TokenPair, error)
	RevokeAllForUser(ctx context.Context, userID id.UserID) error
}

// Service owns the user aggregate.
type Service struct {
	users   UserStore
	tokens  TokenIssuer
	audit   *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(
	users UserStore,
	tokens TokenIssuer,
	auditPub *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		audit:   auditPub,
		metrics: m,
		logger:  logger,
	}
}

// errInvalidCredentials is shared by every login failure mode so responses
// never reveal whether the email exists.
func errInvalidCredentials() error {
	return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
}

// Register creates a new account and signs it in. Email uniqueness rests on
// the store's atomic create; there is no pre-check to race against.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResult, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	user := &models.User{
		ID:           id.NewUserID(),
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		DateOfBirth:  req.DateOfBirth,
		City:         req.City,
		Country:      req.Country,

		PreferredLanguage: defaultLanguage,
		Timezone:          defaultTimezone,

		DataSharingConsent:      req.DataSharingConsent,
		LocationTrackingConsent: req.LocationTrackingConsent,
		AnalyticsConsent:        req.AnalyticsConsent,
		MarketingConsent:        req.MarketingConsent,

		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastActivity: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	tokens, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementUsersCreated()
	s.emitAudit(ctx, audit.Event{
		UserID: user.ID,
		Email:  user.Email,
		Action: string(audit.EventUserCreated),
	})

	return &models.AuthResult{User: user, Tokens: tokens}, nil
}

// Login verifies credentials and issues a token pair. Unknown email, wrong
// password, and deactivated account are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, s.loginFailure(ctx, id.UserID{}, req.Email, "unknown_email")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if !password.Compare(user.PasswordHash, req.Password) {
		return nil, s.loginFailure(ctx, user.ID, user.Email, "password_mismatch")
	}
	if !user.IsActive {
		return nil, s.loginFailure(ctx, user.ID, user.Email, "account_deactivated")
	}

	now := requestcontext.Now(ctx)
	if err := s.users.UpdateLastActivity(ctx, user.ID, now); err != nil {
		s.logger.WarnContext(ctx, "failed to update last activity",
			"error", err,
			"user_id", user.ID.String(),
		)
	} else {
		user.LastActivity = now
	}

	tokens, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveLogin("success")
	s.emitAudit(ctx, audit.Event{
		UserID: user.ID,
		Email:  user.Email,
		Action: string(audit.EventLoginSucceeded),
	})

	return &models.AuthResult{User: user, Tokens: tokens}, nil
}

func (s *Service) loginFailure(ctx context.Context, userID id.UserID, email, reason string) error {
	s.metrics.ObserveLogin("failure")
	s.emitAudit(ctx, audit.Event{
		UserID: userID,
		Email:  email,
		Action: string(audit.EventAuthFailed),
		Reason: reason,
	})
	return errInvalidCredentials()
}

// ChangePassword verifies the old password before storing the new hash.
func (s *Service) ChangePassword(ctx context.Context, userID id.UserID, req *models.ChangePasswordRequest) error {
	if req == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if !password.Compare(user.PasswordHash, req.OldPassword) {
		return dErrors.New(dErrors.CodeValidation, "old password is incorrect")
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	if err := s.users.UpdatePassword(ctx, userID, hash, requestcontext.Now(ctx)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update password")
	}

	s.emitAudit(ctx, audit.Event{
		UserID: user.ID,
		Email:  user.Email,
		Action: string(audit.EventPasswordChanged),
	})
	return nil
}

// Deactivate soft-deletes the account. The row and its consent history stay;
// refresh tokens are dropped so the account cannot mint new access tokens.
func (s *Service) Deactivate(ctx context.Context, userID id.UserID) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.users.SetActive(ctx, userID, false, requestcontext.Now(ctx)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate user")
	}
	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke tokens on deactivation",
			"error", err,
			"user_id", userID.String(),
		)
	}

	s.emitAudit(ctx, audit.Event{
		UserID: user.ID,
		Email:  user.Email,
		Action: string(audit.EventUserDeactivated),
	})
	return nil
}

// Profile returns the user's own record.
func (s *Service) Profile(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findUser(ctx, userID)
}

// UpdateProfile applies a partial update. Email is immutable; consent flags
// only change through the consent service.
func (s *Service) UpdateProfile(ctx context.Context, userID id.UserID, req *models.UpdateProfileRequest) (*models.User, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyString(&user.FirstName, req.FirstName)
	applyString(&user.LastName, req.LastName)
	applyString(&user.PhoneNumber, req.PhoneNumber)
	applyString(&user.DateOfBirth, req.DateOfBirth)
	applyString(&user.City, req.City)
	applyString(&user.Country, req.Country)
	applyString(&user.PreferredLanguage, req.PreferredLanguage)
	applyString(&user.Timezone, req.Timezone)
	user.UpdatedAt = requestcontext.Now(ctx)

	if err := s.users.Update(ctx, user); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update profile")
	}
	return user, nil
}

// IsActive satisfies the auth middleware's active-account gate. A missing
// user reads as inactive rather than an error so stale tokens fail cleanly.
func (s *Service) IsActive(ctx context.Context, userID id.UserID) (bool, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsActive, nil
}

func (s *Service) findUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	return user, nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	event.IPAddress = requestcontext.ClientIP(ctx)
	event.UserAgent = requestcontext.UserAgent(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
		)
	}
}
