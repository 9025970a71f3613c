// Package service issues and retires the access/refresh token pairs backing
// API authentication. Access tokens are short-lived JWTs validated locally;
// refresh tokens are opaque, persisted, and revocable through the blacklist.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	jwttoken "travelogy/internal/jwt_token"
	"travelogy/internal/platform/metrics"
	"travelogy/internal/token/models"
	id "travelogy/pkg/domain"
	dErrors "travelogy/pkg/domain-errors"
	"travelogy/pkg/platform/audit"
	"travelogy/pkg/platform/sentinel"
	"travelogy/pkg/requestcontext"
)

type RefreshTokenStore interface {
	Create(ctx context.Context, record *models.RefreshTokenRecord) error
	Find(ctx context.Context, token string) (*models.RefreshTokenRecord, error)
	DeleteByUserID(ctx context.Context, userID id.UserID) (int, error)
}

type Blacklist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Service owns token issuance, refresh, and revocation.
type Service struct {
	jwt           *jwttoken.JWTService
	refreshTokens RefreshTokenStore
	blacklist     Blacklist
	accessTTL     time.Duration
	refreshTTL    time.Duration
	audit         *audit.Publisher
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

func NewService(
	jwt *jwttoken.JWTService,
	refreshTokens RefreshTokenStore,
	blacklist Blacklist,
	accessTTL time.Duration,
	refreshTTL time.Duration,
	auditPub *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		jwt:           jwt,
		refreshTokens: refreshTokens,
		blacklist:     blacklist,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		audit:         auditPub,
		metrics:       m,
		logger:        logger,
	}
}

// errInvalidRefresh is deliberately the same for malformed, unknown, expired
// and blacklisted tokens so callers cannot probe which case they hit.
func errInvalidRefresh() error {
	return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
}

// Issue mints a fresh token pair for the user and persists the refresh side.
func (s *Service) Issue(ctx context.Context, userID id.UserID) (*models.TokenPair, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInternal, "user ID required")
	}

	access, _, err := s.jwt.GenerateAccessToken(userID, s.accessTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign access token")
	}

	refreshToken, err := models.NewRefreshToken()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate refresh token")
	}

	now := requestcontext.Now(ctx)
	record := &models.RefreshTokenRecord{
		Token:     refreshToken,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	if err := s.refreshTokens.Create(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist refresh token")
	}

	return &models.TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

// Refresh exchanges a live refresh token for a new access token. The refresh
// token itself stays valid until revocation or expiry. The blacklist is
// consulted on every attempt.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if !models.HasRefreshShape(refreshToken) {
		s.metrics.ObserveRefresh("failure")
		return "", errInvalidRefresh()
	}

	revoked, err := s.blacklist.IsRevoked(ctx, refreshToken)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to check token blacklist")
	}
	if revoked {
		s.metrics.ObserveRefresh("failure")
		return "", errInvalidRefresh()
	}

	record, err := s.refreshTokens.Find(ctx, refreshToken)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.ObserveRefresh("failure")
		return "", errInvalidRefresh()
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up refresh token")
	}
	if record.ExpiredAt(requestcontext.Now(ctx)) {
		s.metrics.ObserveRefresh("failure")
		return "", errInvalidRefresh()
	}

	access, _, err := s.jwt.GenerateAccessToken(record.UserID, s.accessTTL)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign access token")
	}

	s.metrics.ObserveRefresh("success")
	s.emitAudit(ctx, audit.EventTokenRefreshed, record.UserID)
	return access, nil
}

// Revoke blacklists a refresh token for the remainder of its lifetime.
// Revoking an unknown or already revoked token succeeds silently; only a
// token failing the shape check is an error. Outstanding access tokens stay
// valid until natural expiry.
func (s *Service) Revoke(ctx context.Context, refreshToken string) error {
	if !models.HasRefreshShape(refreshToken) {
		return dErrors.New(dErrors.CodeBadRequest, "malformed refresh token")
	}

	record, err := s.refreshTokens.Find(ctx, refreshToken)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up refresh token")
	}

	remaining := record.ExpiresAt.Sub(requestcontext.Now(ctx))
	if remaining <= 0 {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, refreshToken, remaining); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}

	s.metrics.IncrementTokensRevoked()
	s.emitAudit(ctx, audit.EventTokenRevoked, record.UserID)
	return nil
}

// RevokeAllForUser drops every stored refresh token for the user. Used on
// account deactivation so a soft-deleted account cannot mint new access
// tokens.
func (s *Service) RevokeAllForUser(ctx context.Context, userID id.UserID) error {
	deleted, err := s.refreshTokens.DeleteByUserID(ctx, userID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke user tokens")
	}
	if deleted > 0 {
		s.metrics.IncrementTokensRevoked()
		s.emitAudit(ctx, audit.EventTokenRevoked, userID)
	}
	return nil
}

func (s *Service) emitAudit(ctx context.Context, action audit.AuditEvent, userID id.UserID) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		UserID:    userID,
		Action:    string(action),
		IPAddress: requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
		)
	}
}
