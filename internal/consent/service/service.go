// Package service owns the consent ledger: the append-only audit trail of
// consent decisions and the current flags on the user record. The two views
// change together in one transaction.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	authmodels "travelogy/internal/auth/models"
	"travelogy/internal/consent/models"
	"travelogy/internal/platform/metrics"
	"travelogy/pkg/domain"
	dErrors "travelogy/pkg/domain-errors"
	"travelogy/pkg/platform/audit"
	"travelogy/pkg/platform/sentinel"
	"travelogy/pkg/requestcontext"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type LogStore interface {
	Append(ctx context.Context, entry *models.ConsentLog) error
	ListByUser(ctx context.Context, userID domain.UserID) ([]*models.ConsentLog, error)
}

// UserFlagStore is the slice of the user store the ledger needs: reads for
// status, flag writes inside the consent transaction.
type UserFlagStore interface {
	FindByID(ctx context.Context, userID domain.UserID) (*authmodels.User, error)
	SetConsentFlag(ctx context.Context, userID domain.UserID, consentType domain.ConsentType, granted bool, now time.Time) error
}

// Service keeps flag state and ledger in lockstep.
type Service struct {
	logs    LogStore
	users   UserFlagStore
	tx      StoreTx
	audit   *audit.Publisher
	metrics *metrics.Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

func NewService(
	logs LogStore,
	users UserFlagStore,
	tx StoreTx,
	auditPub *audit.Publisher,
	m *metrics.Metrics,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Service {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("consent")
	}
	return &Service{
		logs:    logs,
		users:   users,
		tx:      tx,
		audit:   auditPub,
		metrics: m,
		tracer:  tracer,
		logger:  logger,
	}
}

// Set applies consent changes. Every requested type gets a ledger entry,
// value change or not: the ledger records intent, not deltas. Flag update and
// append commit atomically per type inside one transaction covering the
// whole request.
func (s *Service) Set(ctx context.Context, userID domain.UserID, req models.SetConsentRequest) (*authmodels.User, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	changes, err := req.Changes()
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "consent.set",
		trace.WithAttributes(attribute.Int("consent.requested_types", len(changes))))
	defer span.End()

	now := requestcontext.Now(ctx)
	clientIP := requestcontext.ClientIP(ctx)
	clientUA := requestcontext.UserAgent(ctx)

	var applied []*models.ConsentLog
	err = s.tx.RunInTx(ctx, userID, func(txCtx context.Context) error {
		// Stable iteration so two devices writing the same types cannot
		// deadlock a database implementation on row order.
		for _, consentType := range domain.AllConsentTypes() {
			granted, requested := changes[consentType]
			if !requested {
				continue
			}
			if err := s.users.SetConsentFlag(txCtx, userID, consentType, granted, now); err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return dErrors.New(dErrors.CodeNotFound, "user not found")
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update consent flag")
			}
			entry := &models.ConsentLog{
				ID:        domain.NewConsentLogID(),
				UserID:    userID,
				Type:      consentType,
				Granted:   granted,
				IPAddress: clientIP,
				UserAgent: clientUA,
				Timestamp: now,
			}
			if err := s.logs.Append(txCtx, entry); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append consent log")
			}
			applied = append(applied, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, entry := range applied {
		s.metrics.ObserveConsent(entry.Type.String(), entry.Granted)
		s.emitAudit(ctx, entry)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// History returns the user's full ledger, newest first, across all types.
func (s *Service) History(ctx context.Context, userID domain.UserID) ([]*models.ConsentLog, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	entries, err := s.logs.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load consent history")
	}
	return entries, nil
}

// Status derives current consent state from the user's flags. The ledger is
// never consulted here.
func (s *Service) Status(ctx context.Context, userID domain.UserID) (*models.ConsentStatus, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return &models.ConsentStatus{
		HasBasicConsent:  user.HasBasicConsent(),
		DataSharing:      user.DataSharingConsent,
		LocationTracking: user.LocationTrackingConsent,
		Analytics:        user.AnalyticsConsent,
		Marketing:        user.MarketingConsent,
	}, nil
}

func (s *Service) emitAudit(ctx context.Context, entry *models.ConsentLog) {
	if s.audit == nil {
		return
	}
	action := audit.EventConsentGranted
	if !entry.Granted {
		action = audit.EventConsentRevoked
	}
	event := audit.Event{
		UserID:      entry.UserID,
		Action:      string(action),
		ConsentType: entry.Type.String(),
		Granted:     entry.Granted,
		IPAddress:   entry.IPAddress,
		UserAgent:   entry.UserAgent,
		RequestID:   requestcontext.RequestID(ctx),
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
		)
	}
}
