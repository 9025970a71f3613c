// Package audit captures structured compliance and security events emitted
// from domain logic. The consent ledger in Postgres is the authoritative
// audit trail for consent; this pipeline is the operational feed (SIEM,
// long-retention compliance topic).
package audit

import (
	"context"
	"time"

	id "travelogy/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance
	// requiring long retention: consent changes, account lifecycle.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring:
	// failed logins, token revocations, password changes.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine events useful for debugging;
	// these can be sampled with short retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	UserID    id.UserID
	Email     string
	Action    string
	Reason    string

	// Consent enrichment, set only for consent events.
	ConsentType string
	Granted     bool

	// Request correlation.
	IPAddress string
	UserAgent string
	RequestID string
}

// AuditEvent names the actions this system records.
type AuditEvent string

const (
	EventUserCreated     AuditEvent = "user_created"
	EventUserDeactivated AuditEvent = "user_deactivated"
	EventLoginSucceeded  AuditEvent = "login_succeeded"
	EventAuthFailed      AuditEvent = "auth_failed"
	EventPasswordChanged AuditEvent = "password_changed"
	EventTokenRefreshed  AuditEvent = "token_refreshed"
	EventTokenRevoked    AuditEvent = "token_revoked"
	EventConsentGranted  AuditEvent = "consent_granted"
	EventConsentRevoked  AuditEvent = "consent_revoked"
)

// eventCategories maps each audit event to its category and is the single
// source of truth for routing.
var eventCategories = map[AuditEvent]EventCategory{
	EventUserCreated:     CategoryCompliance,
	EventUserDeactivated: CategoryCompliance,
	EventConsentGranted:  CategoryCompliance,
	EventConsentRevoked:  CategoryCompliance,

	EventAuthFailed:      CategorySecurity,
	EventPasswordChanged: CategorySecurity,
	EventTokenRevoked:    CategorySecurity,

	EventLoginSucceeded: CategoryOperations,
	EventTokenRefreshed: CategoryOperations,
}

// Category returns the category for the event, defaulting to operations for
// unknown actions so nothing is silently dropped.
func (e AuditEvent) Category() EventCategory {
	if category, ok := eventCategories[e]; ok {
		return category
	}
	return CategoryOperations
}

// Store is the persistence boundary for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
