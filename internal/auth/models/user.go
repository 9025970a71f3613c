// Package models holds the identity aggregate and the request/response shapes
// the auth service accepts.
package models

import (
	"strings"
	"time"

	"travelogy/pkg/domain"
)

// User is the primary identity record. Email is the sole login identifier and
// is globally unique. Users are never hard-deleted; Deactivate flips IsActive
// and leaves the row (and its consent history) intact.
type User struct {
	ID           domain.UserID `json:"id"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`

	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	City        string `json:"city,omitempty"`
	Country     string `json:"country,omitempty"`

	PreferredLanguage string `json:"preferred_language"`
	Timezone          string `json:"timezone"`

	// Independent consent flags. The consent ledger is the audit trail;
	// these flags are the source of truth for current state.
	DataSharingConsent      bool `json:"data_sharing_consent"`
	LocationTrackingConsent bool `json:"location_tracking_consent"`
	AnalyticsConsent        bool `json:"analytics_consent"`
	MarketingConsent        bool `json:"marketing_consent"`

	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastActivity time.Time `json:"last_activity"`
}

// FullName joins first and last name, tolerating either being empty.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasBasicConsent reports whether location tracking has been consented to.
// Trip and location features must check this gate before accepting data.
func (u *User) HasBasicConsent() bool {
	return u.LocationTrackingConsent
}

// ConsentFlag returns the current value of one consent flag.
func (u *User) ConsentFlag(t domain.ConsentType) bool {
	switch t {
	case domain.ConsentDataSharing:
		return u.DataSharingConsent
	case domain.ConsentLocationTracking:
		return u.LocationTrackingConsent
	case domain.ConsentAnalytics:
		return u.AnalyticsConsent
	case domain.ConsentMarketing:
		return u.MarketingConsent
	}
	return false
}

// SetConsentFlag updates one consent flag in place.
func (u *User) SetConsentFlag(t domain.ConsentType, granted bool) {
	switch t {
	case domain.ConsentDataSharing:
		u.DataSharingConsent = granted
	case domain.ConsentLocationTracking:
		u.LocationTrackingConsent = granted
	case domain.ConsentAnalytics:
		u.AnalyticsConsent = granted
	case domain.ConsentMarketing:
		u.MarketingConsent = granted
	}
}
