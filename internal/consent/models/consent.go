// Package models holds the consent ledger entry and the request/response
// shapes of the consent API.
package models

import (
	"fmt"
	"time"

	"github.com/mssola/useragent"

	"travelogy/pkg/domain"
	dErrors "travelogy/pkg/domain-errors"
)

// ConsentLog is one immutable ledger entry. Entries are appended on every
// consent update, value change or not, and are never mutated or deleted.
type ConsentLog struct {
	ID        domain.ConsentLogID `json:"id"`
	UserID    domain.UserID       `json:"user_id"`
	Type      domain.ConsentType  `json:"consent_type"`
	Granted   bool                `json:"granted"`
	IPAddress string              `json:"ip_address,omitempty"`
	UserAgent string              `json:"user_agent,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// ClientInfo renders the recorded user agent as a short human-readable
// browser/OS summary for history views. The raw string stays in UserAgent.
func (l *ConsentLog) ClientInfo() string {
	if l.UserAgent == "" {
		return ""
	}
	ua := useragent.New(l.UserAgent)
	name, version := ua.Browser()
	if name == "" {
		return l.UserAgent
	}
	if os := ua.OS(); os != "" {
		return fmt.Sprintf("%s %s on %s", name, version, os)
	}
	return fmt.Sprintf("%s %s", name, version)
}

// SetConsentRequest is the wire payload of a consent update: consent type
// names mapped to their new value.
type SetConsentRequest map[string]bool

// Changes validates the payload and converts it to typed consent changes.
func (r SetConsentRequest) Changes() (map[domain.ConsentType]bool, error) {
	if len(r) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one consent type is required")
	}
	changes := make(map[domain.ConsentType]bool, len(r))
	for name, granted := range r {
		consentType, err := domain.ParseConsentType(name)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "invalid consent type: "+name)
		}
		changes[consentType] = granted
	}
	return changes, nil
}

// ConsentStatus is the current consent state derived from the user's flags.
// The ledger is the audit trail, not the source of truth for this view.
type ConsentStatus struct {
	HasBasicConsent bool `json:"has_basic_consent"`

	DataSharing      bool `json:"data_sharing"`
	LocationTracking bool `json:"location_tracking"`
	Analytics        bool `json:"analytics"`
	Marketing        bool `json:"marketing"`
}

// Flag returns the status value for one consent type.
func (s ConsentStatus) Flag(t domain.ConsentType) bool {
	switch t {
	case domain.ConsentDataSharing:
		return s.DataSharing
	case domain.ConsentLocationTracking:
		return s.LocationTracking
	case domain.ConsentAnalytics:
		return s.Analytics
	case domain.ConsentMarketing:
		return s.Marketing
	}
	return false
}
