package domain

import dErrors "travelogy/pkg/domain-errors"

// ConsentType is a domain value that identifies one of the independently
// tracked permission categories.
// Invariant: the value must be one of the four supported consent types.
//
// Usage: construct via ParseConsentType at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type ConsentType string

// Supported consent types. Location tracking doubles as the basic consent
// gate for trip and location features.
const (
	ConsentDataSharing      ConsentType = "data_sharing"
	ConsentLocationTracking ConsentType = "location_tracking"
	ConsentAnalytics        ConsentType = "analytics"
	ConsentMarketing        ConsentType = "marketing"
)

// validConsentTypes is the single source of truth for valid consent types.
var validConsentTypes = map[ConsentType]bool{
	ConsentDataSharing:      true,
	ConsentLocationTracking: true,
	ConsentAnalytics:        true,
	ConsentMarketing:        true,
}

// AllConsentTypes returns the supported types in stable order.
func AllConsentTypes() []ConsentType {
	return []ConsentType{
		ConsentDataSharing,
		ConsentLocationTracking,
		ConsentAnalytics,
		ConsentMarketing,
	}
}

// ParseConsentType constructs a ConsentType from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported; no
// other errors are expected.
func ParseConsentType(s string) (ConsentType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "consent type cannot be empty")
	}
	t := ConsentType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid consent type")
	}
	return t, nil
}

// IsValid checks if the consent type is one of the supported enum values.
func (t ConsentType) IsValid() bool {
	return validConsentTypes[t]
}

// String returns the string representation of the consent type.
func (t ConsentType) String() string {
	return string(t)
}
