// Package domain holds typed identifiers shared across services and stores.
// Wrapping uuid.UUID in distinct named types makes cross-type assignment a
// compile error, so a user ID can never be passed where a log ID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "travelogy/pkg/domain-errors"
)

// UserID identifies a registered user.
type UserID uuid.UUID

// ConsentLogID identifies a single consent ledger entry.
type ConsentLogID uuid.UUID

// NewUserID returns a fresh random user ID.
func NewUserID() UserID {
	return UserID(uuid.New())
}

// NewConsentLogID returns a fresh random consent log entry ID.
func NewConsentLogID() ConsentLogID {
	return ConsentLogID(uuid.New())
}

// ParseUserID parses and validates a user ID from its string form.
// Empty strings, malformed values, and the nil UUID are all rejected at this
// trust boundary.
func ParseUserID(s string) (UserID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseConsentLogID parses and validates a consent log ID from its string form.
func ParseConsentLogID(s string) (ConsentLogID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return ConsentLogID{}, err
	}
	return ConsentLogID(parsed), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return parsed, nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero value.
func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText keeps the canonical UUID string form on the wire; a named type
// does not inherit it from uuid.UUID.
func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(data)
}

func (id ConsentLogID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero value.
func (id ConsentLogID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText keeps the canonical UUID string form on the wire.
func (id ConsentLogID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *ConsentLogID) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(data)
}
