package models

import (
	"strings"
	"unicode"

	"github.com/asaskevich/govalidator"

	dErrors "travelogy/pkg/domain-errors"
)

// RegisterRequest carries the registration payload. Consent flags may be set
// at registration; they default to false and do not produce ledger entries
// (only explicit consent updates are audited).
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	DateOfBirth string `json:"date_of_birth"`
	City        string `json:"city"`
	Country     string `json:"country"`

	DataSharingConsent      bool `json:"data_sharing_consent"`
	LocationTrackingConsent bool `json:"location_tracking_consent"`
	AnalyticsConsent        bool `json:"analytics_consent"`
	MarketingConsent        bool `json:"marketing_consent"`
}

// Normalize trims whitespace and lowercases the email so uniqueness is
// case-insensitive.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.City = strings.TrimSpace(r.City)
	r.Country = strings.TrimSpace(r.Country)
}

// Validate checks field shapes and the password policy.
func (r *RegisterRequest) Validate() error {
	if !govalidator.StringLength(r.Email, "1", "255") || !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "invalid email")
	}
	if err := ValidatePassword(r.Password); err != nil {
		return err
	}
	if len(r.FirstName) > 150 || len(r.LastName) > 150 {
		return dErrors.New(dErrors.CodeValidation, "name too long")
	}
	if r.PhoneNumber != "" && !govalidator.StringLength(r.PhoneNumber, "3", "15") {
		return dErrors.New(dErrors.CodeValidation, "invalid phone number")
	}
	if r.DateOfBirth != "" && !govalidator.IsTime(r.DateOfBirth, "2006-01-02") {
		return dErrors.New(dErrors.CodeValidation, "date_of_birth must be YYYY-MM-DD")
	}
	return nil
}

// LoginRequest carries the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize lowercases the email to match registration normalization.
func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate checks that both fields are present. Shape errors beyond presence
// are not reported here; login failures must not reveal which part was wrong.
func (r *LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return nil
}

// ChangePasswordRequest carries a password change for an authenticated user.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Validate checks presence and the policy on the new password.
func (r *ChangePasswordRequest) Validate() error {
	if r.OldPassword == "" {
		return dErrors.New(dErrors.CodeValidation, "old_password is required")
	}
	return ValidatePassword(r.NewPassword)
}

// UpdateProfileRequest carries a partial update of the user's core profile
// fields. Nil pointers leave the field untouched.
type UpdateProfileRequest struct {
	FirstName         *string `json:"first_name"`
	LastName          *string `json:"last_name"`
	PhoneNumber       *string `json:"phone_number"`
	DateOfBirth       *string `json:"date_of_birth"`
	City              *string `json:"city"`
	Country           *string `json:"country"`
	PreferredLanguage *string `json:"preferred_language"`
	Timezone          *string `json:"timezone"`
}

// Validate bounds the updatable fields.
func (r *UpdateProfileRequest) Validate() error {
	if r.DateOfBirth != nil && *r.DateOfBirth != "" && !govalidator.IsTime(*r.DateOfBirth, "2006-01-02") {
		return dErrors.New(dErrors.CodeValidation, "date_of_birth must be YYYY-MM-DD")
	}
	if r.PreferredLanguage != nil && len(*r.PreferredLanguage) > 10 {
		return dErrors.New(dErrors.CodeValidation, "preferred_language too long")
	}
	if r.Timezone != nil && len(*r.Timezone) > 50 {
		return dErrors.New(dErrors.CodeValidation, "timezone too long")
	}
	return nil
}

// ValidatePassword enforces the minimum-strength policy: at least 8
// characters with one letter and one digit. The plaintext never leaves the
// request path.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return dErrors.New(dErrors.CodeValidation, "password must contain a letter and a digit")
	}
	return nil
}
