package models

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	id "travelogy/pkg/domain"
)

// RefreshTokenPrefix marks opaque refresh tokens on the wire so they are
// never confused with JWTs.
const RefreshTokenPrefix = "rt_"

const refreshTokenEntropyBytes = 32

// TokenPair is what login and registration hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// RefreshTokenRecord is the persisted form of an issued refresh token. The
// token string itself is the lookup key; records are immutable once created.
type RefreshTokenRecord struct {
	Token     string
	UserID    id.UserID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ExpiredAt reports whether the record is past its lifetime at the given
// instant.
func (r *RefreshTokenRecord) ExpiredAt(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && r.ExpiresAt.Before(now)
}

// NewRefreshToken mints an opaque refresh token from a CSPRNG. Tokens carry
// no claims; everything about them lives in the store record.
func NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return RefreshTokenPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// HasRefreshShape is the cheap structural check applied before any store
// lookup. It rejects garbage early but deliberately says nothing about
// whether the token was ever issued.
func HasRefreshShape(token string) bool {
	if !strings.HasPrefix(token, RefreshTokenPrefix) {
		return false
	}
	payload := strings.TrimPrefix(token, RefreshTokenPrefix)
	if payload == "" {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(payload)
	return err == nil
}
