package httptransport

import (
	authmodels "travelogy/internal/auth/models"
	tokenmodels "travelogy/internal/token/models"
)

type authResponse struct {
	Message string                 `json:"message"`
	User    *authmodels.User       `json:"user"`
	Tokens  *tokenmodels.TokenPair `json:"tokens"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh"`
}

// logoutRequest carries the refresh token under refresh_token, with refresh
// accepted as an alias for clients that reuse the token refresh payload.
type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
	Refresh      string `json:"refresh"`
}

func (r logoutRequest) token() string {
	if r.RefreshToken != "" {
		return r.RefreshToken
	}
	return r.Refresh
}

type accessTokenResponse struct {
	Access string `json:"access"`
}
