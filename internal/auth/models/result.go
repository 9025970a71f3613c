package models

import (
	tokenmodels "travelogy/internal/token/models"
)

// AuthResult pairs the authenticated user with the freshly issued tokens.
// Registration and login both return it.
type AuthResult struct {
	User   *User
	Tokens *tokenmodels.TokenPair
}
