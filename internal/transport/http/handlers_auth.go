package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	authmodels "travelogy/internal/auth/models"
	"travelogy/internal/platform/middleware"
	id "travelogy/pkg/domain"
	dErrors "travelogy/pkg/domain-errors"
	"travelogy/pkg/platform/httputil"
)

// AuthService is the slice of the auth service the handlers call.
type AuthService interface {
	Register(ctx context.Context, req *authmodels.RegisterRequest) (*authmodels.AuthResult, error)
	Login(ctx context.Context, req *authmodels.LoginRequest) (*authmodels.AuthResult, error)
	ChangePassword(ctx context.Context, userID id.UserID, req *authmodels.ChangePasswordRequest) error
	Deactivate(ctx context.Context, userID id.UserID) error
	Profile(ctx context.Context, userID id.UserID) (*authmodels.User, error)
	UpdateProfile(ctx context.Context, userID id.UserID, req *authmodels.UpdateProfileRequest) (*authmodels.User, error)
}

// TokenService covers the token operations exposed over HTTP.
type TokenService interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Revoke(ctx context.Context, refreshToken string) error
}

// AuthHandler serves registration, login, token, and core profile endpoints.
type AuthHandler struct {
	auth   AuthService
	tokens TokenService
	logger *slog.Logger
}

func NewAuthHandler(auth AuthService, tokens TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, tokens: tokens, logger: logger}
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authmodels.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.auth.Register(ctx, &req)
	if err != nil {
		h.logFailure(ctx, "registration failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, authResponse{
		Message: "User registered successfully",
		User:    result.User,
		Tokens:  result.Tokens,
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authmodels.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.auth.Login(ctx, &req)
	if err != nil {
		h.logFailure(ctx, "login failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		User:    result.User,
		Tokens:  result.Tokens,
	})
}

// handleLogout revokes the submitted refresh token. The access token used to
// authenticate this call stays valid until it expires.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req logoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.tokens.Revoke(ctx, req.token()); err != nil {
		h.logFailure(ctx, "logout failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "Logout successful"})
}

func (h *AuthHandler) handleTokenRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	access, err := h.tokens.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.logFailure(ctx, "token refresh failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, accessTokenResponse{Access: access})
}

func (h *AuthHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req authmodels.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.auth.ChangePassword(ctx, userID, &req); err != nil {
		h.logFailure(ctx, "password change failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "Password changed successfully"})
}

// handleDeleteAccount soft-deletes: the row survives, the account is
// deactivated, and stored refresh tokens are dropped.
func (h *AuthHandler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := h.auth.Deactivate(ctx, userID); err != nil {
		h.logFailure(ctx, "account deletion failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, messageResponse{Message: "Account deactivated successfully"})
}

func (h *AuthHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	user, err := h.auth.Profile(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req authmodels.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	user, err := h.auth.UpdateProfile(ctx, userID, &req)
	if err != nil {
		h.logFailure(ctx, "profile update failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) logFailure(ctx context.Context, msg string, err error) {
	logFn := h.logger.WarnContext
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		logFn = h.logger.ErrorContext
	}
	logFn(ctx, msg,
		"error", err.Error(),
		"request_id", middleware.GetRequestID(ctx),
	)
}
