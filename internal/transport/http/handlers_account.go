package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	accountmodels "travelogy/internal/account/models"
	accountservice "travelogy/internal/account/service"
	"travelogy/internal/platform/middleware"
	id "travelogy/pkg/domain"
	dErrors "travelogy/pkg/domain-errors"
	"travelogy/pkg/platform/httputil"
)

// AccountService is the slice of the account service the handlers call.
type AccountService interface {
	Profile(ctx context.Context, userID id.UserID) (*accountmodels.UserProfile, error)
	UpdateProfile(ctx context.Context, userID id.UserID, req *accountservice.UpdateProfileRequest) (*accountmodels.UserProfile, error)
	Settings(ctx context.Context, userID id.UserID) (*accountmodels.UserSettings, error)
	UpdateSettings(ctx context.Context, userID id.UserID, req *accountservice.UpdateSettingsRequest) (*accountmodels.UserSettings, error)
	Stats(ctx context.Context, userID id.UserID) (*accountmodels.TripStats, error)
}

// AccountHandler serves the extended profile, settings, and stats endpoints.
type AccountHandler struct {
	account AccountService
	logger  *slog.Logger
}

func NewAccountHandler(account AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{account: account, logger: logger}
}

func (h *AccountHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := h.account.Profile(ctx, middleware.GetUserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *AccountHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req accountservice.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	profile, err := h.account.UpdateProfile(ctx, middleware.GetUserID(ctx), &req)
	if err != nil {
		h.logFailure(ctx, "profile update failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *AccountHandler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settings, err := h.account.Settings(ctx, middleware.GetUserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, settings)
}

func (h *AccountHandler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req accountservice.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	settings, err := h.account.UpdateSettings(ctx, middleware.GetUserID(ctx), &req)
	if err != nil {
		h.logFailure(ctx, "settings update failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, settings)
}

func (h *AccountHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.account.Stats(ctx, middleware.GetUserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *AccountHandler) logFailure(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", middleware.GetRequestID(ctx),
	)
}
