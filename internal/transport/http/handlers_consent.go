package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	authmodels "travelogy/internal/auth/models"
	consentmodels "travelogy/internal/consent/models"
	"travelogy/internal/platform/middleware"
	id "travelogy/pkg/domain"
	dErrors "travelogy/pkg/domain-errors"
	"travelogy/pkg/platform/httputil"
)

// ConsentService is the slice of the consent service the handlers call.
type ConsentService interface {
	Set(ctx context.Context, userID id.UserID, req consentmodels.SetConsentRequest) (*authmodels.User, error)
	History(ctx context.Context, userID id.UserID) ([]*consentmodels.ConsentLog, error)
	Status(ctx context.Context, userID id.UserID) (*consentmodels.ConsentStatus, error)
}

// ConsentHandler serves the consent management endpoints.
type ConsentHandler struct {
	consent ConsentService
	logger  *slog.Logger
}

func NewConsentHandler(consent ConsentService, logger *slog.Logger) *ConsentHandler {
	return &ConsentHandler{consent: consent, logger: logger}
}

func (h *ConsentHandler) handleSetConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req consentmodels.SetConsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	user, err := h.consent.Set(ctx, userID, req)
	if err != nil {
		h.logger.WarnContext(ctx, "consent update failed",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, consentUpdateResponse{
		Message: "Consent preferences updated",
		User:    user,
	})
}

func (h *ConsentHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	entries, err := h.consent.History(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	history := make([]consentHistoryEntry, 0, len(entries))
	for _, entry := range entries {
		history = append(history, consentHistoryEntry{
			ConsentLog: entry,
			ClientInfo: entry.ClientInfo(),
		})
	}

	httputil.WriteJSON(w, http.StatusOK, consentHistoryResponse{History: history})
}

func (h *ConsentHandler) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	status, err := h.consent.Status(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, status)
}

type consentUpdateResponse struct {
	Message string           `json:"message"`
	User    *authmodels.User `json:"user"`
}

// consentHistoryEntry decorates a ledger entry with the parsed browser/OS
// summary of its recorded user agent.
type consentHistoryEntry struct {
	*consentmodels.ConsentLog
	ClientInfo string `json:"client_info,omitempty"`
}

type consentHistoryResponse struct {
	History []consentHistoryEntry `json:"history"`
}
