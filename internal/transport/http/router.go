// Package httptransport is the thin HTTP layer: decode, validate, delegate,
// translate errors. No business logic lives here.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"travelogy/internal/platform/metrics"
	"travelogy/internal/platform/middleware"
)

// RouterConfig bundles what the router needs beyond the handlers.
type RouterConfig struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	JWTValidator   middleware.JWTValidator
	ActiveChecker  middleware.ActiveChecker
	RequestTimeout time.Duration
}

// NewRouter assembles the full route table. Open routes skip only RequireAuth;
// the rest of the chain is shared.
func NewRouter(cfg RouterConfig, auth *AuthHandler, consent *ConsentHandler, account *AccountHandler) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Latency(cfg.Metrics))

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.ContentTypeJSON)
			r.Post("/register", auth.handleRegister)
			r.Post("/login", auth.handleLogin)
			r.Post("/token/refresh", auth.handleTokenRefresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.ContentTypeJSON)
			r.Use(middleware.RequireAuth(cfg.JWTValidator, cfg.ActiveChecker, cfg.Logger))

			r.Post("/logout", auth.handleLogout)
			r.Post("/change-password", auth.handleChangePassword)
			r.Delete("/delete-account", auth.handleDeleteAccount)
			r.Get("/profile", auth.handleGetProfile)
			r.Put("/profile", auth.handleUpdateProfile)

			r.Post("/consent", consent.handleSetConsent)
			r.Get("/consent/history", consent.handleHistory)
			r.Get("/consent/check", consent.handleCheck)

			r.Get("/profile/extended", account.handleGetProfile)
			r.Put("/profile/extended", account.handleUpdateProfile)
			r.Get("/settings", account.handleGetSettings)
			r.Put("/settings", account.handleUpdateSettings)
			r.Get("/stats", account.handleStats)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
