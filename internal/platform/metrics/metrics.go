// Package metrics registers the Prometheus instruments for the auth and
// consent surfaces.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersCreated    prometheus.Counter
	LoginAttempts   *prometheus.CounterVec
	TokenRefreshes  *prometheus.CounterVec
	TokensRevoked   prometheus.Counter
	ConsentUpdates  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "travelogy_users_created_total",
			Help: "Total number of users registered",
		}),
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "travelogy_login_attempts_total",
			Help: "Login attempts partitioned by outcome",
		}, []string{"outcome"}),
		TokenRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "travelogy_token_refreshes_total",
			Help: "Refresh-token exchanges partitioned by outcome",
		}, []string{"outcome"}),
		TokensRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "travelogy_tokens_revoked_total",
			Help: "Refresh tokens added to the blacklist",
		}),
		ConsentUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "travelogy_consent_updates_total",
			Help: "Consent ledger appends partitioned by consent type and decision",
		}, []string{"consent_type", "granted"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "travelogy_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveLogin records a login attempt outcome ("success" or "failure").
func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// ObserveRefresh records a token refresh outcome.
func (m *Metrics) ObserveRefresh(outcome string) {
	if m == nil {
		return
	}
	m.TokenRefreshes.WithLabelValues(outcome).Inc()
}

// ObserveConsent records a consent ledger append.
func (m *Metrics) ObserveConsent(consentType string, granted bool) {
	if m == nil {
		return
	}
	decision := "false"
	if granted {
		decision = "true"
	}
	m.ConsentUpdates.WithLabelValues(consentType, decision).Inc()
}

// IncrementUsersCreated increments the users created counter by 1.
func (m *Metrics) IncrementUsersCreated() {
	if m == nil {
		return
	}
	m.UsersCreated.Inc()
}

// IncrementTokensRevoked increments the revoked token counter by 1.
func (m *Metrics) IncrementTokensRevoked() {
	if m == nil {
		return
	}
	m.TokensRevoked.Inc()
}
