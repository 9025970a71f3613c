package httptransport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountservice "travelogy/internal/account/service"
	accountstore "travelogy/internal/account/store"
	authmodels "travelogy/internal/auth/models"
	authservice "travelogy/internal/auth/service"
	userstore "travelogy/internal/auth/store/user"
	consentservice "travelogy/internal/consent/service"
	consentstore "travelogy/internal/consent/store"
	jwttoken "travelogy/internal/jwt_token"
	tokenmodels "travelogy/internal/token/models"
	tokenservice "travelogy/internal/token/service"
	"travelogy/internal/token/store/blacklist"
	"travelogy/internal/token/store/refresh"
	"travelogy/pkg/domain"
	"travelogy/pkg/platform/audit"
	auditmem "travelogy/pkg/platform/audit/store/memory"
	"travelogy/pkg/testutil"
)

// routerFixture wires the full route table over memory stores so handler
// tests exercise the real middleware chain end to end.
type routerFixture struct {
	handler http.Handler
	audit   *auditmem.Store
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditStore := auditmem.New()
	publisher := audit.NewPublisher(auditStore)

	jwtService := jwttoken.NewJWTService("test-signing-key", "travelogy", "travelogy-api")
	tokens := tokenservice.NewService(
		jwtService,
		refresh.NewMemoryStore(),
		blacklist.NewMemoryBlacklist(),
		15*time.Minute,
		7*24*time.Hour,
		publisher,
		nil,
		logger,
	)

	users := userstore.NewMemoryStore()
	auth := authservice.NewService(users, tokens, publisher, nil, logger)
	consent := consentservice.NewService(
		consentstore.NewMemoryStore(),
		users,
		consentservice.NewShardedTx(),
		publisher,
		nil,
		nil,
		logger,
	)
	account := accountservice.NewService(accountstore.NewMemoryStore())

	router := NewRouter(
		RouterConfig{
			Logger:        logger,
			JWTValidator:  jwttoken.NewJWTServiceAdapter(jwtService),
			ActiveChecker: auth,
		},
		NewAuthHandler(auth, tokens, logger),
		NewConsentHandler(consent, logger),
		NewAccountHandler(account, logger),
	)

	return &routerFixture{handler: router, audit: auditStore}
}

type authResponseBody struct {
	Message string                 `json:"message"`
	User    *authmodels.User       `json:"user"`
	Tokens  *tokenmodels.TokenPair `json:"tokens"`
}

func (f *routerFixture) register(t *testing.T, email, password string) *authResponseBody {
	t.Helper()

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"password": password,
	})
	rr := testutil.DoRequest(f.handler, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	body := testutil.UnmarshalResponse[authResponseBody](t, rr)
	require.NotNil(t, body.Tokens)
	return body
}

func (f *routerFixture) authedJSON(t *testing.T, method, path, accessToken string, body any) *http.Request {
	t.Helper()
	req := testutil.NewJSONRequest(t, method, path, body)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	return req
}

func (f *routerFixture) authedGet(t *testing.T, path, accessToken string) *http.Request {
	t.Helper()
	req := testutil.NewRequest(t, http.MethodGet, path)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	return req
}

func Test_HandleRegister(t *testing.T) {
	t.Run("returns created user with token pair", func(t *testing.T) {
		f := newRouterFixture(t)

		body := f.register(t, "traveler@example.com", "sturdy-password-1")

		assert.Equal(t, "User registered successfully", body.Message)
		require.NotNil(t, body.User)
		assert.Equal(t, "traveler@example.com", body.User.Email)
		assert.True(t, body.User.IsActive)
		assert.False(t, body.User.DataSharingConsent)
		assert.False(t, body.User.LocationTrackingConsent)
		assert.False(t, body.User.AnalyticsConsent)
		assert.False(t, body.User.MarketingConsent)
		assert.NotEmpty(t, body.Tokens.AccessToken)
		assert.NotEmpty(t, body.Tokens.RefreshToken)
	})

	t.Run("serializes user id as UUID string", func(t *testing.T) {
		f := newRouterFixture(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"email":    "traveler@example.com",
			"password": "sturdy-password-1",
		})
		rr := testutil.DoRequest(f.handler, req)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		var raw struct {
			User map[string]json.RawMessage `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))

		var rawID string
		require.NoError(t, json.Unmarshal(raw.User["id"], &rawID))
		_, err := domain.ParseUserID(rawID)
		assert.NoError(t, err)
	})

	t.Run("rejects duplicate email with conflict", func(t *testing.T) {
		f := newRouterFixture(t)
		f.register(t, "traveler@example.com", "sturdy-password-1")

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"email":    "Traveler@Example.com",
			"password": "sturdy-password-1",
		})
		rr := testutil.DoRequest(f.handler, req)

		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		f := newRouterFixture(t)

		req := testutil.NewRequestWithBody(t, http.MethodPost, "/api/auth/register", "{not json")
		rr := testutil.DoRequest(f.handler, req)

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("rejects non-json content type", func(t *testing.T) {
		f := newRouterFixture(t)

		req := testutil.NewRequestWithBody(t, http.MethodPost, "/api/auth/register", "email=x")
		req.Header.Set("Content-Type", "text/plain")
		rr := testutil.DoRequest(f.handler, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	})
}

func Test_HandleLogin(t *testing.T) {
	t.Run("returns fresh token pair for valid credentials", func(t *testing.T) {
		f := newRouterFixture(t)
		f.register(t, "traveler@example.com", "sturdy-password-1")

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "traveler@example.com",
			"password": "sturdy-password-1",
		})
		rr := testutil.DoRequest(f.handler, req)

		testutil.AssertStatusOK(t, rr)
		body := testutil.UnmarshalResponse[authResponseBody](t, rr)
		assert.Equal(t, "Login successful", body.Message)
		assert.NotEmpty(t, body.Tokens.AccessToken)
	})

	t.Run("wrong password and unknown email return the same error", func(t *testing.T) {
		f := newRouterFixture(t)
		f.register(t, "traveler@example.com", "sturdy-password-1")

		wrongPassword := testutil.DoRequest(f.handler, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "traveler@example.com",
			"password": "not-the-password",
		}))
		unknownEmail := testutil.DoRequest(f.handler, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "nobody@example.com",
			"password": "sturdy-password-1",
		}))

		testutil.AssertStatusAndError(t, wrongPassword, http.StatusUnauthorized, "unauthorized")
		testutil.AssertStatusAndError(t, unknownEmail, http.StatusUnauthorized, "unauthorized")
		assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	})
}

func Test_HandleTokenRefresh(t *testing.T) {
	t.Run("valid refresh token yields a new access token", func(t *testing.T) {
		f := newRouterFixture(t)
		body := f.register(t, "traveler@example.com", "sturdy-password-1")

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/token/refresh", map[string]string{
			"refresh": body.Tokens.RefreshToken,
		})
		rr := testutil.DoRequest(f.handler, req)

		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[accessTokenResponse](t, rr)
		assert.NotEmpty(t, resp.Access)
	})

	t.Run("unknown refresh token is rejected", func(t *testing.T) {
		f := newRouterFixture(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/token/refresh", map[string]string{
			"refresh": "rt_AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		})
		rr := testutil.DoRequest(f.handler, req)

		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
	})
}

func Test_HandleLogout(t *testing.T) {
	t.Run("revoked refresh token can no longer be redeemed", func(t *testing.T) {
		f := newRouterFixture(t)
		body := f.register(t, "traveler@example.com", "sturdy-password-1")

		logout := testutil.DoRequest(f.handler, f.authedJSON(t, http.MethodPost, "/api/auth/logout", body.Tokens.AccessToken, map[string]string{
			"refresh_token": body.Tokens.RefreshToken,
		}))
		testutil.AssertStatusOK(t, logout)

		refreshAttempt := testutil.DoRequest(f.handler, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/token/refresh", map[string]string{
			"refresh": body.Tokens.RefreshToken,
		}))
		testutil.AssertStatusAndError(t, refreshAttempt, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("accepts refresh as an alias key", func(t *testing.T) {
		f := newRouterFixture(t)
		body := f.register(t, "traveler@example.com", "sturdy-password-1")

		logout := testutil.DoRequest(f.handler, f.authedJSON(t, http.MethodPost, "/api/auth/logout", body.Tokens.AccessToken, map[string]string{
			"refresh": body.Tokens.RefreshToken,
		}))
		testutil.AssertStatusOK(t, logout)

		refreshAttempt := testutil.DoRequest(f.handler, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/token/refresh", map[string]string{
			"refresh": body.Tokens.RefreshToken,
		}))
		testutil.AssertStatusAndError(t, refreshAttempt, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("malformed refresh token is a bad request", func(t *testing.T) {
		f := newRouterFixture(t)
		body := f.register(t, "traveler@example.com", "sturdy-password-1")

		rr := testutil.DoRequest(f.handler, f.authedJSON(t, http.MethodPost, "/api/auth/logout", body.Tokens.AccessToken, map[string]string{
			"refresh_token": "not-a-refresh-token",
		}))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("requires authentication", func(t *testing.T) {
		f := newRouterFixture(t)

		rr := testutil.DoRequest(f.handler, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/logout", map[string]string{
			"refresh": "rt_whatever",
		}))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func Test_HandleChangePassword(t *testing.T) {
	t.Run("new password works and old one stops working", func(t *testing.T) {
		f := newRouterFixture(t)
		body := f.register(t, "traveler@example.com", "sturdy-password-1")

		change := testutil.DoRequest(f.handler, f.authedJSON(t, http.MethodPost, "/api/auth/change-password", body.Tokens.AccessToken, map[string]string{
			"old_password": "sturdy-password-1",
			"new_password": "even-sturdier-2",
		}))
		testutil.AssertStatusOK(t, change)

		oldLogin := testutil.DoRequest(f.handler, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "traveler@example.com",
			"password": "sturdy-password-1",
		}))
		testutil.AssertStatusAndError(t, oldLogin, http.StatusUnauthorized, "unauthorized")

		newLogin := testutil.DoRequest(f.handler, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "traveler@example.com",
			"password": "even-sturdier-2",
		}))
		testutil.AssertStatusOK(t, newLogin)
	})

	t.Run("rejects wrong old password", func(t *testing.T) {
		f := newRouterFixture(t)
		body := f.register(t, "traveler@example.com", "sturdy-password-1")

		rr := testutil.DoRequest(f.handler, f.authedJSON(t, http.MethodPost, "/api/auth/change-password", body.Tokens.AccessToken, map[string]string{
			"old_password": "wrong",
			"new_password": "even-sturdier-2",
		}))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_failed")
	})
}

func Test_HandleDeleteAccount(t *testing.T) {
	t.Run("deactivated account loses API access", func(t *testing.T) {
		f := newRouterFixture(t)
		body := f.register(t, "traveler@example.com", "sturdy-password-1")

		del := testutil.DoRequest(f.handler, f.authedJSON(t, http.MethodDelete, "/api/auth/delete-account", body.Tokens.AccessToken, nil))
		testutil.AssertStatusOK(t, del)

		login := testutil.DoRequest(f.handler, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "traveler@example.com",
			"password": "sturdy-password-1",
		}))
		testutil.AssertStatusAndError(t, login, http.StatusUnauthorized, "unauthorized")

		profile := testutil.DoRequest(f.handler, f.authedGet(t, "/api/auth/profile", body.Tokens.AccessToken))
		assert.Equal(t, http.StatusUnauthorized, profile.Code)
	})
}

func Test_HandleProfile(t *testing.T) {
	t.Run("returns the authenticated user's profile", func(t *testing.T) {
		f := newRouterFixture(t)
		body := f.register(t, "traveler@example.com", "sturdy-password-1")

		rr := testutil.DoRequest(f.handler, f.authedGet(t, "/api/auth/profile", body.Tokens.AccessToken))

		testutil.AssertStatusOK(t, rr)
		user := testutil.UnmarshalResponse[authmodels.User](t, rr)
		assert.Equal(t, "traveler@example.com", user.Email)
	})

	t.Run("partial update keeps untouched fields", func(t *testing.T) {
		f := newRouterFixture(t)
		body := f.register(t, "traveler@example.com", "sturdy-password-1")

		rr := testutil.DoRequest(f.handler, f.authedJSON(t, http.MethodPut, "/api/auth/profile", body.Tokens.AccessToken, map[string]string{
			"first_name": "Ada",
		}))

		testutil.AssertStatusOK(t, rr)
		user := testutil.UnmarshalResponse[authmodels.User](t, rr)
		assert.Equal(t, "Ada", user.FirstName)
		assert.Equal(t, "en", user.PreferredLanguage)
	})

	t.Run("requires a valid access token", func(t *testing.T) {
		f := newRouterFixture(t)

		req := testutil.NewRequest(t, http.MethodGet, "/api/auth/profile")
		req.Header.Set("Authorization", "Bearer not-a-token")
		rr := testutil.DoRequest(f.handler, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func Test_HandleHealth(t *testing.T) {
	f := newRouterFixture(t)

	rr := testutil.DoRequest(f.handler, testutil.NewRequest(t, http.MethodGet, "/healthz"))

	testutil.AssertStatusOK(t, rr)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
}
