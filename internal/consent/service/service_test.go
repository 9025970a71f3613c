package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	authmodels "travelogy/internal/auth/models"
	userstore "travelogy/internal/auth/store/user"
	"travelogy/internal/consent/models"
	"travelogy/internal/consent/store"
	"travelogy/pkg/domain"
	dErrors "travelogy/pkg/domain-errors"
	"travelogy/pkg/platform/audit"
	auditmem "travelogy/pkg/platform/audit/store/memory"
	"travelogy/pkg/requestcontext"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type consentFixture struct {
	service *Service
	users   *userstore.MemoryStore
	logs    *store.MemoryStore
	audit   *auditmem.Store
	userID  domain.UserID
}

func newConsentFixture(t *testing.T) *consentFixture {
	t.Helper()
	users := userstore.NewMemoryStore()
	logs := store.NewMemoryStore()
	auditStore := auditmem.New()
	svc := NewService(
		logs,
		users,
		NewShardedTx(),
		audit.NewPublisher(auditStore),
		nil,
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	userID := domain.NewUserID()
	require.NoError(t, users.Create(context.Background(), newTestUser(userID)))
	return &consentFixture{service: svc, users: users, logs: logs, audit: auditStore, userID: userID}
}

func Test_Set(t *testing.T) {
	ctx := context.Background()

	t.Run("flag and ledger change together", func(t *testing.T) {
		f := newConsentFixture(t)
		user, err := f.service.Set(ctx, f.userID, models.SetConsentRequest{
			"location_tracking": true,
		})
		require.NoError(t, err)
		assert.True(t, user.LocationTrackingConsent)
		assert.True(t, user.HasBasicConsent())

		history, err := f.service.History(ctx, f.userID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, domain.ConsentLocationTracking, history[0].Type)
		assert.True(t, history[0].Granted)
	})

	t.Run("history grows by one entry per update even without change", func(t *testing.T) {
		f := newConsentFixture(t)
		for i := 1; i <= 3; i++ {
			_, err := f.service.Set(ctx, f.userID, models.SetConsentRequest{
				"analytics": true,
			})
			require.NoError(t, err)

			history, err := f.service.History(ctx, f.userID)
			require.NoError(t, err)
			assert.Len(t, history, i)
		}
	})

	t.Run("status matches the newest entry per type", func(t *testing.T) {
		f := newConsentFixture(t)
		steps := []bool{true, false, true, false}
		for _, granted := range steps {
			_, err := f.service.Set(ctx, f.userID, models.SetConsentRequest{
				"marketing": granted,
			})
			require.NoError(t, err)

			status, err := f.service.Status(ctx, f.userID)
			require.NoError(t, err)
			assert.Equal(t, granted, status.Marketing)

			history, err := f.service.History(ctx, f.userID)
			require.NoError(t, err)
			assert.Equal(t, granted, history[0].Granted)
		}
	})

	t.Run("multiple types in one request each get an entry", func(t *testing.T) {
		f := newConsentFixture(t)
		user, err := f.service.Set(ctx, f.userID, models.SetConsentRequest{
			"data_sharing":      true,
			"location_tracking": true,
			"marketing":         false,
		})
		require.NoError(t, err)
		assert.True(t, user.DataSharingConsent)
		assert.True(t, user.LocationTrackingConsent)
		assert.False(t, user.MarketingConsent)

		history, err := f.service.History(ctx, f.userID)
		require.NoError(t, err)
		assert.Len(t, history, 3)
	})

	t.Run("unknown consent type rejected without side effects", func(t *testing.T) {
		f := newConsentFixture(t)
		_, err := f.service.Set(ctx, f.userID, models.SetConsentRequest{
			"telepathy": true,
		})
		require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		history, err := f.service.History(ctx, f.userID)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("empty request rejected", func(t *testing.T) {
		f := newConsentFixture(t)
		_, err := f.service.Set(ctx, f.userID, models.SetConsentRequest{})
		require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("unknown user not found", func(t *testing.T) {
		f := newConsentFixture(t)
		_, err := f.service.Set(ctx, domain.NewUserID(), models.SetConsentRequest{
			"analytics": true,
		})
		require.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("entry captures request metadata", func(t *testing.T) {
		f := newConsentFixture(t)
		reqCtx := requestcontext.WithClientMetadata(ctx, "203.0.113.7", "travelogy-app/2.1")

		_, err := f.service.Set(reqCtx, f.userID, models.SetConsentRequest{
			"data_sharing": true,
		})
		require.NoError(t, err)

		history, err := f.service.History(ctx, f.userID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "203.0.113.7", history[0].IPAddress)
		assert.Equal(t, "travelogy-app/2.1", history[0].UserAgent)
	})

	t.Run("grant and revoke emit matching audit events", func(t *testing.T) {
		f := newConsentFixture(t)
		_, err := f.service.Set(ctx, f.userID, models.SetConsentRequest{"analytics": true})
		require.NoError(t, err)
		_, err = f.service.Set(ctx, f.userID, models.SetConsentRequest{"analytics": false})
		require.NoError(t, err)

		events := f.audit.Events()
		require.Len(t, events, 2)
		assert.Equal(t, string(audit.EventConsentGranted), events[0].Action)
		assert.Equal(t, string(audit.EventConsentRevoked), events[1].Action)
		assert.Equal(t, "analytics", events[0].ConsentType)
	})

	t.Run("concurrent updates from two devices keep views consistent", func(t *testing.T) {
		f := newConsentFixture(t)
		const attempts = 20

		var wg sync.WaitGroup
		for i := range attempts {
			wg.Add(1)
			go func(granted bool) {
				defer wg.Done()
				_, err := f.service.Set(ctx, f.userID, models.SetConsentRequest{
					"location_tracking": granted,
				})
				assert.NoError(t, err)
			}(i%2 == 0)
		}
		wg.Wait()

		history, err := f.service.History(ctx, f.userID)
		require.NoError(t, err)
		require.Len(t, history, attempts)

		status, err := f.service.Status(ctx, f.userID)
		require.NoError(t, err)
		assert.Equal(t, history[0].Granted, status.LocationTracking)
	})
}

func Test_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh user has no consents", func(t *testing.T) {
		f := newConsentFixture(t)
		status, err := f.service.Status(ctx, f.userID)
		require.NoError(t, err)
		assert.False(t, status.HasBasicConsent)
		assert.False(t, status.DataSharing)
		assert.False(t, status.LocationTracking)
		assert.False(t, status.Analytics)
		assert.False(t, status.Marketing)
	})

	t.Run("basic consent follows location tracking only", func(t *testing.T) {
		f := newConsentFixture(t)
		_, err := f.service.Set(ctx, f.userID, models.SetConsentRequest{
			"data_sharing": true,
			"analytics":    true,
			"marketing":    true,
		})
		require.NoError(t, err)

		status, err := f.service.Status(ctx, f.userID)
		require.NoError(t, err)
		assert.False(t, status.HasBasicConsent)

		_, err = f.service.Set(ctx, f.userID, models.SetConsentRequest{
			"location_tracking": true,
		})
		require.NoError(t, err)

		status, err = f.service.Status(ctx, f.userID)
		require.NoError(t, err)
		assert.True(t, status.HasBasicConsent)
	})
}

func newTestUser(userID domain.UserID) *authmodels.User {
	return &authmodels.User{
		ID:        userID,
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Walker",
		IsActive:  true,
	}
}

// spanRecorder counts started spans so tests can assert a provided tracer is
// actually used instead of being replaced with the noop fallback.
type spanRecorder struct {
	trace.Tracer
	started []string
}

func (r *spanRecorder) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	r.started = append(r.started, name)
	return r.Tracer.Start(ctx, name, opts...)
}

func Test_Set_UsesProvidedTracer(t *testing.T) {
	users := userstore.NewMemoryStore()
	recorder := &spanRecorder{Tracer: noop.NewTracerProvider().Tracer("test")}
	svc := NewService(
		store.NewMemoryStore(),
		users,
		NewShardedTx(),
		audit.NewPublisher(auditmem.New()),
		nil,
		recorder,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	userID := domain.NewUserID()
	require.NoError(t, users.Create(context.Background(), newTestUser(userID)))

	_, err := svc.Set(context.Background(), userID, models.SetConsentRequest{
		"analytics": true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"consent.set"}, recorder.started)
}
