package httptransport

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	accountmodels "travelogy/internal/account/models"
	"travelogy/pkg/testutil"
)

func Test_HandleExtendedProfile(t *testing.T) {
	t.Run("first read creates the default profile", func(t *testing.T) {
		f := newRouterFixture(t)
		body := f.register(t, "traveler@example.com", "sturdy-password-1")

		rr := testutil.DoRequest(f.handler, f.authedGet(t, "/api/auth/profile/extended", body.Tokens.AccessToken))

		testutil.AssertStatusOK(t, rr)
		profile := testutil.UnmarshalResponse[accountmodels.UserProfile](t, rr)
		assert.False(t, profile.PublicProfile)
		assert.True(t, profile.ShowOnLeaderboard)
	})

	t.Run("partial update persists across reads", func(t *testing.T) {
		f := newRouterFixture(t)
		body := f.register(t, "traveler@example.com", "sturdy-password-1")
		access := body.Tokens.AccessToken

		update := testutil.DoRequest(f.handler, f.authedJSON(t, http.MethodPut, "/api/auth/profile/extended", access, map[string]any{
			"bio":        "Weekend cyclist",
			"occupation": "student",
		}))
		testutil.AssertStatusOK(t, update)

		rr := testutil.DoRequest(f.handler, f.authedGet(t, "/api/auth/profile/extended", access))
		profile := testutil.UnmarshalResponse[accountmodels.UserProfile](t, rr)
		assert.Equal(t, "Weekend cyclist", profile.Bio)
		assert.Equal(t, "student", profile.Occupation)
		assert.True(t, profile.ShowOnLeaderboard)
	})

	t.Run("rejects unknown occupation", func(t *testing.T) {
		f := newRouterFixture(t)
		body := f.register(t, "traveler@example.com", "sturdy-password-1")

		rr := testutil.DoRequest(f.handler, f.authedJSON(t, http.MethodPut, "/api/auth/profile/extended", body.Tokens.AccessToken, map[string]any{
			"occupation": "astronaut",
		}))

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_failed")
	})
}

func Test_HandleSettings(t *testing.T) {
	t.Run("first read creates defaults", func(t *testing.T) {
		f := newRouterFixture(t)
		body := f.register(t, "traveler@example.com", "sturdy-password-1")

		rr := testutil.DoRequest(f.handler, f.authedGet(t, "/api/auth/settings", body.Tokens.AccessToken))

		testutil.AssertStatusOK(t, rr)
		settings := testutil.UnmarshalResponse[accountmodels.UserSettings](t, rr)
		assert.True(t, settings.TripReminders)
		assert.Equal(t, 15, settings.SyncFrequency)
		assert.Equal(t, 365, settings.DataRetentionDays)
	})

	t.Run("update enforces sync frequency bounds", func(t *testing.T) {
		f := newRouterFixture(t)
		body := f.register(t, "traveler@example.com", "sturdy-password-1")
		access := body.Tokens.AccessToken

		ok := testutil.DoRequest(f.handler, f.authedJSON(t, http.MethodPut, "/api/auth/settings", access, map[string]any{
			"sync_frequency": 60,
		}))
		testutil.AssertStatusOK(t, ok)

		bad := testutil.DoRequest(f.handler, f.authedJSON(t, http.MethodPut, "/api/auth/settings", access, map[string]any{
			"sync_frequency": 0,
		}))
		testutil.AssertStatusAndError(t, bad, http.StatusBadRequest, "validation_failed")

		rr := testutil.DoRequest(f.handler, f.authedGet(t, "/api/auth/settings", access))
		settings := testutil.UnmarshalResponse[accountmodels.UserSettings](t, rr)
		assert.Equal(t, 60, settings.SyncFrequency)
	})
}

func Test_HandleStats(t *testing.T) {
	t.Run("account with no trips reports zeroes", func(t *testing.T) {
		f := newRouterFixture(t)
		body := f.register(t, "traveler@example.com", "sturdy-password-1")

		rr := testutil.DoRequest(f.handler, f.authedGet(t, "/api/auth/stats", body.Tokens.AccessToken))

		testutil.AssertStatusOK(t, rr)
		stats := testutil.UnmarshalResponse[accountmodels.TripStats](t, rr)
		assert.Zero(t, stats.TotalTrips)
		assert.Equal(t, "N/A", stats.MostUsedMode)
		assert.Zero(t, stats.CurrentStreak)
		assert.Zero(t, stats.LongestStreak)
	})

	t.Run("requires authentication", func(t *testing.T) {
		f := newRouterFixture(t)

		rr := testutil.DoRequest(f.handler, testutil.NewRequest(t, http.MethodGet, "/api/auth/stats"))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
