package service

import (
	"context"
	"testing"
	"time"

	"travelogy/internal/account/models"
	"travelogy/internal/account/store"
	id "travelogy/pkg/domain"
	dErrors "travelogy/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Profile(t *testing.T) {
	ctx := context.Background()
	userID := id.NewUserID()

	t.Run("first read creates defaults", func(t *testing.T) {
		svc := NewService(store.NewMemoryStore())
		profile, err := svc.Profile(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, userID, profile.UserID)
		assert.True(t, profile.ShowOnLeaderboard)
		assert.False(t, profile.PublicProfile)
		assert.Empty(t, profile.Bio)
	})

	t.Run("repeated reads return the same profile", func(t *testing.T) {
		svc := NewService(store.NewMemoryStore())
		bio := "always travelling"
		_, err := svc.UpdateProfile(ctx, userID, &UpdateProfileRequest{Bio: &bio})
		require.NoError(t, err)

		profile, err := svc.Profile(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "always travelling", profile.Bio)
	})

	t.Run("invalid occupation rejected", func(t *testing.T) {
		svc := NewService(store.NewMemoryStore())
		occupation := "astronaut"
		_, err := svc.UpdateProfile(ctx, userID, &UpdateProfileRequest{Occupation: &occupation})
		require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func Test_Settings(t *testing.T) {
	ctx := context.Background()
	userID := id.NewUserID()

	t.Run("defaults on first read", func(t *testing.T) {
		svc := NewService(store.NewMemoryStore())
		settings, err := svc.Settings(ctx, userID)
		require.NoError(t, err)
		assert.True(t, settings.TripReminders)
		assert.True(t, settings.AutoTripDetection)
		assert.False(t, settings.OfflineModePreferred)
		assert.Equal(t, 15, settings.SyncFrequency)
		assert.Equal(t, 365, settings.DataRetentionDays)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		svc := NewService(store.NewMemoryStore())
		offline := true
		sync := 60
		settings, err := svc.UpdateSettings(ctx, userID, &UpdateSettingsRequest{
			OfflineModePreferred: &offline,
			SyncFrequency:        &sync,
		})
		require.NoError(t, err)
		assert.True(t, settings.OfflineModePreferred)
		assert.Equal(t, 60, settings.SyncFrequency)
		assert.True(t, settings.TripReminders)
	})

	t.Run("sync frequency bounds enforced", func(t *testing.T) {
		svc := NewService(store.NewMemoryStore())
		sync := 0
		_, err := svc.UpdateSettings(ctx, userID, &UpdateSettingsRequest{SyncFrequency: &sync})
		require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func Test_Stats(t *testing.T) {
	ctx := context.Background()
	userID := id.NewUserID()

	t.Run("no trips yields zero stats", func(t *testing.T) {
		svc := NewService(store.NewMemoryStore())
		stats, err := svc.Stats(ctx, userID)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalTrips)
		assert.Equal(t, "N/A", stats.MostUsedMode)
	})

	t.Run("aggregates totals and windows", func(t *testing.T) {
		mem := store.NewMemoryStore()
		svc := NewService(mem)
		now := time.Now()

		trips := []*models.Trip{
			{UserID: userID, TransportMode: "bike", DistanceKM: 5, DurationMin: 20, StartTime: now.AddDate(0, 0, -1)},
			{UserID: userID, TransportMode: "bike", DistanceKM: 7, DurationMin: 25, StartTime: now.AddDate(0, 0, -2)},
			{UserID: userID, TransportMode: "bus", DistanceKM: 12, DurationMin: 30, StartTime: now.AddDate(0, 0, -10)},
			{UserID: userID, TransportMode: "train", DistanceKM: 200, DurationMin: 120, StartTime: now.AddDate(0, 0, -60)},
		}
		for _, trip := range trips {
			require.NoError(t, mem.AddTrip(ctx, trip))
		}

		stats, err := svc.Stats(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 4, stats.TotalTrips)
		assert.InDelta(t, 224.0, stats.TotalDistance, 0.001)
		assert.Equal(t, 195, stats.TotalDuration)
		assert.Equal(t, "bike", stats.MostUsedMode)
		assert.Equal(t, 2, stats.TripsThisWeek)
		assert.Equal(t, 3, stats.TripsThisMonth)
	})

	t.Run("streaks are fixed at zero", func(t *testing.T) {
		mem := store.NewMemoryStore()
		svc := NewService(mem)
		require.NoError(t, mem.AddTrip(ctx, &models.Trip{
			UserID: userID, TransportMode: "walk", StartTime: time.Now(),
		}))

		stats, err := svc.Stats(ctx, userID)
		require.NoError(t, err)
		assert.Zero(t, stats.CurrentStreak)
		assert.Zero(t, stats.LongestStreak)
	})
}
