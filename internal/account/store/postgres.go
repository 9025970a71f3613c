package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"travelogy/internal/account/models"
	id "travelogy/pkg/domain"
)

// PostgresStore persists profiles and settings and runs trip aggregation in
// SQL. Get-or-create uses INSERT ... ON CONFLICT DO NOTHING followed by a
// read, so concurrent first reads converge on one row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindOrCreateProfile(ctx context.Context, userID id.UserID, now time.Time) (*models.UserProfile, error) {
	defaults := models.NewUserProfile(userID, now)
	insert := `
		INSERT INTO user_profiles (user_id, bio, occupation, preferred_transport_modes,
			frequent_destinations, public_profile, show_on_leaderboard, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, insert,
		userID.String(), defaults.Bio, defaults.Occupation,
		pq.Array(defaults.PreferredTransportModes), pq.Array(defaults.FrequentDestinations),
		defaults.PublicProfile, defaults.ShowOnLeaderboard, defaults.CreatedAt, defaults.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create default profile: %w", err)
	}
	return s.findProfile(ctx, userID)
}

func (s *PostgresStore) findProfile(ctx context.Context, userID id.UserID) (*models.UserProfile, error) {
	query := `
		SELECT user_id, bio, occupation, preferred_transport_modes, frequent_destinations,
			public_profile, show_on_leaderboard, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`
	var (
		profile models.UserProfile
		rawID   string
	)
	err := s.db.QueryRowContext(ctx, query, userID.String()).Scan(
		&rawID, &profile.Bio, &profile.Occupation,
		pq.Array(&profile.PreferredTransportModes), pq.Array(&profile.FrequentDestinations),
		&profile.PublicProfile, &profile.ShowOnLeaderboard,
		&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	parsed, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, fmt.Errorf("corrupt user id on profile: %w", err)
	}
	profile.UserID = parsed
	return &profile, nil
}

func (s *PostgresStore) UpsertProfile(ctx context.Context, profile *models.UserProfile) error {
	query := `
		INSERT INTO user_profiles (user_id, bio, occupation, preferred_transport_modes,
			frequent_destinations, public_profile, show_on_leaderboard, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			bio = EXCLUDED.bio,
			occupation = EXCLUDED.occupation,
			preferred_transport_modes = EXCLUDED.preferred_transport_modes,
			frequent_destinations = EXCLUDED.frequent_destinations,
			public_profile = EXCLUDED.public_profile,
			show_on_leaderboard = EXCLUDED.show_on_leaderboard,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		profile.UserID.String(), profile.Bio, profile.Occupation,
		pq.Array(profile.PreferredTransportModes), pq.Array(profile.FrequentDestinations),
		profile.PublicProfile, profile.ShowOnLeaderboard, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindOrCreateSettings(ctx context.Context, userID id.UserID, now time.Time) (*models.UserSettings, error) {
	defaults := models.NewUserSettings(userID, now)
	insert := `
		INSERT INTO user_settings (user_id, trip_reminders, weekly_summary, achievement_notifications,
			auto_trip_detection, confirm_trips, offline_mode_preferred,
			sync_frequency, data_retention_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, insert,
		userID.String(), defaults.TripReminders, defaults.WeeklySummary, defaults.AchievementNotifications,
		defaults.AutoTripDetection, defaults.ConfirmTrips, defaults.OfflineModePreferred,
		defaults.SyncFrequency, defaults.DataRetentionDays, defaults.CreatedAt, defaults.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create default settings: %w", err)
	}
	return s.findSettings(ctx, userID)
}

func (s *PostgresStore) findSettings(ctx context.Context, userID id.UserID) (*models.UserSettings, error) {
	query := `
		SELECT user_id, trip_reminders, weekly_summary, achievement_notifications,
			auto_trip_detection, confirm_trips, offline_mode_preferred,
			sync_frequency, data_retention_days, created_at, updated_at
		FROM user_settings
		WHERE user_id = $1
	`
	var (
		settings models.UserSettings
		rawID    string
	)
	err := s.db.QueryRowContext(ctx, query, userID.String()).Scan(
		&rawID, &settings.TripReminders, &settings.WeeklySummary, &settings.AchievementNotifications,
		&settings.AutoTripDetection, &settings.ConfirmTrips, &settings.OfflineModePreferred,
		&settings.SyncFrequency, &settings.DataRetentionDays,
		&settings.CreatedAt, &settings.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("find settings: %w", err)
	}
	parsed, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, fmt.Errorf("corrupt user id on settings: %w", err)
	}
	settings.UserID = parsed
	return &settings, nil
}

func (s *PostgresStore) UpsertSettings(ctx context.Context, settings *models.UserSettings) error {
	query := `
		INSERT INTO user_settings (user_id, trip_reminders, weekly_summary, achievement_notifications,
			auto_trip_detection, confirm_trips, offline_mode_preferred,
			sync_frequency, data_retention_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			trip_reminders = EXCLUDED.trip_reminders,
			weekly_summary = EXCLUDED.weekly_summary,
			achievement_notifications = EXCLUDED.achievement_notifications,
			auto_trip_detection = EXCLUDED.auto_trip_detection,
			confirm_trips = EXCLUDED.confirm_trips,
			offline_mode_preferred = EXCLUDED.offline_mode_preferred,
			sync_frequency = EXCLUDED.sync_frequency,
			data_retention_days = EXCLUDED.data_retention_days,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		settings.UserID.String(), settings.TripReminders, settings.WeeklySummary,
		settings.AchievementNotifications, settings.AutoTripDetection, settings.ConfirmTrips,
		settings.OfflineModePreferred, settings.SyncFrequency, settings.DataRetentionDays,
		settings.CreatedAt, settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddTrip(ctx context.Context, trip *models.Trip) error {
	query := `
		INSERT INTO trips (user_id, transport_mode, distance_km, duration_minutes, start_time)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		trip.UserID.String(), trip.TransportMode, trip.DistanceKM, trip.DurationMin, trip.StartTime)
	if err != nil {
		return fmt.Errorf("add trip: %w", err)
	}
	return nil
}

func (s *PostgresStore) AggregateTrips(ctx context.Context, userID id.UserID, now time.Time) (*models.TripStats, error) {
	stats := &models.TripStats{MostUsedMode: "N/A"}

	totals := `
		SELECT COUNT(*),
			COALESCE(SUM(distance_km), 0),
			COALESCE(SUM(duration_minutes), 0),
			COUNT(*) FILTER (WHERE start_time >= $2),
			COUNT(*) FILTER (WHERE start_time >= $3)
		FROM trips
		WHERE user_id = $1
	`
	err := s.db.QueryRowContext(ctx, totals,
		userID.String(), now.AddDate(0, 0, -7), now.AddDate(0, 0, -30)).Scan(
		&stats.TotalTrips, &stats.TotalDistance, &stats.TotalDuration,
		&stats.TripsThisWeek, &stats.TripsThisMonth)
	if err != nil {
		return nil, fmt.Errorf("aggregate trips: %w", err)
	}

	if stats.TotalTrips > 0 {
		mode := `
			SELECT transport_mode
			FROM trips
			WHERE user_id = $1
			GROUP BY transport_mode
			ORDER BY COUNT(*) DESC, transport_mode ASC
			LIMIT 1
		`
		err = s.db.QueryRowContext(ctx, mode, userID.String()).Scan(&stats.MostUsedMode)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("aggregate transport mode: %w", err)
		}
	}
	return stats, nil
}
