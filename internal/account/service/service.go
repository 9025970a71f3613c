// Package service exposes the account extras: extended profile, app
// settings, and trip statistics. Core identity stays in the auth service.
package service

import (
	"context"
	"time"

	"travelogy/internal/account/models"
	id "travelogy/pkg/domain"
	dErrors "travelogy/pkg/domain-errors"
	"travelogy/pkg/requestcontext"
)

type Store interface {
	FindOrCreateProfile(ctx context.Context, userID id.UserID, now time.Time) (*models.UserProfile, error)
	UpsertProfile(ctx context.Context, profile *models.UserProfile) error
	FindOrCreateSettings(ctx context.Context, userID id.UserID, now time.Time) (*models.UserSettings, error)
	UpsertSettings(ctx context.Context, settings *models.UserSettings) error
	AggregateTrips(ctx context.Context, userID id.UserID, now time.Time) (*models.TripStats, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Profile returns the extended profile, creating the default on first read.
func (s *Service) Profile(ctx context.Context, userID id.UserID) (*models.UserProfile, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	profile, err := s.store.FindOrCreateProfile(ctx, userID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return profile, nil
}

// UpdateProfileRequest carries a partial extended-profile update.
type UpdateProfileRequest struct {
	Bio                     *string   `json:"bio"`
	Occupation              *string   `json:"occupation"`
	PreferredTransportModes *[]string `json:"preferred_transport_modes"`
	FrequentDestinations    *[]string `json:"frequent_destinations"`
	PublicProfile           *bool     `json:"public_profile"`
	ShowOnLeaderboard       *bool     `json:"show_on_leaderboard"`
}

// UpdateProfile applies a partial update on top of the current (or default)
// profile and validates the result before persisting.
func (s *Service) UpdateProfile(ctx context.Context, userID id.UserID, req *UpdateProfileRequest) (*models.UserProfile, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.Occupation != nil {
		profile.Occupation = *req.Occupation
	}
	if req.PreferredTransportModes != nil {
		profile.PreferredTransportModes = *req.PreferredTransportModes
	}
	if req.FrequentDestinations != nil {
		profile.FrequentDestinations = *req.FrequentDestinations
	}
	if req.PublicProfile != nil {
		profile.PublicProfile = *req.PublicProfile
	}
	if req.ShowOnLeaderboard != nil {
		profile.ShowOnLeaderboard = *req.ShowOnLeaderboard
	}
	profile.UpdatedAt = requestcontext.Now(ctx)

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpsertProfile(ctx, profile); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save profile")
	}
	return profile, nil
}

// Settings returns the user's settings, creating defaults on first read.
func (s *Service) Settings(ctx context.Context, userID id.UserID) (*models.UserSettings, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	settings, err := s.store.FindOrCreateSettings(ctx, userID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load settings")
	}
	return settings, nil
}

// UpdateSettingsRequest carries a partial settings update.
type UpdateSettingsRequest struct {
	TripReminders            *bool `json:"trip_reminders"`
	WeeklySummary            *bool `json:"weekly_summary"`
	AchievementNotifications *bool `json:"achievement_notifications"`
	AutoTripDetection        *bool `json:"auto_trip_detection"`
	ConfirmTrips             *bool `json:"confirm_trips"`
	OfflineModePreferred     *bool `json:"offline_mode_preferred"`
	SyncFrequency            *int  `json:"sync_frequency"`
	DataRetentionDays        *int  `json:"data_retention_days"`
}

// UpdateSettings applies a partial update and validates the result.
func (s *Service) UpdateSettings(ctx context.Context, userID id.UserID, req *UpdateSettingsRequest) (*models.UserSettings, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	settings, err := s.Settings(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyBool(&settings.TripReminders, req.TripReminders)
	applyBool(&settings.WeeklySummary, req.WeeklySummary)
	applyBool(&settings.AchievementNotifications, req.AchievementNotifications)
	applyBool(&settings.AutoTripDetection, req.AutoTripDetection)
	applyBool(&settings.ConfirmTrips, req.ConfirmTrips)
	applyBool(&settings.OfflineModePreferred, req.OfflineModePreferred)
	if req.SyncFrequency != nil {
		settings.SyncFrequency = *req.SyncFrequency
	}
	if req.DataRetentionDays != nil {
		settings.DataRetentionDays = *req.DataRetentionDays
	}
	settings.UpdatedAt = requestcontext.Now(ctx)

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpsertSettings(ctx, settings); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save settings")
	}
	return settings, nil
}

// Stats aggregates the user's recorded trips.
func (s *Service) Stats(ctx context.Context, userID id.UserID) (*models.TripStats, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user ID required")
	}
	stats, err := s.store.AggregateTrips(ctx, userID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to aggregate trips")
	}
	return stats, nil
}

func applyBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
