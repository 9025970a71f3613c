// Package models holds the extended profile, application settings, and trip
// statistics attached to a user account.
package models

import (
	"time"

	id "travelogy/pkg/domain"
	dErrors "travelogy/pkg/domain-errors"
)

var validOccupations = map[string]bool{
	"student":       true,
	"employed":      true,
	"self_employed": true,
	"unemployed":    true,
	"retired":       true,
	"other":         true,
}

// UserProfile is the extended, mostly cosmetic profile. It is created lazily
// on first read, so every user observably has one.
type UserProfile struct {
	UserID     id.UserID `json:"user_id"`
	Bio        string    `json:"bio"`
	Occupation string    `json:"occupation,omitempty"`

	PreferredTransportModes []string `json:"preferred_transport_modes"`
	FrequentDestinations    []string `json:"frequent_destinations"`

	PublicProfile     bool `json:"public_profile"`
	ShowOnLeaderboard bool `json:"show_on_leaderboard"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserProfile returns the profile a user starts with.
func NewUserProfile(userID id.UserID, now time.Time) *UserProfile {
	return &UserProfile{
		UserID:                  userID,
		PreferredTransportModes: []string{},
		FrequentDestinations:    []string{},
		ShowOnLeaderboard:       true,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

// Validate bounds the free-form fields.
func (p *UserProfile) Validate() error {
	if len(p.Bio) > 500 {
		return dErrors.New(dErrors.CodeValidation, "bio must be at most 500 characters")
	}
	if p.Occupation != "" && !validOccupations[p.Occupation] {
		return dErrors.New(dErrors.CodeValidation, "invalid occupation")
	}
	return nil
}

// UserSettings holds per-user application behavior. Defaults match what the
// mobile app assumes on first launch.
type UserSettings struct {
	UserID id.UserID `json:"user_id"`

	TripReminders            bool `json:"trip_reminders"`
	WeeklySummary            bool `json:"weekly_summary"`
	AchievementNotifications bool `json:"achievement_notifications"`

	AutoTripDetection    bool `json:"auto_trip_detection"`
	ConfirmTrips         bool `json:"confirm_trips"`
	OfflineModePreferred bool `json:"offline_mode_preferred"`

	SyncFrequency     int `json:"sync_frequency"`
	DataRetentionDays int `json:"data_retention_days"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserSettings returns the default settings.
func NewUserSettings(userID id.UserID, now time.Time) *UserSettings {
	return &UserSettings{
		UserID:                   userID,
		TripReminders:            true,
		WeeklySummary:            true,
		AchievementNotifications: true,
		AutoTripDetection:        true,
		ConfirmTrips:             true,
		SyncFrequency:            15,
		DataRetentionDays:        365,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
}

// Validate keeps the numeric settings inside sane operational bounds.
func (s *UserSettings) Validate() error {
	if s.SyncFrequency < 1 || s.SyncFrequency > 1440 {
		return dErrors.New(dErrors.CodeValidation, "sync_frequency must be between 1 and 1440 minutes")
	}
	if s.DataRetentionDays < 1 || s.DataRetentionDays > 3650 {
		return dErrors.New(dErrors.CodeValidation, "data_retention_days must be between 1 and 3650")
	}
	return nil
}

// TripStats is the read-only aggregation displayed on the account screen.
// Streak calculation is not implemented upstream of this view; both streak
// fields are fixed at zero.
type TripStats struct {
	TotalTrips     int     `json:"total_trips"`
	TotalDistance  float64 `json:"total_distance"`
	TotalDuration  int     `json:"total_duration"`
	MostUsedMode   string  `json:"most_used_mode"`
	TripsThisWeek  int     `json:"trips_this_week"`
	TripsThisMonth int     `json:"trips_this_month"`
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
}

// Trip is the slice of a recorded trip that statistics aggregation needs.
type Trip struct {
	UserID        id.UserID
	TransportMode string
	DistanceKM    float64
	DurationMin   int
	StartTime     time.Time
}
