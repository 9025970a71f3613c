// Package store persists account profiles, settings, and serves trip
// aggregation reads.
package store

import (
	"context"
	"sync"
	"time"

	"travelogy/internal/account/models"
	id "travelogy/pkg/domain"
)

// MemoryStore keeps profiles, settings, and trips in memory for tests and
// development.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[id.UserID]*models.UserProfile
	settings map[id.UserID]*models.UserSettings
	trips    map[id.UserID][]*models.Trip
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[id.UserID]*models.UserProfile),
		settings: make(map[id.UserID]*models.UserSettings),
		trips:    make(map[id.UserID][]*models.Trip),
	}
}

// FindOrCreateProfile returns the stored profile, creating the default one on
// first access. Idempotent under concurrent calls: one profile per user.
func (s *MemoryStore) FindOrCreateProfile(_ context.Context, userID id.UserID, now time.Time) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if profile, ok := s.profiles[userID]; ok {
		clone := *profile
		return &clone, nil
	}
	profile := models.NewUserProfile(userID, now)
	s.profiles[userID] = profile
	clone := *profile
	return &clone, nil
}

// UpsertProfile stores the profile, replacing any existing one.
func (s *MemoryStore) UpsertProfile(_ context.Context, profile *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *profile
	s.profiles[profile.UserID] = &clone
	return nil
}

// FindOrCreateSettings mirrors FindOrCreateProfile for settings.
func (s *MemoryStore) FindOrCreateSettings(_ context.Context, userID id.UserID, now time.Time) (*models.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings, ok := s.settings[userID]; ok {
		clone := *settings
		return &clone, nil
	}
	settings := models.NewUserSettings(userID, now)
	s.settings[userID] = settings
	clone := *settings
	return &clone, nil
}

// UpsertSettings stores the settings, replacing any existing row.
func (s *MemoryStore) UpsertSettings(_ context.Context, settings *models.UserSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *settings
	s.settings[settings.UserID] = &clone
	return nil
}

// AddTrip records a trip for aggregation. Only tests and the trip ingestion
// pipeline write here.
func (s *MemoryStore) AddTrip(_ context.Context, trip *models.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *trip
	s.trips[trip.UserID] = append(s.trips[trip.UserID], &clone)
	return nil
}

// AggregateTrips computes the stats view over the user's trips.
func (s *MemoryStore) AggregateTrips(_ context.Context, userID id.UserID, now time.Time) (*models.TripStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.TripStats{MostUsedMode: "N/A"}
	modeCounts := make(map[string]int)
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	for _, trip := range s.trips[userID] {
		stats.TotalTrips++
		stats.TotalDistance += trip.DistanceKM
		stats.TotalDuration += trip.DurationMin
		modeCounts[trip.TransportMode]++
		if trip.StartTime.After(weekAgo) {
			stats.TripsThisWeek++
		}
		if trip.StartTime.After(monthAgo) {
			stats.TripsThisMonth++
		}
	}

	best := 0
	for mode, count := range modeCounts {
		// Ties break alphabetically so the result is deterministic.
		if count > best || (count == best && best > 0 && mode < stats.MostUsedMode) {
			best = count
			stats.MostUsedMode = mode
		}
	}
	return stats, nil
}
