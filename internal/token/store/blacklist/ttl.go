// Package blacklist holds the refresh token blacklist. Entries carry a TTL
// equal to the remaining refresh lifetime so the list stays bounded without
// a reaper.
package blacklist

import (
	"fmt"
	"time"

	"travelogy/pkg/platform/sentinel"
)

// Clock lets tests control expiry evaluation.
type Clock func() time.Time

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}
