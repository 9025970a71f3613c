package models

import (
	"testing"

	"travelogy/pkg/domain"
	dErrors "travelogy/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SetConsentRequest_Changes(t *testing.T) {
	t.Run("valid payload converts to typed changes", func(t *testing.T) {
		req := SetConsentRequest{"location_tracking": true, "marketing": false}
		changes, err := req.Changes()
		require.NoError(t, err)
		assert.Equal(t, map[domain.ConsentType]bool{
			domain.ConsentLocationTracking: true,
			domain.ConsentMarketing:        false,
		}, changes)
	})

	t.Run("empty payload rejected", func(t *testing.T) {
		_, err := SetConsentRequest{}.Changes()
		require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		_, err := SetConsentRequest{"mind_reading": true}.Changes()
		require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func Test_ConsentLog_ClientInfo(t *testing.T) {
	t.Run("browser user agent summarized", func(t *testing.T) {
		entry := &ConsentLog{
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		}
		info := entry.ClientInfo()
		assert.Contains(t, info, "Chrome")
		assert.Contains(t, info, "Windows")
	})

	t.Run("empty user agent stays empty", func(t *testing.T) {
		entry := &ConsentLog{}
		assert.Empty(t, entry.ClientInfo())
	})
}
