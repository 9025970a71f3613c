package blacklist

import (
	"context"
	"testing"
	"time"

	"travelogy/pkg/platform/sentinel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemoryBlacklist(t *testing.T) {
	ctx := context.Background()

	t.Run("revoked token is reported", func(t *testing.T) {
		bl := NewMemoryBlacklist()
		require.NoError(t, bl.Revoke(ctx, "rt_abc", time.Hour))

		revoked, err := bl.IsRevoked(ctx, "rt_abc")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("unknown token is not revoked", func(t *testing.T) {
		bl := NewMemoryBlacklist()
		revoked, err := bl.IsRevoked(ctx, "rt_unknown")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("entry lapses after ttl", func(t *testing.T) {
		now := time.Now()
		bl := NewMemoryBlacklist(WithMemoryClock(func() time.Time { return now }))
		require.NoError(t, bl.Revoke(ctx, "rt_abc", time.Minute))

		now = now.Add(2 * time.Minute)
		revoked, err := bl.IsRevoked(ctx, "rt_abc")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("re-revoking keeps first expiry", func(t *testing.T) {
		now := time.Now()
		bl := NewMemoryBlacklist(WithMemoryClock(func() time.Time { return now }))
		require.NoError(t, bl.Revoke(ctx, "rt_abc", time.Minute))
		require.NoError(t, bl.Revoke(ctx, "rt_abc", time.Hour))

		now = now.Add(2 * time.Minute)
		revoked, err := bl.IsRevoked(ctx, "rt_abc")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("non positive ttl rejected", func(t *testing.T) {
		bl := NewMemoryBlacklist()
		err := bl.Revoke(ctx, "rt_abc", 0)
		require.ErrorIs(t, err, sentinel.ErrInvalidState)
	})
}
