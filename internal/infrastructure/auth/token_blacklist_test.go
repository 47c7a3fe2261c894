package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist_Revoke(t *testing.T) {
	blacklist := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.Revoke(ctx, "jti-1", time.Hour))

	revoked, err := blacklist.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_Expiry(t *testing.T) {
	blacklist := NewInMemoryTokenBlacklist()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	blacklist.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, blacklist.Revoke(ctx, "short", time.Minute))
	require.NoError(t, blacklist.Revoke(ctx, "already-expired", 0))

	revoked, _ := blacklist.IsRevoked(ctx, "short")
	assert.True(t, revoked)
	revoked, _ = blacklist.IsRevoked(ctx, "already-expired")
	assert.False(t, revoked, "a zero ttl token has nothing left to revoke")

	now = now.Add(2 * time.Minute)
	revoked, _ = blacklist.IsRevoked(ctx, "short")
	assert.False(t, revoked)

	require.NoError(t, blacklist.Revoke(ctx, "other", time.Hour))
	assert.Len(t, blacklist.jtis, 1)
}

func TestInMemoryTokenBlacklist_RevokeUser(t *testing.T) {
	blacklist := NewInMemoryTokenBlacklist()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	blacklist.now = func() time.Time { return now }
	ctx := context.Background()

	issuedBefore := now.Add(-time.Hour)

	revoked, err := blacklist.IsUserRevoked(ctx, "user-1", issuedBefore)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, blacklist.RevokeUser(ctx, "user-1", time.Hour))

	revoked, _ = blacklist.IsUserRevoked(ctx, "user-1", issuedBefore)
	assert.True(t, revoked)
	revoked, _ = blacklist.IsUserRevoked(ctx, "user-1", now)
	assert.True(t, revoked, "token issued at the revocation instant is rejected")
	revoked, _ = blacklist.IsUserRevoked(ctx, "user-1", now.Add(time.Second))
	assert.False(t, revoked)
	revoked, _ = blacklist.IsUserRevoked(ctx, "user-2", issuedBefore)
	assert.False(t, revoked)
}

func TestRedisTokenBlacklist_Keys(t *testing.T) {
	assert.Equal(t, "jewelstore:auth:revoked:jti:abc", jtiKey("abc"))
	assert.Equal(t, "jewelstore:auth:revoked:user:u1", userKey("u1"))
}
