package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	hash, err := HashPassword("secret-123")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "secret-123"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestNoopRevocationStore(t *testing.T) {
	store := NoopRevocationStore{}
	require.NoError(t, store.Revoke(context.Background(), "jti", time.Now().Add(time.Hour)))

	revoked, err := store.IsRevoked(context.Background(), "jti")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.RevokeAccount(context.Background(), 1, time.Now()))
	revoked, err = store.IsAccountRevoked(context.Background(), 1, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryRevocationStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Revoke(ctx, "live", now.Add(time.Hour)))
	require.NoError(t, store.Revoke(ctx, "stale", now.Add(-time.Minute)))

	revoked, err := store.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, err = store.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryRevocationStoreAccountCutoff(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()
	now := time.Date(2025, 3, 1, 10, 0, 0, 500, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.RevokeAccount(ctx, 7, now))

	revoked, err := store.IsAccountRevoked(ctx, 7, now.Truncate(time.Second))
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsAccountRevoked(ctx, 7, now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = store.IsAccountRevoked(ctx, 8, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, revoked)

	// an earlier cutoff never widens the window back
	require.NoError(t, store.RevokeAccount(ctx, 7, now.Add(-time.Hour)))
	revoked, err = store.IsAccountRevoked(ctx, 7, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * TokenTTL)
	require.NoError(t, store.RevokeAccount(ctx, 9, now))
	assert.NotContains(t, store.accounts, int64(7))
}
