package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
	"github.com/drivenlabs/membergate/internal/testutil"
)

func TestSessionStore_RoundTrip(t *testing.T) {
	client, mr := testutil.SetupTestRedis(t)
	store := NewSessionStore(client, SessionStoreOptions{})
	ctx := context.Background()

	want := domainauth.Session{
		ID:        "sess-1",
		UserID:    "user-123",
		Email:     "user@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		ExpiresAt: time.Now().Add(30 * time.Minute).Truncate(time.Millisecond).UTC(),
	}
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.Equal(t, "user-123", mr.HGet(defaultSessionPrefix+"sess-1", fieldUserID))
	assert.InDelta(t, (30 * time.Minute).Seconds(), mr.TTL(defaultSessionPrefix+"sess-1").Seconds(), 2)
}

func TestSessionStore_SaveOverwritesStaleFields(t *testing.T) {
	client, mr := testutil.SetupTestRedis(t)
	store := NewSessionStore(client, SessionStoreOptions{KeyPrefix: "t:"})
	ctx := context.Background()

	mr.HSet("t:s", "legacy", "x")
	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "s", UserID: "u", ExpiresAt: time.Now().Add(time.Hour)}))

	assert.Empty(t, mr.HGet("t:s", "legacy"))
}

func TestSessionStore_Missing(t *testing.T) {
	client, _ := testutil.SetupTestRedis(t)
	store := NewSessionStore(client, SessionStoreOptions{})

	for _, id := range []string{"", "unknown"} {
		_, err := store.Get(context.Background(), id)
		assert.ErrorIs(t, err, ErrNotFound, "id %q", id)
	}
}

func TestSessionStore_RedisTTLExpires(t *testing.T) {
	client, mr := testutil.SetupTestRedis(t)
	store := NewSessionStore(client, SessionStoreOptions{KeyPrefix: "t:"})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "s", UserID: "u", ExpiresAt: time.Now().Add(time.Minute)}))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "s")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionStore_ClockPastExpiryDeletes(t *testing.T) {
	client, mr := testutil.SetupTestRedis(t)
	clock := testutil.NewClock(time.Now())
	store := NewSessionStore(client, SessionStoreOptions{Clock: clock})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "s", UserID: "u", ExpiresAt: clock.Now().Add(time.Minute)}))

	clock.Advance(5 * time.Minute)
	_, err := store.Get(ctx, "s")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists(defaultSessionPrefix+"s"))
}

func TestSessionStore_SaveRejects(t *testing.T) {
	client, _ := testutil.SetupTestRedis(t)
	store := NewSessionStore(client, SessionStoreOptions{})
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, domainauth.Session{ExpiresAt: time.Now().Add(time.Hour)}), "missing id")
	assert.Error(t, store.Save(ctx, domainauth.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Second)}), "expired")
	assert.Error(t, store.Save(ctx, domainauth.Session{ID: "forever"}), "no expiry")
}

func TestSessionStore_Delete(t *testing.T) {
	client, _ := testutil.SetupTestRedis(t)
	store := NewSessionStore(client, SessionStoreOptions{})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainauth.Session{ID: "d", UserID: "u", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, store.Delete(ctx, "d"))
	require.NoError(t, store.Delete(ctx, ""))

	_, err := store.Get(ctx, "d")
	assert.ErrorIs(t, err, ErrNotFound)
}
