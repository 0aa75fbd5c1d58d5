package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivenlabs/membergate/internal/testutil"
)

func TestBetaOverrideStore_RoundTrip(t *testing.T) {
	client, mr := testutil.SetupTestRedis(t)
	store := NewBetaOverrideStore(client, "")
	ctx := context.Background()

	got, err := store.GetOverride(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.SetOverride(ctx, testutil.BoolPtr(false)))
	got, err = store.GetOverride(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, *got)
	v, err := mr.Get(DefaultBetaOverrideKey)
	require.NoError(t, err)
	assert.Equal(t, "0", v)

	require.NoError(t, store.SetOverride(ctx, testutil.BoolPtr(true)))
	got, err = store.GetOverride(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, *got)

	require.NoError(t, store.SetOverride(ctx, nil))
	got, err = store.GetOverride(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBetaOverrideStore_GarbageValue(t *testing.T) {
	client, mr := testutil.SetupTestRedis(t)
	store := NewBetaOverrideStore(client, "custom:key")
	require.NoError(t, mr.Set("custom:key", "maybe"))

	_, err := store.GetOverride(context.Background())
	require.Error(t, err)
}

func TestBetaOverrideStore_RedisDown(t *testing.T) {
	client, mr := testutil.SetupTestRedis(t)
	store := NewBetaOverrideStore(client, "")
	mr.Close()

	_, err := store.GetOverride(context.Background())
	require.Error(t, err)
}
