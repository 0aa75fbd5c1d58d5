package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultBetaOverrideKey holds "1" or "0" when an admin has overridden beta mode.
const DefaultBetaOverrideKey = "membergate:beta_mode:override"

// BetaOverrideStore keeps the runtime beta-mode override in a single Redis key
// so that every replica sees the same value.
type BetaOverrideStore struct {
	client redis.UniversalClient
	key    string
}

// NewBetaOverrideStore creates a store using key, or DefaultBetaOverrideKey when empty.
func NewBetaOverrideStore(client redis.UniversalClient, key string) *BetaOverrideStore {
	if key == "" {
		key = DefaultBetaOverrideKey
	}
	return &BetaOverrideStore{client: client, key: key}
}

// GetOverride returns the override, or nil when none is set.
func (s *BetaOverrideStore) GetOverride(ctx context.Context) (*bool, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	switch val {
	case "1":
		v := true
		return &v, nil
	case "0":
		v := false
		return &v, nil
	default:
		return nil, fmt.Errorf("unexpected beta override value %q", val)
	}
}

// SetOverride stores the override. nil clears it so the static flag applies again.
func (s *BetaOverrideStore) SetOverride(ctx context.Context, enabled *bool) error {
	if enabled == nil {
		return s.client.Del(ctx, s.key).Err()
	}
	val := "0"
	if *enabled {
		val = "1"
	}
	return s.client.Set(ctx, s.key, val, 0).Err()
}
