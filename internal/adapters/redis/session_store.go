// Package redis provides Redis-backed adapters: the session store and the
// runtime beta-mode override.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
	"github.com/drivenlabs/membergate/internal/ports"
)

// ErrNotFound is returned when a session is missing or expired.
var ErrNotFound = errors.New("session not found")

const defaultSessionPrefix = "membergate:session:"

// Hash fields of a stored session.
const (
	fieldUserID    = "user_id"
	fieldEmail     = "email"
	fieldFirstName = "first_name"
	fieldLastName  = "last_name"
	fieldExpiresAt = "expires_at" // unix milliseconds
)

// SessionStore keeps each session in a Redis hash whose key expires with the session.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	clock  ports.Clock
}

// SessionStoreOptions configures a SessionStore. Zero values use defaults.
type SessionStoreOptions struct {
	KeyPrefix string
	Clock     ports.Clock
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func NewSessionStore(client redis.UniversalClient, opts SessionStoreOptions) *SessionStore {
	s := &SessionStore{client: client, prefix: opts.KeyPrefix, clock: opts.Clock}
	if s.prefix == "" {
		s.prefix = defaultSessionPrefix
	}
	if s.clock == nil {
		s.clock = wallClock{}
	}
	return s
}

func (s *SessionStore) key(id string) string { return s.prefix + id }

// Save writes the session and sets the key to expire at sess.ExpiresAt.
// A session with no expiry or one already past it is rejected.
func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session id is required")
	}
	if sess.ExpiresAt.IsZero() || !s.clock.Now().Before(sess.ExpiresAt) {
		return errors.New("session is already expired")
	}

	key := s.key(sess.ID)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key,
			fieldUserID, sess.UserID,
			fieldEmail, sess.Email,
			fieldFirstName, sess.FirstName,
			fieldLastName, sess.LastName,
			fieldExpiresAt, sess.ExpiresAt.UnixMilli(),
		)
		p.PExpireAt(ctx, key, sess.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	fields, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("load session: %w", err)
	}
	if len(fields) == 0 {
		return domainauth.Session{}, ErrNotFound
	}

	ms, err := strconv.ParseInt(fields[fieldExpiresAt], 10, 64)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("session %s: bad expiry: %w", id, err)
	}
	sess := domainauth.Session{
		ID:        id,
		UserID:    fields[fieldUserID],
		Email:     fields[fieldEmail],
		FirstName: fields[fieldFirstName],
		LastName:  fields[fieldLastName],
		ExpiresAt: time.UnixMilli(ms).UTC(),
	}

	// Redis and our clock can disagree by a little; the stored expiry wins.
	if sess.Expired(s.clock.Now()) {
		if delErr := s.Delete(ctx, id); delErr != nil {
			return domainauth.Session{}, delErr
		}
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

var _ ports.SessionStore = (*SessionStore)(nil)
