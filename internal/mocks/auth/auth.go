// Package auth contains hand-written test doubles for the auth ports.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
	"github.com/drivenlabs/membergate/internal/ports"
)

var (
	_ ports.AuthProvider = (*MockAuthProvider)(nil)
	_ ports.SessionStore = (*MemorySessionStore)(nil)
)

// ErrNotFound is returned by MemorySessionStore for unknown IDs.
var ErrNotFound = errors.New("not found")

// MockAuthProvider simulates an IdP with numbered state and nonce values.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, redirectURL string) (ports.LoginChallenge, error)
	ExchangeFunc func(ctx context.Context, cb ports.Callback) (domainauth.Identity, error)

	AuthURL     string
	DefaultUser domainauth.Identity
	// SessionTTL sets Identity.ExpiresAt relative to the exchange time.
	SessionTTL time.Duration

	mu    sync.Mutex
	calls int
}

// NewMockAuthProvider returns a provider for "member-1".
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL: "https://idp.test/authorize",
		DefaultUser: domainauth.Identity{
			UserID:    "member-1",
			FirstName: "Test",
			LastName:  "Member",
			Email:     "member@example.com",
		},
		SessionTTL: time.Hour,
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, redirectURL string) (ports.LoginChallenge, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, redirectURL)
	}
	m.mu.Lock()
	m.calls++
	n := m.calls
	m.mu.Unlock()

	return ports.LoginChallenge{
		AuthURL: m.AuthURL,
		State:   fmt.Sprintf("state-%d", n),
		Nonce:   fmt.Sprintf("nonce-%d", n),
	}, nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, cb ports.Callback) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, cb)
	}
	ttl := m.SessionTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	id := m.DefaultUser
	id.ExpiresAt = time.Now().Add(ttl)
	return id, nil
}

// MemorySessionStore is a goroutine-safe in-memory ports.SessionStore.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
