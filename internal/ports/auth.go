// Package ports declares the storage, identity and notification boundaries the
// services depend on. Adapters under internal/adapters and internal/data
// implement them.
package ports

import (
	"context"

	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
)

// LoginChallenge is what a provider hands back when a login starts. State and
// Nonce must round-trip through the browser and come back on the callback.
type LoginChallenge struct {
	AuthURL string
	State   string
	Nonce   string
}

// Callback carries the IdP redirect parameters plus the nonce kept from Begin.
type Callback struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider runs the login handshake with an identity provider.
type AuthProvider interface {
	Begin(ctx context.Context, redirectURL string) (LoginChallenge, error)
	Exchange(ctx context.Context, cb Callback) (domainauth.Identity, error)
}

// SessionStore keeps login sessions keyed by their opaque ID. Get on an
// expired or unknown ID returns an error.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}
