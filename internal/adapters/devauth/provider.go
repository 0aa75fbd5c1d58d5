// Package devauth provides a config-driven AuthProvider and role bypass for
// local development. Nothing here is wired unless AUTH_MODE=mock.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
	"github.com/drivenlabs/membergate/internal/ports"
)

const (
	defaultSessionDuration = 8 * time.Hour
	tokenLen               = 24
)

// Config is the fixed identity every dev login resolves to.
type Config struct {
	UserID          string
	Email           string
	FirstName       string
	LastName        string
	SessionDuration time.Duration
	Clock           ports.Clock
}

// Provider skips the IdP round trip: Begin points the browser straight at our
// own callback and Exchange ignores the code.
type Provider struct {
	identity domainauth.Identity
	ttl      time.Duration
	clock    ports.Clock
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func NewProvider(cfg Config) (*Provider, error) {
	switch {
	case cfg.UserID == "":
		return nil, errors.New("dev auth: user id is required")
	case cfg.Email == "":
		return nil, errors.New("dev auth: email is required")
	}

	p := &Provider{
		identity: domainauth.Identity{
			UserID:    cfg.UserID,
			Email:     cfg.Email,
			FirstName: cfg.FirstName,
			LastName:  cfg.LastName,
		},
		ttl:   cfg.SessionDuration,
		clock: cfg.Clock,
	}
	if p.ttl <= 0 {
		p.ttl = defaultSessionDuration
	}
	if p.clock == nil {
		p.clock = systemClock{}
	}
	return p, nil
}

func (p *Provider) Begin(_ context.Context, _ string) (ports.LoginChallenge, error) {
	var ch ports.LoginChallenge
	var err error
	if ch.State, err = token(); err != nil {
		return ports.LoginChallenge{}, fmt.Errorf("generate state: %w", err)
	}
	if ch.Nonce, err = token(); err != nil {
		return ports.LoginChallenge{}, fmt.Errorf("generate nonce: %w", err)
	}
	ch.AuthURL = "/auth/callback?" + url.Values{"code": {"dev"}, "state": {ch.State}}.Encode()
	return ch, nil
}

// Exchange returns the configured identity. The handler has already matched
// state and nonce against its cookies.
func (p *Provider) Exchange(_ context.Context, _ ports.Callback) (domainauth.Identity, error) {
	id := p.identity
	id.ExpiresAt = p.clock.Now().Add(p.ttl)
	return id, nil
}

func token() (string, error) {
	b := make([]byte, tokenLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:tokenLen], nil
}

var _ ports.AuthProvider = (*Provider)(nil)
