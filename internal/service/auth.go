package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
	"github.com/drivenlabs/membergate/internal/ports"
)

// RoleInvalidator drops cached role snapshots.
type RoleInvalidator interface {
	Invalidate(principalID string)
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Roles    RoleInvalidator // Optional: cleared on logout
	Clock    ports.Clock     // Optional: defaults to wall clock
	// MaxSessionTTL caps how long a session lives regardless of the token expiry. Zero means no cap.
	MaxSessionTTL time.Duration
	Logger        *slog.Logger
}

// AuthService orchestrates login by coordinating the identity provider and session persistence.
// Roles are not stored on the session; they are resolved per request.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore
	roles    RoleInvalidator
	clock    ports.Clock
	maxTTL   time.Duration
	logger   *slog.Logger
}

// ErrSessionExpired is returned by GetSession for a session past its expiry.
var ErrSessionExpired = errors.New("session expired")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	clock := opts.Clock
	if clock == nil {
		clock = wallClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		roles:    opts.Roles,
		clock:    clock,
		maxTTL:   opts.MaxSessionTTL,
		logger:   logger.With("component", "auth_service"),
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	challenge, err := s.provider.Begin(ctx, redirectURL)
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{AuthURL: challenge.AuthURL, State: challenge.State, Nonce: challenge.Nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLogin exchanges the code for an identity and persists a session.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*domainauth.Session, error) {
	switch {
	case input.Code == "":
		return nil, errors.New("authorization code is required")
	case input.State == "":
		return nil, errors.New("state parameter is required")
	case input.Nonce == "":
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.Callback(input))
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	if identity.UserID == "" {
		return nil, errors.New("identity provider returned no subject")
	}

	session := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    identity.UserID,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     identity.Email,
		ExpiresAt: identity.ExpiresAt,
	}
	if s.maxTTL > 0 {
		if limit := s.clock.Now().Add(s.maxTTL); session.ExpiresAt.IsZero() || session.ExpiresAt.After(limit) {
			session.ExpiresAt = limit
		}
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	// A fresh login should see current roles, not a snapshot from an earlier session.
	if s.roles != nil {
		s.roles.Invalidate(identity.UserID)
	}
	s.logger.InfoContext(ctx, "login completed", "principal_id", identity.UserID)
	return &session, nil
}

// GetSession retrieves a live session by ID. Expired sessions are deleted.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Expired(s.clock.Now()) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// Logout removes a session and drops the principal's cached roles.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	// Lookup failure only means there is no principal to invalidate.
	if sess, err := s.sessions.Get(ctx, sessionID); err == nil && s.roles != nil {
		s.roles.Invalidate(sess.UserID)
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
