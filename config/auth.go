package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"membergate"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"membergate"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID    string `env:"USER_ID"    envDefault:"dev-user"`
	Email     string `env:"EMAIL"      envDefault:"dev@example.com"`
	FirstName string `env:"FIRST_NAME" envDefault:"Dev"`
	LastName  string `env:"LAST_NAME"  envDefault:"User"`

	// Roles, when non-empty, short-circuits role resolution for every principal
	// until BypassTTL has elapsed since startup.
	Roles       []string      `env:"ROLES"        envSeparator:";"`
	ProfileRole string        `env:"PROFILE_ROLE"`
	BypassTTL   time.Duration `env:"BYPASS_TTL"   envDefault:"8h"`
}

// BypassEnabled reports whether a development role bypass is configured.
func (d *DevAuthConfig) BypassEnabled() bool {
	return len(d.Roles) > 0 || d.ProfileRole != ""
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// SessionTTL bounds how long a login session lives.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionTTL < time.Minute {
		a.SessionTTL = time.Minute
	}
	roles := a.DevAuth.Roles[:0]
	for _, r := range a.DevAuth.Roles {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	a.DevAuth.Roles = roles
	a.DevAuth.ProfileRole = strings.TrimSpace(a.DevAuth.ProfileRole)
	if a.DevAuth.BypassTTL <= 0 {
		a.DevAuth.BypassTTL = 8 * time.Hour
	}
	// The bypass only applies to mock auth.
	if a.Mode != AuthModeMock {
		a.DevAuth.Roles = nil
		a.DevAuth.ProfileRole = ""
	}
}
