package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:     "single service - http",
			input:    "http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{
			name:     "single service - invite-reaper",
			input:    "invite-reaper",
			expected: map[ServiceMode]bool{ServiceModeInviteReaper: true},
		},
		{
			name:  "services with spaces and duplicates",
			input: " http , invite-reaper , http ",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:         true,
				ServiceModeInviteReaper: true,
			},
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "only spaces and commas",
			input:       " , , ",
			expectError: true,
		},
		{
			name:        "invalid service name",
			input:       "http,scheduler",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseServices(tt.input)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestConfig_ServiceEnabledMethods(t *testing.T) {
	tests := []struct {
		name           string
		services       string
		expectedHTTP   bool
		expectedReaper bool
	}{
		{name: "default - http only", services: "http", expectedHTTP: true},
		{name: "reaper only", services: "invite-reaper", expectedReaper: true},
		{name: "both", services: "http,invite-reaper", expectedHTTP: true, expectedReaper: true},
		{name: "invalid disables everything", services: "http,bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AppConfig{Services: tt.services}

			if got := cfg.ServiceEnabled(ServiceModeHTTP); got != tt.expectedHTTP {
				t.Errorf("ServiceEnabled(http) = %v, want %v", got, tt.expectedHTTP)
			}
			if got := cfg.ServiceEnabled(ServiceModeInviteReaper); got != tt.expectedReaper {
				t.Errorf("ServiceEnabled(invite-reaper) = %v, want %v", got, tt.expectedReaper)
			}
		})
	}
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "mock")
	t.Setenv("OAUTH_CLIENT_ID", "app-client")
	t.Setenv("OAUTH_CLIENT_SECRET", "super-secret")
	t.Setenv("OAUTH_REDIRECT_URL", "https://app.example.com/auth/callback")
	t.Setenv("OAUTH_DISCOVERY_URL", "https://login.example.com/.well-known/openid-configuration")
	t.Setenv("DEV_AUTH_USER_ID", "dev-user")
	t.Setenv("DEV_AUTH_EMAIL", "dev@example.com")
	t.Setenv("DEV_AUTH_ROLES", "admin; mentor ;")
	t.Setenv("DEV_AUTH_PROFILE_ROLE", "creator")
	t.Setenv("DEV_AUTH_BYPASS_TTL", "2h")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	cfg.Sanitize()

	expected := AuthConfig{
		Mode: AuthModeMock,
		OAuth: OAuthConfig{
			ClientID:     "app-client",
			ClientSecret: "super-secret",
			RedirectURL:  "https://app.example.com/auth/callback",
			Scope:        "openid profile email",
			DiscoveryURL: "https://login.example.com/.well-known/openid-configuration",
		},
		DevAuth: DevAuthConfig{
			UserID:      "dev-user",
			Email:       "dev@example.com",
			FirstName:   "Dev",
			LastName:    "User",
			Roles:       []string{"admin", "mentor"},
			ProfileRole: "creator",
			BypassTTL:   2 * time.Hour,
		},
		SessionTTL: 12 * time.Hour,
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
	if !cfg.Auth.DevAuth.BypassEnabled() {
		t.Error("expected bypass to be enabled")
	}
}

func TestAuthConfig_SanitizeDropsBypassOutsideMock(t *testing.T) {
	a := AuthConfig{
		Mode:    AuthModeOAuth,
		DevAuth: DevAuthConfig{Roles: []string{"admin"}, ProfileRole: "mentor"},
	}
	a.Sanitize()

	if a.DevAuth.BypassEnabled() {
		t.Errorf("bypass must be disabled in oauth mode, got %#v", a.DevAuth)
	}
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	var m AuthMode
	if err := m.UnmarshalText([]byte("OAuth")); err != nil || m != AuthModeOAuth {
		t.Errorf("expected oauth, got %q err=%v", m, err)
	}
	if err := m.UnmarshalText([]byte("saml")); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestAccessConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	cfg.Sanitize()

	if cfg.Access.RoleCacheTTL != 5*time.Minute {
		t.Errorf("RoleCacheTTL = %v, want 5m", cfg.Access.RoleCacheTTL)
	}
	if cfg.Access.RoleStoreTimeout != 3*time.Second {
		t.Errorf("RoleStoreTimeout = %v, want 3s", cfg.Access.RoleStoreTimeout)
	}
	if cfg.Access.InviteTTL != 30*24*time.Hour {
		t.Errorf("InviteTTL = %v, want 720h", cfg.Access.InviteTTL)
	}
	if cfg.Access.CodeRetries != 5 {
		t.Errorf("CodeRetries = %d, want 5", cfg.Access.CodeRetries)
	}
	if cfg.Access.BetaModeEnabled {
		t.Error("beta mode should default off")
	}
	if cfg.Mail.Provider != MailProviderLog {
		t.Errorf("Mail.Provider = %q, want log", cfg.Mail.Provider)
	}
}

func TestAccessConfig_Sanitize(t *testing.T) {
	a := AccessConfig{RoleCacheTTL: -1, RoleStoreTimeout: 0, InviteTTL: 0, CodeRetries: 100}
	a.Sanitize()

	if a.RoleCacheTTL != defaultRoleCacheTTL || a.RoleStoreTimeout != defaultRoleStoreTimeout {
		t.Errorf("durations not defaulted: %#v", a)
	}
	if a.InviteTTL != defaultInviteTTL {
		t.Errorf("InviteTTL = %v", a.InviteTTL)
	}
	if a.CodeRetries != 20 {
		t.Errorf("CodeRetries = %d, want clamp to 20", a.CodeRetries)
	}
}

func TestMailConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     MailConfig
		wantErr bool
	}{
		{name: "log provider", cfg: MailConfig{Provider: MailProviderLog, From: "a@x.com"}},
		{name: "sendgrid with key", cfg: MailConfig{Provider: MailProviderSendGrid, SendGridAPIKey: "k", From: "a@x.com"}},
		{name: "sendgrid missing key", cfg: MailConfig{Provider: MailProviderSendGrid, From: "a@x.com"}, wantErr: true},
		{name: "missing from", cfg: MailConfig{Provider: MailProviderLog}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMailProvider_UnmarshalText(t *testing.T) {
	var p MailProvider
	if err := p.UnmarshalText([]byte(" SendGrid ")); err != nil || p != MailProviderSendGrid {
		t.Errorf("expected sendgrid, got %q err=%v", p, err)
	}
	if err := p.UnmarshalText([]byte("smtp")); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	h := HTTPConfig{InviteRateLimit: 0}
	h.Sanitize()
	if h.InviteRateLimit != 1 {
		t.Errorf("InviteRateLimit = %d, want 1", h.InviteRateLimit)
	}
	h.InviteRateLimit = 5000
	h.Sanitize()
	if h.InviteRateLimit != 1000 {
		t.Errorf("InviteRateLimit = %d, want 1000", h.InviteRateLimit)
	}
}

func TestReaperConfig_Sanitize(t *testing.T) {
	r := ReaperConfig{Interval: time.Second, BatchSize: 0}
	r.Sanitize()
	if r.Interval != time.Minute {
		t.Errorf("Interval = %v, want 1m", r.Interval)
	}
	if r.BatchSize != 1 {
		t.Errorf("BatchSize = %d, want 1", r.BatchSize)
	}

	r = ReaperConfig{Interval: time.Hour, BatchSize: 50000}
	r.Sanitize()
	if r.Interval != time.Hour || r.BatchSize != maxReaperBatch {
		t.Errorf("unexpected %#v", r)
	}
}

func TestValidServiceModes(t *testing.T) {
	modes := ValidServiceModes()
	if len(modes) != 2 {
		t.Fatalf("expected 2 modes, got %d", len(modes))
	}
	for _, m := range modes {
		if _, err := ParseServices(string(m)); err != nil {
			t.Errorf("mode %q should parse: %v", m, err)
		}
	}
}

func TestObservabilityConfig_Sanitize(t *testing.T) {
	c := ObservabilityConfig{MetricsEnabled: true, StatsdAddress: "  ", MetricsPrefix: " .app. "}
	c.Sanitize()
	if c.MetricsEnabled {
		t.Error("metrics should be disabled without an address")
	}
	if c.MetricsPrefix != "app" {
		t.Errorf("MetricsPrefix = %q, want app", c.MetricsPrefix)
	}

	c = ObservabilityConfig{MetricsEnabled: true, StatsdAddress: "statsd:8125"}
	c.Sanitize()
	if !c.MetricsEnabled || c.MetricsPrefix != defaultMetricsPrefix {
		t.Errorf("unexpected config %#v", c)
	}
}
