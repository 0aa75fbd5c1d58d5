package config

import "time"

const (
	defaultRoleCacheTTL     = 5 * time.Minute
	defaultRoleStoreTimeout = 3 * time.Second
	defaultInviteTTL        = 30 * 24 * time.Hour
	defaultCodeRetries      = 5
)

// AccessConfig covers role resolution, subscription tiers and closed-beta gating.
type AccessConfig struct {
	// RoleCacheTTL is how long a resolved UserRoleInfo is reused.
	RoleCacheTTL time.Duration `env:"ROLE_CACHE_TTL" envDefault:"5m"`

	// RoleStoreTimeout bounds each role store query.
	RoleStoreTimeout time.Duration `env:"ROLE_STORE_TIMEOUT" envDefault:"3s"`

	// BetaModeEnabled is the static beta flag. A runtime override in Redis wins.
	BetaModeEnabled bool `env:"BETA_MODE_ENABLED" envDefault:"false"`

	// InviteTTL is how long an invite stays claimable after creation.
	InviteTTL time.Duration `env:"BETA_INVITE_TTL" envDefault:"720h"`

	// CodeRetries is how many fresh codes are tried when a generated code collides.
	CodeRetries int `env:"BETA_CODE_RETRIES" envDefault:"5"`
}

// Sanitize applies guardrails to access configuration values.
func (a *AccessConfig) Sanitize() {
	if a.RoleCacheTTL <= 0 {
		a.RoleCacheTTL = defaultRoleCacheTTL
	}
	if a.RoleStoreTimeout <= 0 {
		a.RoleStoreTimeout = defaultRoleStoreTimeout
	}
	if a.InviteTTL <= 0 {
		a.InviteTTL = defaultInviteTTL
	}
	if a.CodeRetries < 1 {
		a.CodeRetries = defaultCodeRetries
	}
	if a.CodeRetries > 20 {
		a.CodeRetries = 20
	}
}
