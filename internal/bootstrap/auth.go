package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/drivenlabs/membergate/config"
	"github.com/drivenlabs/membergate/internal/adapters/devauth"
	"github.com/drivenlabs/membergate/internal/adapters/oidc"
	redisadapter "github.com/drivenlabs/membergate/internal/adapters/redis"
	"github.com/drivenlabs/membergate/internal/ports"
	"github.com/drivenlabs/membergate/internal/service"
)

const oidcDiscoveryTimeout = 15 * time.Second

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	// Roles is cleared for a principal on every login.
	Roles  service.RoleInvalidator
	Logger *slog.Logger
}

// BuildAuthService creates an auth service based on the configured auth mode.
// Returns nil if auth is not configured or configuration is invalid.
func BuildAuthService(cfg AuthConfig) *service.AuthService {
	if cfg.RedisClient == nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
		}
		return nil
	}

	sessions := redisadapter.NewSessionStore(cfg.RedisClient, redisadapter.SessionStoreOptions{})

	var prov ports.AuthProvider
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		prov = buildDevAuthProvider(cfg)
	case config.AuthModeOAuth:
		prov = buildOAuthProvider(cfg)
	}
	if prov == nil {
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider:      prov,
		Sessions:      sessions,
		Roles:         cfg.Roles,
		MaxSessionTTL: cfg.Auth.SessionTTL,
		Logger:        cfg.Logger,
	})
}

//nolint:ireturn // the caller only needs the port.
func buildDevAuthProvider(cfg AuthConfig) ports.AuthProvider {
	dev := cfg.Auth.DevAuth
	prov, err := devauth.NewProvider(devauth.Config{
		UserID:          dev.UserID,
		Email:           dev.Email,
		FirstName:       dev.FirstName,
		LastName:        dev.LastName,
		SessionDuration: cfg.Auth.SessionTTL,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create dev auth provider, auth disabled", "error", err)
		}
		return nil
	}
	return prov
}

//nolint:ireturn // the caller only needs the port.
func buildOAuthProvider(cfg AuthConfig) ports.AuthProvider {
	// Only enable when fully configured
	oauth := cfg.Auth.OAuth
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		if cfg.Logger != nil {
			cfg.Logger.Warn("AuthModeOAuth selected but required config missing; auth disabled",
				"discovery_url_empty", oauth.DiscoveryURL == "",
				"client_id_empty", oauth.ClientID == "",
				"client_secret_empty", oauth.ClientSecret == "",
			)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), oidcDiscoveryTimeout)
	defer cancel()
	prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		DiscoveryURL: oauth.DiscoveryURL,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create OIDC provider, auth disabled", "error", err)
		}
		return nil
	}
	return prov
}

// BuildRoleBypass returns the development role bypass, or nil when none is
// configured. The bypass stops answering BypassTTL after now.
func BuildRoleBypass(dev config.DevAuthConfig, now time.Time, logger *slog.Logger) *devauth.RoleBypass {
	if !dev.BypassEnabled() {
		return nil
	}
	expiresAt := now.Add(dev.BypassTTL)
	if logger != nil {
		logger.Warn("development role bypass active",
			"roles", dev.Roles,
			"profile_role", dev.ProfileRole,
			"expires_at", expiresAt,
		)
	}
	return devauth.NewRoleBypass(dev.Roles, dev.ProfileRole, expiresAt)
}
