package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivenlabs/membergate/config"
	"github.com/drivenlabs/membergate/internal/adapters/mail"
	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
	"github.com/drivenlabs/membergate/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mockAuthConfig() *config.AppConfig {
	return &config.AppConfig{
		IsDev: true,
		Auth: config.AuthConfig{
			Mode:       config.AuthModeMock,
			SessionTTL: time.Hour,
			DevAuth: config.DevAuthConfig{
				UserID: "dev-user",
				Email:  "dev@example.com",
			},
		},
		HTTP: config.HTTPConfig{BaseURL: "https://app.example.com/"},
		Mail: config.MailConfig{Provider: config.MailProviderLog, From: "beta@example.com"},
	}
}

func TestBuildDomainServices_WiresEverything(t *testing.T) {
	client, _ := testutil.SetupTestRedis(t)
	cfg := mockAuthConfig()

	c := buildDomainServices(&DomainServicesOptions{
		Repos:  buildRepositories(nil, client),
		Config: cfg,
		Logger: discardLogger(),
	})

	require.NotNil(t, c.Auth)
	require.NotNil(t, c.Roles)
	require.NotNil(t, c.RoleCache)
	require.NotNil(t, c.Invites)
	require.NotNil(t, c.BetaMode)
	require.NotNil(t, c.Access)

	ctx := context.Background()
	assert.False(t, c.BetaMode.Enabled(ctx))
	on := true
	require.NoError(t, c.BetaMode.SetOverride(ctx, &on))
	assert.True(t, c.BetaMode.Enabled(ctx), "override is read back through redis")
	assert.True(t, c.Invites.BetaModeEnabled(ctx))
}

func TestBuildDomainServices_RoleBypass(t *testing.T) {
	cfg := mockAuthConfig()
	cfg.Auth.DevAuth.Roles = []string{"admin", "mentor"}
	cfg.Auth.DevAuth.BypassTTL = time.Hour

	c := buildDomainServices(&DomainServicesOptions{
		Repos:  buildRepositories(nil, nil),
		Config: cfg,
		Logger: discardLogger(),
	})

	// No database is reachable; the bypass answers before the store is touched.
	info := c.Roles.Resolve(context.Background(), "anyone", false)
	assert.True(t, info.IsAdmin)
	assert.True(t, c.Roles.HasRole(context.Background(), "someone-else", domainauth.RoleMentor))
	assert.Nil(t, c.Auth, "auth needs redis for sessions")
}

func TestBuildRoleBypass(t *testing.T) {
	now := testutil.TestTime()

	assert.Nil(t, BuildRoleBypass(config.DevAuthConfig{}, now, discardLogger()))

	b := BuildRoleBypass(config.DevAuthConfig{ProfileRole: "creator", BypassTTL: time.Minute}, now, nil)
	require.NotNil(t, b)
	assert.Equal(t, now.Add(time.Minute), b.ExpiresAt())
	_, ok := b.Snapshot(now.Add(time.Minute))
	assert.False(t, ok)
}

func TestBuildNotifier(t *testing.T) {
	cfg := mockAuthConfig()
	logger := discardLogger()

	_, isLog := buildNotifier(cfg, logger).(*mail.LogNotifier)
	assert.True(t, isLog)

	cfg.Mail.Provider = config.MailProviderSendGrid
	cfg.Mail.SendGridAPIKey = "SG.key"
	_, isSendGrid := buildNotifier(cfg, logger).(*mail.SendGridNotifier)
	assert.True(t, isSendGrid)

	cfg.Mail.SendGridAPIKey = ""
	_, isLog = buildNotifier(cfg, logger).(*mail.LogNotifier)
	assert.True(t, isLog, "missing key falls back to logging")
}

func TestSignupURL(t *testing.T) {
	cfg := mockAuthConfig()
	assert.Equal(t, "https://app.example.com/signup", signupURL(cfg))

	cfg.Mail.SignupURL = "https://join.example.com/redeem"
	assert.Equal(t, "https://join.example.com/redeem", signupURL(cfg))
}

func TestReadinessChecks(t *testing.T) {
	client, mr := testutil.SetupTestRedis(t)

	checks := readinessChecks(nil, client)
	require.Len(t, checks, 1)
	require.NoError(t, checks["redis"](context.Background()))

	mr.SetError("LOADING redis is loading")
	assert.Error(t, checks["redis"](context.Background()))
}
