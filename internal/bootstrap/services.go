package bootstrap

import (
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/drivenlabs/membergate/config"
	"github.com/drivenlabs/membergate/internal/adapters/mail"
	redisadapter "github.com/drivenlabs/membergate/internal/adapters/redis"
	"github.com/drivenlabs/membergate/internal/data"
	"github.com/drivenlabs/membergate/internal/observability/statsd"
	"github.com/drivenlabs/membergate/internal/ports"
	"github.com/drivenlabs/membergate/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth          *service.AuthService
	Roles         *service.RoleService
	RoleCache     *service.RoleCache
	Invites       *service.InviteService
	BetaMode      *service.BetaMode
	Access        *service.AccessService
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityConfig
}

// sink returns the metrics sink as the port, or nil when metrics are off.
//
//nolint:ireturn // services accept the statsd.Sink port.
func (o ObservabilityContainer) sink() statsd.Sink {
	if o.MetricsSink == nil || !o.MetricsSink.Enabled() {
		return nil
	}
	return o.MetricsSink
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Redis         redis.UniversalClient
	RoleRepo      *data.RoleRepo
	InviteRepo    *data.InviteRepo
	BetaOverrides ports.BetaOverrideStore
}

// buildObservability configures the metrics client.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.MetricsEnabled {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.StatsdAddress,
			Prefix:  cfg.MetricsPrefix,
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:   metricsSink,
		MetricsConfig: cfg,
	}
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, client redis.UniversalClient) *serviceRepositories {
	repos := &serviceRepositories{
		Redis:      client,
		RoleRepo:   data.NewRoleRepo(db),
		InviteRepo: data.NewInviteRepo(db),
	}
	if client != nil {
		repos.BetaOverrides = redisadapter.NewBetaOverrideStore(client, "")
	}
	return repos
}

// signupURL resolves where invite links point.
func signupURL(cfg *config.AppConfig) string {
	if cfg.Mail.SignupURL != "" {
		return cfg.Mail.SignupURL
	}
	return strings.TrimSuffix(cfg.HTTP.BaseURL, "/") + "/signup"
}

// buildNotifier selects the invite email transport.
//
//nolint:ireturn // services accept the ports.Notifier port.
func buildNotifier(cfg *config.AppConfig, logger *slog.Logger) ports.Notifier {
	link := signupURL(cfg)
	if cfg.Mail.Provider != config.MailProviderSendGrid {
		return mail.NewLogNotifier(logger, link)
	}
	n, err := mail.NewSendGridNotifier(mail.SendGridOptions{
		APIKey:     cfg.Mail.SendGridAPIKey,
		From:       cfg.Mail.From,
		FromName:   cfg.Mail.FromName,
		TemplateID: cfg.Mail.TemplateID,
		SignupURL:  link,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("sendgrid notifier unavailable; invite emails will only be logged", "error", err)
		return mail.NewLogNotifier(logger, link)
	}
	return n
}

// DomainServicesOptions groups inputs for buildDomainServices.
type DomainServicesOptions struct {
	Repos         *serviceRepositories
	Observability ObservabilityContainer
	Config        *config.AppConfig
	Logger        *slog.Logger
}

// buildDomainServices wires business services using repositories and observability adapters.
func buildDomainServices(opts *DomainServicesOptions) ServiceContainer {
	if opts == nil {
		return ServiceContainer{}
	}
	svcLogger := opts.Logger
	if svcLogger == nil {
		svcLogger = slog.Default()
	}

	appCfg := opts.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}
	metrics := opts.Observability.sink()

	cache := service.NewRoleCache(service.RoleCacheConfig{TTL: appCfg.Access.RoleCacheTTL})
	roleOpts := service.RoleServiceOptions{
		Store:        opts.Repos.RoleRepo,
		Admin:        opts.Repos.RoleRepo,
		Cache:        cache,
		StoreTimeout: appCfg.Access.RoleStoreTimeout,
		Logger:       svcLogger,
		Metrics:      metrics,
	}
	if bypass := BuildRoleBypass(appCfg.Auth.DevAuth, time.Now(), svcLogger); bypass != nil {
		roleOpts.Bypass = bypass
	}
	roles := service.NewRoleService(roleOpts)

	betaMode := service.NewBetaMode(service.BetaModeOptions{
		Static:    appCfg.Access.BetaModeEnabled,
		Overrides: opts.Repos.BetaOverrides,
		Logger:    svcLogger,
	})

	invites := service.NewInviteService(service.InviteServiceOptions{
		Store:       opts.Repos.InviteRepo,
		Notifier:    buildNotifier(appCfg, svcLogger),
		BetaMode:    betaMode,
		InviteTTL:   appCfg.Access.InviteTTL,
		CodeRetries: appCfg.Access.CodeRetries,
		Logger:      svcLogger,
		Metrics:     metrics,
	})

	access := service.NewAccessService(service.AccessServiceOptions{
		Roles:        roles,
		Tiers:        opts.Repos.RoleRepo,
		Beta:         invites,
		StoreTimeout: appCfg.Access.RoleStoreTimeout,
		Logger:       svcLogger,
	})

	auth := BuildAuthService(AuthConfig{
		Auth:        appCfg.Auth,
		RedisClient: opts.Repos.Redis,
		Roles:       roles,
		Logger:      svcLogger,
	})

	return ServiceContainer{
		Auth:          auth,
		Roles:         roles,
		RoleCache:     cache,
		Invites:       invites,
		BetaMode:      betaMode,
		Access:        access,
		Observability: opts.Observability,
	}
}

// NewServices builds the service container from live infrastructure.
func NewServices(deps *ServiceDeps) ServiceContainer {
	if deps == nil {
		return ServiceContainer{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var obsCfg config.ObservabilityConfig
	if deps.Config != nil {
		obsCfg = deps.Config.Observability
	}
	observability := buildObservability(logger, obsCfg)
	repos := buildRepositories(deps.DB, deps.RedisClient)
	return buildDomainServices(&DomainServicesOptions{
		Repos:         repos,
		Observability: observability,
		Config:        deps.Config,
		Logger:        logger,
	})
}
