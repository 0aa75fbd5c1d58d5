package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/drivenlabs/membergate/config"
	httpx "github.com/drivenlabs/membergate/internal/http"
)

const (
	defaultHTTPAddr     = ":8080"
	httpShutdownTimeout = 10 * time.Second
)

// HTTPServerConfig is the input to NewHTTPServer.
type HTTPServerConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewHTTPServer builds the API server. It does not start listening.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}
	addr := appCfg.HTTP.Addr
	if addr == "" {
		addr = defaultHTTPAddr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           httpx.NewRouter(buildRouterServices(cfg, appCfg, logger)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

// ServeHTTP listens until ctx ends, then drains in-flight requests. A listener
// failure is returned as is.
func ServeHTTP(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	listenErr := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "http server listening", "addr", srv.Addr)
		listenErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), httpShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("drain http server: %w", err)
	}
	logger.Info("http server drained")
	return nil
}

func buildRouterServices(cfg *HTTPServerConfig, appCfg *config.AppConfig, logger *slog.Logger) httpx.RouterServices {
	services := httpx.RouterServices{
		Auth:            cfg.Services.Auth,
		Roles:           cfg.Services.Roles,
		Invites:         cfg.Services.Invites,
		Access:          cfg.Services.Access,
		Readiness:       readinessChecks(cfg.DB, cfg.RedisClient),
		CookieDomain:    appCfg.HTTP.CookieDomain,
		InviteRateLimit: appCfg.HTTP.InviteRateLimit,
		Logger:          logger,
	}
	if cfg.Services.BetaMode != nil {
		services.BetaMode = cfg.Services.BetaMode
	}
	return services
}

func readinessChecks(db *sql.DB, client redis.UniversalClient) map[string]httpx.ReadinessCheck {
	checks := make(map[string]httpx.ReadinessCheck, 2)
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}
