package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/drivenlabs/membergate/config"
	"github.com/drivenlabs/membergate/internal/adapters/reaper"
	"github.com/drivenlabs/membergate/internal/observability/statsd"
)

// shutdownWaitTimeout bounds how long components get to stop after a signal.
const shutdownWaitTimeout = 15 * time.Second

var errShutdownTimeout = errors.New("services did not stop in time")

// ServiceOrchestrationConfig is everything RunServicesWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// component is one long-running part of the process. run blocks until ctx
// ends or the component fails.
type component struct {
	mode config.ServiceMode
	name string
	run  func(ctx context.Context) error
}

// RunServicesWithShutdown runs the enabled components until SIGINT or SIGTERM,
// or until one of them fails, which stops the others.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.EnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	if enabled[config.ServiceModeHTTP] && cfg.Services.Auth == nil {
		return errors.New("http service requires a working auth provider")
	}
	defer closeMetrics(cfg.Services.Observability, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runComponents(ctx, logger, selectComponents(enabled, allComponents(cfg, logger)), shutdownWaitTimeout)
}

func allComponents(cfg *ServiceOrchestrationConfig, logger *slog.Logger) []component {
	return []component{
		{
			mode: config.ServiceModeHTTP,
			name: "http server",
			run: func(ctx context.Context) error {
				return ServeHTTP(ctx, NewHTTPServer(&HTTPServerConfig{
					Config:      cfg.Config,
					Services:    cfg.Services,
					DB:          cfg.DB,
					RedisClient: cfg.RedisClient,
					Logger:      logger,
				}), logger)
			},
		},
		{
			mode: config.ServiceModeInviteReaper,
			name: "invite reaper",
			run: func(ctx context.Context) error {
				return RunInviteReaper(ctx, InviteReaperConfig{
					DB:      cfg.DB,
					Logger:  logger,
					Config:  cfg.Config.Reaper,
					Metrics: cfg.Services.Observability.sink(),
				})
			},
		},
	}
}

func selectComponents(enabled map[config.ServiceMode]bool, all []component) []component {
	out := make([]component, 0, len(all))
	for _, c := range all {
		if enabled[c.mode] {
			out = append(out, c)
		}
	}
	return out
}

// runComponents starts every component in its own goroutine. The first
// failure cancels the rest and is returned; a cancelled ctx is a clean stop.
// Once ctx ends the components have grace to return.
func runComponents(ctx context.Context, logger *slog.Logger, comps []component, grace time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range comps {
		g.Go(func() error {
			logger.InfoContext(gctx, "service started", "service", c.name)
			err := c.run(gctx)
			if err != nil && !(errors.Is(err, context.Canceled) && gctx.Err() != nil) {
				logger.ErrorContext(gctx, "service failed", "service", c.name, "error", err)
				return fmt.Errorf("%s: %w", c.name, err)
			}
			logger.InfoContext(gctx, "service stopped", "service", c.name)
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-gctx.Done():
	}

	logger.Info("shutting down services")
	select {
	case err := <-done:
		return err
	case <-time.After(grace):
		return errShutdownTimeout
	}
}

func closeMetrics(obs ObservabilityContainer, logger *slog.Logger) {
	if obs.MetricsSink == nil {
		return
	}
	if err := obs.MetricsSink.Close(); err != nil {
		logger.Warn("close statsd client", "error", err)
	}
}

// InviteReaperConfig is the input to RunInviteReaper.
type InviteReaperConfig struct {
	DB      *sql.DB
	Logger  *slog.Logger
	Config  config.ReaperConfig
	Metrics statsd.Sink
}

// RunInviteReaper expires overdue invites until ctx is cancelled.
func RunInviteReaper(ctx context.Context, cfg InviteReaperConfig) error {
	runner, err := reaper.NewRunner(reaper.RunnerOptions{
		DB:      cfg.DB,
		Config:  cfg.Config,
		Logger:  cfg.Logger,
		Metrics: cfg.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create invite reaper: %w", err)
	}
	return runner.Run(ctx)
}
