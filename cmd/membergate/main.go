// Command membergate serves the membership authorization API and, when
// enabled, the invite reaper.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/drivenlabs/membergate/config"
	"github.com/drivenlabs/membergate/internal/bootstrap"
)

func main() {
	logger := bootstrap.InitLogger()
	if err := run(context.Background(), logger); err != nil {
		logger.Error("membergate exited", "error", err)
		os.Exit(1) //nolint:forbidigo // non-zero exit tells the supervisor to restart us
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	for _, validate := range []func(*config.AppConfig) error{
		bootstrap.ValidateServiceConfig,
		bootstrap.ValidateRuntimeConfig,
	} {
		if err = validate(&cfg); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "starting membergate",
		"auth_mode", cfg.Auth.Mode,
		"beta_mode", cfg.Access.BetaModeEnabled,
		"mail_provider", cfg.Mail.Provider,
		"services", bootstrap.EnabledServiceNames(&cfg),
	)

	st, err := openStores(cfg, logger)
	if err != nil {
		return err
	}
	defer st.close(logger)

	if cfg.Postgres.RunMigrationsOnStart {
		if err = bootstrap.RunMigrations(ctx, st.db, logger); err != nil {
			return err
		}
	} else {
		logger.InfoContext(ctx, "migrations skipped", "reason", "DB_RUN_MIGRATIONS_ON_START=false")
	}

	services := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:      &cfg,
		DB:          st.db,
		RedisClient: st.redis,
		Logger:      logger,
	})
	return bootstrap.RunServicesWithShutdown(&bootstrap.ServiceOrchestrationConfig{
		Config:      &cfg,
		Services:    services,
		DB:          st.db,
		RedisClient: st.redis,
		Logger:      logger,
	})
}

// stores holds the two backing connections. Postgres keeps roles and invites;
// Redis keeps sessions and the beta-mode override. Both are required.
type stores struct {
	db    *sql.DB
	redis redis.UniversalClient
}

func openStores(cfg config.AppConfig, logger *slog.Logger) (*stores, error) {
	conn := bootstrap.DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: logger}

	db, err := bootstrap.ConnectDB(conn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	client, err := bootstrap.ConnectRedis(conn)
	if err != nil {
		(&stores{db: db}).close(logger)
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &stores{db: db, redis: client}, nil
}

func (s *stores) close(logger *slog.Logger) {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.Warn("close redis", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Warn("close postgres", "error", err)
		}
	}
}
