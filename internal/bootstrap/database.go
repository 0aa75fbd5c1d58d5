package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/drivenlabs/membergate/config"
	"github.com/drivenlabs/membergate/internal/migrate"
)

const connectTimeout = 5 * time.Second

// DatabaseConfig names the store to connect to. ConnectDB reads DBConfig and
// ConnectRedis reads RedisConfig.
type DatabaseConfig struct {
	DBConfig    config.DBConfig
	RedisConfig config.RedisConfig
	Logger      *slog.Logger
}

// ConnectDB opens the Postgres pool through the pgx stdlib driver and pings it.
func ConnectDB(cfg DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", postgresDSN(cfg.DBConfig))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Role and tier lookups are short point reads.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)

	if err = pingOrClose(db.PingContext, db.Close); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("database connected",
			"host", cfg.DBConfig.Host,
			"port", cfg.DBConfig.Port,
			"database", cfg.DBConfig.Name,
		)
	}
	return db, nil
}

// postgresDSN builds a postgres:// URL so credentials with special characters survive.
func postgresDSN(c config.DBConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// ConnectRedis builds a single-node, sentinel or cluster client from cfg and pings it.
//
//nolint:ireturn // the concrete client depends on the deployment topology.
func ConnectRedis(cfg DatabaseConfig) (redis.UniversalClient, error) {
	opts, mode, err := redisOptions(cfg.RedisConfig)
	if err != nil {
		return nil, err
	}
	client := redis.NewUniversalClient(opts)

	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	if err = pingOrClose(ping, client.Close); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("redis connected", "mode", mode, "addrs", strings.Join(opts.Addrs, ","), "db", opts.DB)
	}
	return client, nil
}

// redisOptions maps the flat env config onto go-redis universal options.
// Sentinel wins over cluster; a direct URI may be a redis:// URL or host:port.
func redisOptions(c config.RedisConfig) (*redis.UniversalOptions, string, error) {
	switch {
	case c.UseSentinel:
		addrs := trimAddrs(c.SentinelNodes)
		if len(addrs) == 0 {
			return nil, "", errors.New("redis sentinel mode needs at least one sentinel node")
		}
		return &redis.UniversalOptions{
			Addrs:            addrs,
			MasterName:       c.SentinelMasterName,
			Password:         c.Password,
			SentinelPassword: c.SentinelPassword,
			DB:               c.DB,
		}, "sentinel", nil

	case c.UseCluster:
		opts := &redis.UniversalOptions{
			Addrs:         trimAddrs(c.ClusterNodes),
			Password:      c.Password,
			IsClusterMode: true,
		}
		if len(opts.Addrs) == 0 {
			if err := mergeURI(opts, c.URI); err != nil {
				return nil, "", err
			}
			opts.DB = 0
		}
		if len(opts.Addrs) == 0 {
			return nil, "", errors.New("redis cluster mode needs at least one node")
		}
		return opts, "cluster", nil

	default:
		opts := &redis.UniversalOptions{Password: c.Password, DB: c.DB}
		if err := mergeURI(opts, c.URI); err != nil {
			return nil, "", err
		}
		if len(opts.Addrs) == 0 {
			return nil, "", errors.New("redis direct mode needs REDIS_URI")
		}
		return opts, "single", nil
	}
}

// mergeURI fills opts from uri. URL credentials and a non-zero URL database
// take precedence over the separate env values.
func mergeURI(opts *redis.UniversalOptions, uri string) error {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil
	}
	if !strings.HasPrefix(uri, "redis://") && !strings.HasPrefix(uri, "rediss://") {
		opts.Addrs = []string{uri}
		return nil
	}

	parsed, err := redis.ParseURL(uri)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	opts.Addrs = []string{parsed.Addr}
	opts.Username = parsed.Username
	opts.TLSConfig = parsed.TLSConfig
	if parsed.Password != "" {
		opts.Password = parsed.Password
	}
	if parsed.DB != 0 {
		opts.DB = parsed.DB
	}
	return nil
}

func trimAddrs(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, a := range raw {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func pingOrClose(ping func(context.Context) error, closeFn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	err := ping(ctx)
	if err == nil {
		return nil
	}
	if closeErr := closeFn(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("close after failed ping: %w", closeErr))
	}
	return err
}

// RunMigrations applies the role and invite schema.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := migrate.Run(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if logger != nil {
		logger.InfoContext(ctx, "database migrations completed")
	}
	return nil
}
