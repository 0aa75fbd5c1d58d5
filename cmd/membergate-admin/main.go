package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/drivenlabs/membergate/config"
	"github.com/drivenlabs/membergate/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultCommandTimeout   = time.Minute
)

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
	}
	runErr := cmd.run(cmdCtx, os.Args[2:])
	stop()
	if runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"invite-create": {
			name:        "invite-create",
			description: "Create a beta invite and optionally email it",
			run:         runInviteCreate,
		},
		"invite-bulk": {
			name:        "invite-bulk",
			description: "Create and send invites for a file of email addresses",
			run:         runInviteBulk,
		},
		"invite-list": {
			name:        "invite-list",
			description: "List beta invites, newest first",
			run:         runInviteList,
		},
		"invite-revoke": {
			name:        "invite-revoke",
			description: "Expire a pending or sent invite",
			run:         runInviteRevoke,
		},
		"expire-invites": {
			name:        "expire-invites",
			description: "Expire every invite past its deadline",
			run:         runExpireInvites,
		},
		"beta-users": {
			name:        "beta-users",
			description: "List users who claimed an invite",
			run:         runBetaUsers,
		},
		"beta-mode": {
			name:        "beta-mode",
			description: "Show or override closed-beta mode",
			run:         runBetaMode,
		},
		"profile-set": {
			name:        "profile-set",
			description: "Set the profile role and subscription tier of a principal",
			run:         runProfileSet,
		},
		"role-show": {
			name:        "role-show",
			description: "Resolve the roles of a principal",
			run:         runRoleShow,
		},
		"role-assign": {
			name:        "role-assign",
			description: "Assign a role to a principal",
			run:         runRoleAssign,
		},
		"role-revoke": {
			name:        "role-revoke",
			description: "Revoke a role from a principal",
			run:         runRoleRevoke,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: membergate-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-18s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

type migrateOptions struct {
	Timeout time.Duration
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{}
	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete",
	)

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer closeDB(cmdCtx.Logger, db)

	cmdCtx.Logger.Info("running database migrations")
	if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
		return fmt.Errorf("run migrations: %w", migrateErr)
	}
	cmdCtx.Logger.Info("migrations completed successfully")
	return nil
}

// serviceSession holds live services for one command invocation.
type serviceSession struct {
	Services bootstrap.ServiceContainer
	db       *sql.DB
	redis    redis.UniversalClient
	logger   *slog.Logger
}

func (s *serviceSession) Close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn("redis close failed", "error", err)
		}
	}
	closeDB(s.logger, s.db)
}

// openServices connects Postgres, and Redis when wantRedis is set, and wires
// the service container. Commands that only touch Postgres skip Redis.
func openServices(cmdCtx *commandContext, wantRedis bool) (*serviceSession, error) {
	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	var client redis.UniversalClient
	if wantRedis {
		client, err = bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
			RedisConfig: cmdCtx.Config.Redis,
			Logger:      cmdCtx.Logger,
		})
		if err != nil {
			closeDB(cmdCtx.Logger, db)
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}

	cfg := cmdCtx.Config
	return &serviceSession{
		Services: bootstrap.NewServices(&bootstrap.ServiceDeps{
			Config:      &cfg,
			DB:          db,
			RedisClient: client,
			Logger:      cmdCtx.Logger,
		}),
		db:     db,
		redis:  client,
		logger: cmdCtx.Logger,
	}, nil
}

func closeDB(logger *slog.Logger, db *sql.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Warn("db close failed", "error", err)
	}
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
