// Package reaper runs the overdue-invite expiry loop as a standalone service mode.
package reaper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/drivenlabs/membergate/config"
	"github.com/drivenlabs/membergate/internal/data"
	"github.com/drivenlabs/membergate/internal/observability/statsd"
	"github.com/drivenlabs/membergate/internal/ports"
	"github.com/drivenlabs/membergate/internal/service"
)

// Runner wires an InviteReaper over the Postgres invite store.
type Runner struct {
	reaper *service.InviteReaper
	logger *slog.Logger
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	DB     *sql.DB
	Config config.ReaperConfig
	Logger *slog.Logger

	// Optional dependency injection for testing
	Store   ports.InviteStore
	Metrics statsd.Sink
}

// NewRunner creates a new reaper runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	store := opts.Store
	if store == nil {
		if opts.DB == nil {
			return nil, errors.New("database connection is required")
		}
		store = data.NewInviteRepo(opts.DB)
	}

	// The reaper never sends mail.
	invites := service.NewInviteService(service.InviteServiceOptions{
		Store:    store,
		Notifier: noopNotifier{},
		Logger:   opts.Logger,
		Metrics:  opts.Metrics,
	})

	reaper, err := service.NewInviteReaper(service.InviteReaperOptions{
		Invites:   invites,
		Interval:  opts.Config.Interval,
		BatchSize: opts.Config.BatchSize,
		Logger:    opts.Logger,
		Metrics:   opts.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("wire invite reaper: %w", err)
	}
	return &Runner{reaper: reaper, logger: opts.Logger}, nil
}

// Run starts the reaper loop and runs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting invite reaper runner")
	return r.reaper.Run(ctx)
}

type noopNotifier struct{}

func (noopNotifier) SendInviteEmail(context.Context, string, string) error {
	return errors.New("invite reaper does not send email")
}
