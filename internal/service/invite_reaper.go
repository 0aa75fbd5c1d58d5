package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/drivenlabs/membergate/internal/observability/statsd"
)

// OverdueExpirer expires invites whose deadline has passed, one batch per call.
type OverdueExpirer interface {
	ExpireOverdue(ctx context.Context, limit int) (int64, error)
}

// InviteReaperOptions groups dependencies for InviteReaper.
type InviteReaperOptions struct {
	Invites   OverdueExpirer // Required
	Interval  time.Duration  // Required: tick interval
	BatchSize int            // Required: rows per batch
	Logger    *slog.Logger   // Optional: structured logger
	Metrics   statsd.Sink    // Optional: metrics sink (StatsD-compatible)
}

// InviteReaper periodically expires overdue invites so that listings reflect
// reality without waiting for a lazy expiry on validate or claim.
type InviteReaper struct {
	invites   OverdueExpirer
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   statsd.Sink
}

// NewInviteReaper constructs an InviteReaper.
func NewInviteReaper(opts InviteReaperOptions) (*InviteReaper, error) {
	if opts.Invites == nil {
		return nil, errors.New("invite expirer is required")
	}
	if opts.Interval <= 0 {
		return nil, errors.New("reaper interval must be positive")
	}
	if opts.BatchSize < 1 {
		return nil, errors.New("reaper batch size must be positive")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &InviteReaper{
		invites:   opts.Invites,
		interval:  opts.Interval,
		batchSize: opts.BatchSize,
		logger:    logger.With("component", "invite_reaper"),
		metrics:   opts.Metrics,
	}, nil
}

// Run sweeps immediately after a short jitter and then on every tick until
// ctx is cancelled. Returns nil on graceful shutdown.
func (r *InviteReaper) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting invite reaper", "interval", r.interval, "batch_size", r.batchSize)

	r.waitWithJitter(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.sweepAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "invite reaper stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			r.sweepAndLog(ctx)
		}
	}
}

// Sweep expires overdue invites batch by batch until none are left.
func (r *InviteReaper) Sweep(ctx context.Context) (int64, error) {
	var total int64
	for {
		n, err := r.invites.ExpireOverdue(ctx, r.batchSize)
		if err != nil {
			return total, err
		}
		total += n
		if n < int64(r.batchSize) {
			return total, nil
		}
		// Check context between batches
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
	}
}

func (r *InviteReaper) sweepAndLog(ctx context.Context) {
	start := time.Now()
	n, err := r.Sweep(ctx)
	elapsed := time.Since(start)

	if r.metrics != nil {
		r.metrics.Timing("invite_reaper.sweep_duration", elapsed, nil)
		r.metrics.Count("invite_reaper.expired", n, nil)
	}

	switch {
	case err != nil && isContextCancellation(err):
		r.logger.Debug("invite sweep cancelled by context", "error", err)
	case err != nil:
		r.logger.ErrorContext(ctx, "invite sweep failed", "expired", n, "error", err)
	case n > 0:
		r.logger.InfoContext(ctx, "expired overdue invites", "count", n, "elapsed", elapsed)
	}
}

// waitWithJitter delays up to 10% of the interval so replicas do not sweep together.
func (r *InviteReaper) waitWithJitter(ctx context.Context) {
	maxJitter := int64(r.interval / 10)
	if maxJitter <= 0 {
		return
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return
	}
	jitter := time.Duration(int64(binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter))) // #nosec G115 - bounded by maxJitter

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

func isContextCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
