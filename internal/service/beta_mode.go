package service

import (
	"context"
	"errors"
	"log/slog"

	errs "github.com/drivenlabs/membergate/internal/errors"
	"github.com/drivenlabs/membergate/internal/ports"
)

// BetaModeOptions groups dependencies for BetaMode.
type BetaModeOptions struct {
	// Static is the BETA_MODE_ENABLED value.
	Static bool
	// Overrides holds the runtime admin override. Optional.
	Overrides ports.BetaOverrideStore
	Logger    *slog.Logger
}

// BetaMode answers whether closed-beta gating is on. A runtime override wins
// over the static flag; an unreadable override falls back to the static flag.
type BetaMode struct {
	static    bool
	overrides ports.BetaOverrideStore
	logger    *slog.Logger
}

var errNoOverrideStore = errors.New("beta override store is not configured")

// NewBetaMode constructs a BetaMode.
func NewBetaMode(opts BetaModeOptions) *BetaMode {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &BetaMode{
		static:    opts.Static,
		overrides: opts.Overrides,
		logger:    logger.With("component", "beta_mode"),
	}
}

// Enabled reports the effective beta-mode state.
func (b *BetaMode) Enabled(ctx context.Context) bool {
	if b.overrides == nil {
		return b.static
	}
	override, err := b.overrides.GetOverride(ctx)
	if err != nil {
		b.logger.WarnContext(ctx, "beta override unreadable, using static flag", "error", err)
		return b.static
	}
	if override != nil {
		return *override
	}
	return b.static
}

// SetOverride sets or, with nil, clears the runtime override.
func (b *BetaMode) SetOverride(ctx context.Context, enabled *bool) error {
	if b.overrides == nil {
		return errs.Wrap(errNoOverrideStore, errs.ErrCodeInternal, "beta override unavailable")
	}
	if err := b.overrides.SetOverride(ctx, enabled); err != nil {
		return errs.Persistence(err, "set beta override")
	}
	b.logger.InfoContext(ctx, "beta override changed", "override", describeOverride(enabled))
	return nil
}

func describeOverride(v *bool) string {
	switch {
	case v == nil:
		return "cleared"
	case *v:
		return "on"
	default:
		return "off"
	}
}

var _ ports.BetaModeFlag = (*BetaMode)(nil)
