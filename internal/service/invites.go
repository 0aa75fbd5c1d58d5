package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/drivenlabs/membergate/internal/domain/model"
	errs "github.com/drivenlabs/membergate/internal/errors"
	"github.com/drivenlabs/membergate/internal/observability/metrics"
	"github.com/drivenlabs/membergate/internal/observability/statsd"
	"github.com/drivenlabs/membergate/internal/ports"
)

// DefaultCodeRetries is how many codes CreateInvite tries before giving up.
const DefaultCodeRetries = 5

// InviteServiceOptions groups dependencies for InviteService.
type InviteServiceOptions struct {
	Store    ports.InviteStore  // Required: invite persistence
	Notifier ports.Notifier     // Required: invite email delivery
	BetaMode ports.BetaModeFlag // Optional: nil means beta mode is off
	Clock    ports.Clock        // Optional: defaults to wall clock
	// InviteTTL is the claim window. Defaults to model.DefaultInviteTTL.
	InviteTTL time.Duration
	// CodeRetries bounds attempts after a code collision. Defaults to DefaultCodeRetries.
	CodeRetries int
	// GenerateCode overrides the code source, for tests.
	GenerateCode func() (string, error)
	Logger       *slog.Logger
	Metrics      statsd.Sink // Optional: metrics sink (StatsD-compatible)
}

// InviteService runs the beta invite lifecycle:
// pending → sent → claimed, with sent invites expiring lazily.
type InviteService struct {
	store       ports.InviteStore
	notifier    ports.Notifier
	betaMode    ports.BetaModeFlag
	clock       ports.Clock
	ttl         time.Duration
	codeRetries int
	genCode     func() (string, error)
	logger      *slog.Logger
	metrics     statsd.Sink
}

var errCodeSpaceExhausted = errors.New("no unused invite code found")

// NewInviteService constructs an InviteService. It panics when Store or Notifier is nil.
func NewInviteService(opts InviteServiceOptions) *InviteService {
	if opts.Store == nil {
		//nolint:forbidigo // Constructor guard for required dependency
		panic("InviteStore is required")
	}
	if opts.Notifier == nil {
		//nolint:forbidigo // Constructor guard for required dependency
		panic("Notifier is required")
	}
	svc := &InviteService{
		store:       opts.Store,
		notifier:    opts.Notifier,
		betaMode:    opts.BetaMode,
		clock:       opts.Clock,
		ttl:         opts.InviteTTL,
		codeRetries: opts.CodeRetries,
		genCode:     opts.GenerateCode,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
	}
	if svc.clock == nil {
		svc.clock = wallClock{}
	}
	if svc.ttl <= 0 {
		svc.ttl = model.DefaultInviteTTL
	}
	if svc.codeRetries < 1 {
		svc.codeRetries = DefaultCodeRetries
	}
	if svc.genCode == nil {
		svc.genCode = GenerateCode
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	svc.logger = svc.logger.With("component", "invite_service")
	return svc
}

// CreateInvite stores a pending invite for req.Email that expires after the
// configured TTL. A code collision with a live invite is retried with a fresh
// code; any other write failure is a persistence error.
func (s *InviteService) CreateInvite(ctx context.Context, req model.CreateInviteRequest) (*model.BetaInvite, error) {
	inv, err := s.createInvite(ctx, req)
	s.emit("create", resultOf(inv != nil, err), err)
	return inv, err
}

func (s *InviteService) createInvite(ctx context.Context, req model.CreateInviteRequest) (*model.BetaInvite, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, errs.Wrap(err, errs.ErrCodeValidation, err.Error())
	}

	for attempt := 1; attempt <= s.codeRetries; attempt++ {
		code, err := s.genCode()
		if err != nil {
			return nil, errs.Wrap(err, errs.ErrCodeInternal, "generate invite code")
		}

		now := s.clock.Now().UTC()
		inv := &model.BetaInvite{
			ID:        uuid.NewString(),
			Code:      code,
			Email:     req.Email,
			Status:    model.InviteStatusPending,
			CreatedAt: now,
			ExpiresAt: now.Add(s.ttl),
			CreatedBy: req.CreatedBy,
			Notes:     req.Notes,
		}

		err = s.store.Create(ctx, inv)
		if err == nil {
			s.logger.InfoContext(ctx, "invite created", "invite_id", inv.ID, "attempt", attempt)
			return inv, nil
		}
		if errs.IsConflict(err) && errs.GetField(err) == "code" {
			s.logger.WarnContext(ctx, "invite code collision, retrying", "attempt", attempt)
			continue
		}
		return nil, errs.Persistence(err, "create invite")
	}
	return nil, errs.Persistence(errCodeSpaceExhausted, fmt.Sprintf("create invite after %d attempts", s.codeRetries))
}

// SendInvite emails the invite code and, only once delivery succeeded, marks
// the invite sent. A missing invite is a NotFound error. A pending invite past
// its deadline is expired instead of mailed and reported as a Conflict. A
// failed delivery leaves the invite pending and returns false with the error.
func (s *InviteService) SendInvite(ctx context.Context, inviteID string) (bool, error) {
	ok, err := s.sendInvite(ctx, inviteID)
	s.emit("send", resultOf(ok, err), err)
	return ok, err
}

func (s *InviteService) sendInvite(ctx context.Context, inviteID string) (bool, error) {
	if strings.TrimSpace(inviteID) == "" {
		return false, errs.ValidationField("invite_id", "invite id is required")
	}
	inv, err := s.store.GetByID(ctx, inviteID)
	if err != nil {
		if errs.IsNotFound(err) {
			return false, errs.NotFound("invite not found")
		}
		return false, fmt.Errorf("load invite: %w", err)
	}
	if inv.Status != model.InviteStatusPending {
		return false, errs.Conflict(fmt.Sprintf("invite is %s, not pending", inv.Status))
	}
	if inv.IsExpiredAt(s.clock.Now()) {
		changed, err := s.store.MarkExpired(ctx, inv.ID, model.InviteStatusPending)
		if err != nil {
			s.logger.WarnContext(ctx, "lazy invite expiry failed", "invite_id", inv.ID, "error", err)
		}
		s.emit("expire", resultOf(changed, err), err)
		return false, errs.Conflict("invite expired before it was sent")
	}

	if err := s.notifier.SendInviteEmail(ctx, inv.Email, inv.Code); err != nil {
		s.logger.ErrorContext(ctx, "invite email failed", "invite_id", inv.ID, "error", err)
		return false, fmt.Errorf("send invite email: %w", err)
	}

	changed, err := s.store.MarkSent(ctx, inv.ID, s.clock.Now().UTC())
	if err != nil {
		return false, errs.Persistence(err, "mark invite sent")
	}
	if !changed {
		// Another sender won the race; the email still went out.
		s.logger.WarnContext(ctx, "invite was no longer pending after send", "invite_id", inv.ID)
		return false, nil
	}
	s.logger.InfoContext(ctx, "invite sent", "invite_id", inv.ID)
	return true, nil
}

// ValidateInviteCode reports whether code belongs to a sent, unexpired
// invite. A sent invite past its deadline is marked expired as a side effect.
// Lookup failures are logged and reported as false.
func (s *InviteService) ValidateInviteCode(ctx context.Context, code string) bool {
	code = normalizeCode(code)
	if code == "" {
		return false
	}
	inv, err := s.store.GetByCode(ctx, code)
	if err != nil {
		if !errs.IsNotFound(err) {
			s.logger.WarnContext(ctx, "invite lookup failed", "error", err)
		}
		return false
	}
	if inv.Status != model.InviteStatusSent {
		return false
	}
	if inv.IsExpiredAt(s.clock.Now()) {
		changed, err := s.store.MarkExpired(ctx, inv.ID, model.InviteStatusSent)
		if err != nil {
			s.logger.WarnContext(ctx, "lazy invite expiry failed", "invite_id", inv.ID, "error", err)
		}
		s.emit("expire", resultOf(changed, err), err)
		return false
	}
	return true
}

// ClaimInviteCode redeems code for userID. The status change and the beta
// user record are written together or not at all. Every failure is false.
func (s *InviteService) ClaimInviteCode(ctx context.Context, code, userID string) bool {
	code = normalizeCode(code)
	if code == "" || strings.TrimSpace(userID) == "" {
		return false
	}
	outcome, err := s.store.Claim(ctx, code, userID, s.clock.Now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "invite claim failed", "user_id", userID, "error", err)
		s.emit("claim", metrics.ResultError, err)
		return false
	}
	s.logger.InfoContext(ctx, "invite claim", "user_id", userID, "outcome", outcome.String())
	ok := outcome == ports.ClaimSucceeded
	s.emit("claim", resultOf(ok, nil), nil)
	return ok
}

// HasBetaAccess is true for everyone when beta mode is off, otherwise only
// for users holding a beta user record. Store errors deny access.
func (s *InviteService) HasBetaAccess(ctx context.Context, userID string) bool {
	if !s.BetaModeEnabled(ctx) {
		return true
	}
	if strings.TrimSpace(userID) == "" {
		return false
	}
	ok, err := s.store.HasBetaUser(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "beta access lookup failed", "user_id", userID, "error", err)
		return false
	}
	return ok
}

// BetaModeEnabled reports whether closed-beta gating is on.
func (s *InviteService) BetaModeEnabled(ctx context.Context) bool {
	return s.betaMode != nil && s.betaMode.Enabled(ctx)
}

// BulkInvite creates and sends one invite per email in order and returns how
// many were both created and sent. Individual failures are logged and skipped.
func (s *InviteService) BulkInvite(ctx context.Context, emails []string, createdBy *string) int {
	sent := 0
	for i, email := range emails {
		if ctx.Err() != nil {
			s.logger.WarnContext(ctx, "bulk invite interrupted", "processed", i, "error", ctx.Err())
			break
		}
		inv, err := s.CreateInvite(ctx, model.CreateInviteRequest{Email: email, CreatedBy: createdBy})
		if err != nil {
			s.logger.WarnContext(ctx, "bulk invite create failed", "index", i, "error", err)
			continue
		}
		ok, err := s.SendInvite(ctx, inv.ID)
		if err != nil || !ok {
			s.logger.WarnContext(ctx, "bulk invite send failed", "invite_id", inv.ID, "error", err)
			continue
		}
		sent++
	}
	s.logger.InfoContext(ctx, "bulk invite finished", "requested", len(emails), "sent", sent)
	return sent
}

// ListInvites returns invites newest first.
func (s *InviteService) ListInvites(ctx context.Context, opts model.ListInvitesOptions) ([]*model.BetaInvite, error) {
	if err := opts.Validate(); err != nil {
		return nil, errs.Wrap(err, errs.ErrCodeValidation, err.Error())
	}
	return s.store.List(ctx, opts)
}

// ListBetaUsers returns every beta user.
func (s *InviteService) ListBetaUsers(ctx context.Context) ([]*model.BetaUser, error) {
	return s.store.ListBetaUsers(ctx)
}

// RevokeInvite expires a pending or sent invite. Revoking a claimed or
// already expired invite is a Conflict.
func (s *InviteService) RevokeInvite(ctx context.Context, inviteID string) error {
	inv, err := s.store.GetByID(ctx, inviteID)
	if err != nil {
		if errs.IsNotFound(err) {
			return errs.NotFound("invite not found")
		}
		return fmt.Errorf("load invite: %w", err)
	}
	if !model.CanTransition(inv.Status, model.InviteStatusExpired) {
		return errs.Conflict(fmt.Sprintf("invite is %s", inv.Status))
	}
	changed, err := s.store.MarkExpired(ctx, inv.ID, inv.Status)
	if err != nil {
		return errs.Persistence(err, "revoke invite")
	}
	if !changed {
		return errs.Conflict("invite changed concurrently")
	}
	s.logger.InfoContext(ctx, "invite revoked", "invite_id", inv.ID, "from", inv.Status)
	s.emit("revoke", metrics.ResultSuccess, nil)
	return nil
}

// ExpireOverdue expires up to limit invites whose deadline has passed.
func (s *InviteService) ExpireOverdue(ctx context.Context, limit int) (int64, error) {
	n, err := s.store.ExpireOverdue(ctx, s.clock.Now().UTC(), limit)
	if err != nil {
		err = errs.Persistence(err, "expire overdue invites")
		s.emit("sweep", metrics.ResultError, err)
		return 0, err
	}
	s.emit("sweep", resultOf(n > 0, nil), nil)
	return n, nil
}

func (s *InviteService) emit(transition, result string, err error) {
	metrics.EmitInviteTransition(s.metrics, metrics.InviteMetric{Transition: transition, Result: result, Err: err})
}

func resultOf(ok bool, err error) string {
	switch {
	case err != nil:
		return metrics.ResultError
	case ok:
		return metrics.ResultSuccess
	default:
		return metrics.ResultNoop
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
