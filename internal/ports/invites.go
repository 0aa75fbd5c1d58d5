package ports

import (
	"context"
	"time"

	"github.com/drivenlabs/membergate/internal/domain/model"
)

// ClaimOutcome is the result of an InviteStore.Claim attempt.
type ClaimOutcome int

const (
	// ClaimInvalid means no sent invite has that code.
	ClaimInvalid ClaimOutcome = iota
	// ClaimExpired means the invite was past its deadline and is now expired.
	ClaimExpired
	// ClaimAlreadyMember means the user already holds beta access; nothing was written.
	ClaimAlreadyMember
	// ClaimSucceeded means the invite is claimed and the BetaUser row exists.
	ClaimSucceeded
)

func (o ClaimOutcome) String() string {
	switch o {
	case ClaimExpired:
		return "expired"
	case ClaimAlreadyMember:
		return "already_member"
	case ClaimSucceeded:
		return "claimed"
	default:
		return "invalid"
	}
}

// InviteStore persists beta invites and beta users. All status changes are
// conditional on the expected current status.
type InviteStore interface {
	// Create inserts a pending invite. A code collision with a live invite is a Conflict error.
	Create(ctx context.Context, inv *model.BetaInvite) error
	GetByID(ctx context.Context, id string) (*model.BetaInvite, error)
	// GetByCode returns the live (pending or sent) invite with code.
	GetByCode(ctx context.Context, code string) (*model.BetaInvite, error)
	// MarkSent moves pending → sent. false means the invite was not pending.
	MarkSent(ctx context.Context, id string, at time.Time) (bool, error)
	// MarkExpired moves from → expired. false means the invite was not in from.
	MarkExpired(ctx context.Context, id string, from model.InviteStatus) (bool, error)
	// Claim atomically re-validates the code at now, marks it claimed by userID
	// and records the BetaUser. Either both writes happen or neither does.
	Claim(ctx context.Context, code, userID string, now time.Time) (ClaimOutcome, error)
	// ExpireOverdue marks up to limit pending or sent invites whose deadline is
	// before now as expired and returns how many changed.
	ExpireOverdue(ctx context.Context, now time.Time, limit int) (int64, error)
	List(ctx context.Context, opts model.ListInvitesOptions) ([]*model.BetaInvite, error)
	ListBetaUsers(ctx context.Context) ([]*model.BetaUser, error)
	HasBetaUser(ctx context.Context, userID string) (bool, error)
}

// Notifier delivers invite emails.
type Notifier interface {
	SendInviteEmail(ctx context.Context, email, code string) error
}

// BetaOverrideStore keeps the runtime beta-mode override. A nil value means no override.
type BetaOverrideStore interface {
	GetOverride(ctx context.Context) (*bool, error)
	SetOverride(ctx context.Context, enabled *bool) error
}

// BetaModeFlag answers whether closed-beta gating is on.
type BetaModeFlag interface {
	Enabled(ctx context.Context) bool
	SetOverride(ctx context.Context, enabled *bool) error
}
