//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/idna"
)

// InviteStatus is the lifecycle state of a BetaInvite.
type InviteStatus string

// Invite statuses. Claimed and expired are terminal.
const (
	InviteStatusPending InviteStatus = "pending"
	InviteStatusSent    InviteStatus = "sent"
	InviteStatusClaimed InviteStatus = "claimed"
	InviteStatusExpired InviteStatus = "expired"
)

// DefaultInviteTTL is how long an invite stays claimable after creation.
const DefaultInviteTTL = 30 * 24 * time.Hour

// ValidInviteStatuses returns all statuses in lifecycle order.
func ValidInviteStatuses() []InviteStatus {
	return []InviteStatus{InviteStatusPending, InviteStatusSent, InviteStatusClaimed, InviteStatusExpired}
}

// IsTerminal reports whether no transition leaves s.
func (s InviteStatus) IsTerminal() bool {
	return s == InviteStatusClaimed || s == InviteStatusExpired
}

// CanTransition reports whether from → to is an allowed lifecycle step.
func CanTransition(from, to InviteStatus) bool {
	switch from {
	case InviteStatusPending:
		return to == InviteStatusSent || to == InviteStatusExpired
	case InviteStatusSent:
		return to == InviteStatusClaimed || to == InviteStatusExpired
	default:
		return false
	}
}

// BetaInvite is a single-use signup code.
type BetaInvite struct {
	ID        string       `json:"id"                   db:"id"`
	Code      string       `json:"code"                 db:"code"`
	Email     string       `json:"email"                db:"email"`
	Status    InviteStatus `json:"status"               db:"status"`
	CreatedAt time.Time    `json:"created_at"           db:"created_at"`
	SentAt    *time.Time   `json:"sent_at,omitempty"    db:"sent_at"`
	ClaimedAt *time.Time   `json:"claimed_at,omitempty" db:"claimed_at"`
	ClaimedBy *string      `json:"claimed_by,omitempty" db:"claimed_by"`
	ExpiresAt time.Time    `json:"expires_at"           db:"expires_at"`
	CreatedBy *string      `json:"created_by,omitempty" db:"created_by"`
	Notes     *string      `json:"notes,omitempty"      db:"notes"`
}

// IsExpiredAt reports whether the invite's deadline has passed at now.
func (i *BetaInvite) IsExpiredAt(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// BetaUser records a successful claim. One row per user and per invite.
type BetaUser struct {
	UserID   string    `json:"user_id"   db:"user_id"`
	InviteID string    `json:"invite_id" db:"invite_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

// CreateInviteRequest is the admin input for a new invite.
type CreateInviteRequest struct {
	Email     string  `json:"email"                validate:"required,email,max=320"`
	CreatedBy *string `json:"created_by,omitempty"`
	Notes     *string `json:"notes,omitempty"      validate:"omitempty,max=1000"`
}

var inviteValidator = validator.New(validator.WithRequiredStructEnabled())

// Normalize trims fields, lowercases the email and converts its domain to
// ASCII (punycode). Blank optional fields become nil.
func (r *CreateInviteRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
	r.CreatedBy = trimOptional(r.CreatedBy)
	r.Notes = trimOptional(r.Notes)
}

// Validate checks the normalized request.
func (r *CreateInviteRequest) Validate() error {
	if err := inviteValidator.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %q validation", strings.ToLower(fe.Field()), fe.Tag())
		}
		return err
	}
	return nil
}

// NormalizeEmail lowercases addr and converts the domain part to its IDNA
// ASCII form. Addresses whose domain cannot be converted are returned
// lowercased so that validation reports them.
func NormalizeEmail(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	at := strings.LastIndex(addr, "@")
	if at <= 0 || at == len(addr)-1 {
		return addr
	}
	domain, err := idna.Lookup.ToASCII(addr[at+1:])
	if err != nil {
		return addr
	}
	return addr[:at+1] + domain
}

// ListInvitesOptions filters ListInvites.
type ListInvitesOptions struct {
	Status *InviteStatus
	Limit  int
	Offset int
}

// Validate checks the status filter and clamps paging values.
func (o *ListInvitesOptions) Validate() error {
	if o.Status != nil && !slices.Contains(ValidInviteStatuses(), *o.Status) {
		return fmt.Errorf("unknown invite status %q", *o.Status)
	}
	if o.Limit <= 0 || o.Limit > 500 {
		o.Limit = 100
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
