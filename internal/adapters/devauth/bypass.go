package devauth

import (
	"slices"
	"time"

	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
	"github.com/drivenlabs/membergate/internal/ports"
)

// RoleBypass answers every role lookup with the same configured roles until
// ExpiresAt, so the app can run without a role store during development.
type RoleBypass struct {
	roles       []string
	profileRole *string
	expiresAt   time.Time
}

// NewRoleBypass returns a bypass that stays active until expiresAt.
func NewRoleBypass(roles []string, profileRole string, expiresAt time.Time) *RoleBypass {
	b := &RoleBypass{
		roles:     slices.Clone(roles),
		expiresAt: expiresAt,
	}
	if profileRole != "" {
		b.profileRole = &profileRole
	}
	return b
}

// Snapshot implements ports.RoleBypass.
func (b *RoleBypass) Snapshot(now time.Time) (domainauth.UserRoleInfo, bool) {
	if b == nil || !now.Before(b.expiresAt) {
		return domainauth.UserRoleInfo{}, false
	}
	return domainauth.NewUserRoleInfo(b.roles, b.profileRole, now), true
}

// ExpiresAt reports when the bypass stops answering.
func (b *RoleBypass) ExpiresAt() time.Time { return b.expiresAt }

var _ ports.RoleBypass = (*RoleBypass)(nil)
