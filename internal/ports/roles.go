package ports

import (
	"context"
	"time"

	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
)

// RoleStore reads the two independent role sources for a principal.
type RoleStore interface {
	// GetRoleAssignments returns every role assigned to the principal. No rows is an empty slice, not an error.
	GetRoleAssignments(ctx context.Context, principalID string) ([]string, error)
	// GetProfileRole returns the role carried on the principal's profile row, if any.
	GetProfileRole(ctx context.Context, principalID string) (role string, found bool, err error)
}

// RoleAdminStore mutates role assignments and profile rows.
type RoleAdminStore interface {
	AssignRole(ctx context.Context, principalID, role, grantedBy string) error
	// RevokeRole reports whether an assignment was removed.
	RevokeRole(ctx context.Context, principalID, role string) (bool, error)
	// UpsertProfile writes the profile role (nil clears it) and subscription tier.
	UpsertProfile(ctx context.Context, principalID string, role *string, tier string) error
}

// TierStore reads the subscription tier from the principal's profile row.
type TierStore interface {
	GetSubscriptionTier(ctx context.Context, principalID string) (tier string, found bool, err error)
}

// RoleBypass is a development short-circuit that answers role lookups with a
// fixed snapshot. ok is false once the bypass has expired.
type RoleBypass interface {
	Snapshot(now time.Time) (info domainauth.UserRoleInfo, ok bool)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}
