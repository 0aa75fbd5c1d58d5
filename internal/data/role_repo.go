package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/drivenlabs/membergate/internal/data/pgxutil"
	errs "github.com/drivenlabs/membergate/internal/errors"
	"github.com/drivenlabs/membergate/internal/ports"
)

// RoleRepo reads and writes role facts: the user_roles assignment rows and
// the role/subscription_tier columns of profiles.
type RoleRepo struct {
	DB *sql.DB
}

// NewRoleRepo creates a new role repository.
func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{DB: db}
}

// GetRoleAssignments returns every role assigned to principalID, in name order.
func (r *RoleRepo) GetRoleAssignments(ctx context.Context, principalID string) ([]string, error) {
	if strings.TrimSpace(principalID) == "" {
		return nil, ErrPrincipalIDRequired
	}

	var roles []string
	err := pgxutil.Conn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT role FROM user_roles WHERE principal_id = $1 ORDER BY role`, principalID)
		if err != nil {
			return err
		}
		roles, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	if roles == nil {
		roles = []string{}
	}
	return roles, nil
}

// GetProfileRole returns the profile's role column. A missing profile row or
// a NULL role both report found=false.
func (r *RoleRepo) GetProfileRole(ctx context.Context, principalID string) (string, bool, error) {
	return r.profileColumn(ctx, principalID, `SELECT role FROM profiles WHERE principal_id = $1`)
}

// GetSubscriptionTier returns the profile's subscription tier.
func (r *RoleRepo) GetSubscriptionTier(ctx context.Context, principalID string) (string, bool, error) {
	return r.profileColumn(ctx, principalID, `SELECT subscription_tier FROM profiles WHERE principal_id = $1`)
}

func (r *RoleRepo) profileColumn(ctx context.Context, principalID, query string) (string, bool, error) {
	if strings.TrimSpace(principalID) == "" {
		return "", false, ErrPrincipalIDRequired
	}

	var value *string
	err := pgxutil.Conn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, query, principalID).Scan(&value)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errs.MapDBError(err)
	}
	if value == nil || *value == "" {
		return "", false, nil
	}
	return *value, true, nil
}

// AssignRole grants role to principalID. Granting an existing role is a no-op.
func (r *RoleRepo) AssignRole(ctx context.Context, principalID, role, grantedBy string) error {
	if strings.TrimSpace(principalID) == "" {
		return ErrPrincipalIDRequired
	}
	if strings.TrimSpace(role) == "" {
		return ErrRoleRequired
	}

	var by *string
	if grantedBy != "" {
		by = &grantedBy
	}
	err := pgxutil.Conn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO user_roles (principal_id, role, granted_by)
			VALUES ($1, $2, $3)
			ON CONFLICT (principal_id, role) DO NOTHING`,
			principalID, role, by)
		return err
	})
	return errs.MapDBError(err)
}

// RevokeRole removes role from principalID and reports whether a row was deleted.
func (r *RoleRepo) RevokeRole(ctx context.Context, principalID, role string) (bool, error) {
	if strings.TrimSpace(principalID) == "" {
		return false, ErrPrincipalIDRequired
	}

	var deleted bool
	err := pgxutil.Conn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx,
			`DELETE FROM user_roles WHERE principal_id = $1 AND role = $2`, principalID, role)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, errs.MapDBError(err)
	}
	return deleted, nil
}

// UpsertProfile creates or updates a profile row. A nil role clears it.
func (r *RoleRepo) UpsertProfile(ctx context.Context, principalID string, role *string, tier string) error {
	if strings.TrimSpace(principalID) == "" {
		return ErrPrincipalIDRequired
	}
	err := pgxutil.Conn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO profiles (principal_id, role, subscription_tier)
			VALUES ($1, $2, $3)
			ON CONFLICT (principal_id) DO UPDATE
			SET role = EXCLUDED.role,
			    subscription_tier = EXCLUDED.subscription_tier,
			    updated_at = now()`,
			principalID, role, tier)
		return err
	})
	return errs.MapDBError(err)
}

var (
	_ ports.RoleStore      = (*RoleRepo)(nil)
	_ ports.RoleAdminStore = (*RoleRepo)(nil)
	_ ports.TierStore      = (*RoleRepo)(nil)
)
