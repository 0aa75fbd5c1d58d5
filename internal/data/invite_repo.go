package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/drivenlabs/membergate/internal/data/pgxutil"
	"github.com/drivenlabs/membergate/internal/domain/model"
	errs "github.com/drivenlabs/membergate/internal/errors"
	"github.com/drivenlabs/membergate/internal/ports"
)

// InviteRepo provides database operations for beta invites and beta users.
type InviteRepo struct {
	DB *sql.DB
}

// NewInviteRepo creates a new invite repository.
func NewInviteRepo(db *sql.DB) *InviteRepo {
	return &InviteRepo{DB: db}
}

const inviteColumns = `id, code, email, status, created_at, sent_at, claimed_at, claimed_by, expires_at, created_by, notes`

var errAlreadyMember = errors.New("user already has beta access")

// Create inserts inv. ID, Code, Email, CreatedAt and ExpiresAt must be set by the caller.
// A live invite with the same code surfaces as a Conflict error on field "code".
func (r *InviteRepo) Create(ctx context.Context, inv *model.BetaInvite) error {
	if inv == nil {
		return errors.New("invite is required")
	}
	if inv.Status == "" {
		inv.Status = model.InviteStatusPending
	}

	err := pgxutil.Conn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO beta_invites (id, code, email, status, created_at, expires_at, created_by, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+inviteColumns,
			inv.ID, inv.Code, inv.Email, string(inv.Status), inv.CreatedAt, inv.ExpiresAt, inv.CreatedBy, inv.Notes)
		if err != nil {
			return err
		}
		created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BetaInvite])
		if err != nil {
			return err
		}
		*inv = created
		return nil
	})
	return errs.MapDBError(err)
}

// GetByID retrieves an invite by ID. A missing invite is a NotFound error.
func (r *InviteRepo) GetByID(ctx context.Context, id string) (*model.BetaInvite, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInviteIDRequired
	}
	return r.getOne(ctx, `SELECT `+inviteColumns+` FROM beta_invites WHERE id = $1`, id)
}

// GetByCode retrieves the non-expired invite holding code.
func (r *InviteRepo) GetByCode(ctx context.Context, code string) (*model.BetaInvite, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrInviteCodeRequired
	}
	return r.getOne(ctx,
		`SELECT `+inviteColumns+` FROM beta_invites WHERE code = $1 AND status <> 'expired'`, code)
}

func (r *InviteRepo) getOne(ctx context.Context, query string, arg any) (*model.BetaInvite, error) {
	var inv model.BetaInvite
	err := pgxutil.Conn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, arg)
		if err != nil {
			return err
		}
		inv, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BetaInvite])
		return err
	})
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	return &inv, nil
}

// MarkSent moves a pending invite to sent and stamps sent_at.
func (r *InviteRepo) MarkSent(ctx context.Context, id string, at time.Time) (bool, error) {
	return r.exec(ctx, `
		UPDATE beta_invites SET status = 'sent', sent_at = $2
		WHERE id = $1 AND status = 'pending'`, id, at)
}

// MarkExpired moves an invite from the given status to expired.
func (r *InviteRepo) MarkExpired(ctx context.Context, id string, from model.InviteStatus) (bool, error) {
	if !model.CanTransition(from, model.InviteStatusExpired) {
		return false, nil
	}
	return r.exec(ctx, `
		UPDATE beta_invites SET status = 'expired'
		WHERE id = $1 AND status = $2`, id, string(from))
}

// ExpireOverdue expires a batch of overdue pending or sent invites. The
// subselect skips rows a concurrent Claim holds locked.
func (r *InviteRepo) ExpireOverdue(ctx context.Context, now time.Time, limit int) (int64, error) {
	if limit <= 0 {
		return 0, nil
	}
	var n int64
	err := pgxutil.Conn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE beta_invites SET status = 'expired'
			WHERE id IN (
				SELECT id FROM beta_invites
				WHERE status IN ('pending', 'sent') AND expires_at < $1
				ORDER BY expires_at
				LIMIT $2
				FOR UPDATE SKIP LOCKED
			)`, now, limit)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, errs.MapDBError(err)
	}
	return n, nil
}

func (r *InviteRepo) exec(ctx context.Context, query string, args ...any) (bool, error) {
	var changed bool
	err := pgxutil.Conn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		changed = tag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return false, errs.MapDBError(err)
	}
	return changed, nil
}

// Claim locks the invite row, re-checks status and expiry, then marks it
// claimed and inserts the beta_users row in the same transaction. An expired
// invite is marked expired and that write is committed.
func (r *InviteRepo) Claim(ctx context.Context, code, userID string, now time.Time) (ports.ClaimOutcome, error) {
	if strings.TrimSpace(code) == "" {
		return ports.ClaimInvalid, ErrInviteCodeRequired
	}
	if strings.TrimSpace(userID) == "" {
		return ports.ClaimInvalid, ErrUserIDRequired
	}

	outcome := ports.ClaimInvalid
	err := pgxutil.Tx(ctx, r.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var txErr error
		outcome, txErr = claimTx(ctx, tx, code, userID, now)
		return txErr
	})
	if errors.Is(err, errAlreadyMember) {
		return ports.ClaimAlreadyMember, nil
	}
	if err != nil {
		return ports.ClaimInvalid, errs.MapDBError(err)
	}
	return outcome, nil
}

func claimTx(ctx context.Context, tx pgx.Tx, code, userID string, now time.Time) (ports.ClaimOutcome, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+inviteColumns+` FROM beta_invites
		WHERE code = $1 AND status <> 'expired'
		FOR UPDATE`, code)
	if err != nil {
		return ports.ClaimInvalid, err
	}
	inv, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BetaInvite])
	if errors.Is(err, pgx.ErrNoRows) {
		return ports.ClaimInvalid, nil
	}
	if err != nil {
		return ports.ClaimInvalid, err
	}
	if inv.Status != model.InviteStatusSent {
		return ports.ClaimInvalid, nil
	}

	if inv.IsExpiredAt(now) {
		if _, err = tx.Exec(ctx,
			`UPDATE beta_invites SET status = 'expired' WHERE id = $1 AND status = 'sent'`, inv.ID); err != nil {
			return ports.ClaimInvalid, fmt.Errorf("expire invite: %w", err)
		}
		return ports.ClaimExpired, nil
	}

	var member bool
	if err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM beta_users WHERE user_id = $1)`, userID).Scan(&member); err != nil {
		return ports.ClaimInvalid, err
	}
	if member {
		return ports.ClaimAlreadyMember, nil
	}

	tag, err := tx.Exec(ctx, `
		UPDATE beta_invites SET status = 'claimed', claimed_at = $2, claimed_by = $3
		WHERE id = $1 AND status = 'sent'`, inv.ID, now, userID)
	if err != nil {
		return ports.ClaimInvalid, fmt.Errorf("mark claimed: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return ports.ClaimInvalid, nil
	}

	if _, err = tx.Exec(ctx,
		`INSERT INTO beta_users (user_id, invite_id, joined_at) VALUES ($1, $2, $3)`,
		userID, inv.ID, now); err != nil {
		if errs.IsUniqueViolation(err, "beta_users_pkey") {
			return ports.ClaimInvalid, errAlreadyMember
		}
		return ports.ClaimInvalid, fmt.Errorf("insert beta user: %w", err)
	}
	return ports.ClaimSucceeded, nil
}

// List returns invites newest first, optionally filtered by status.
func (r *InviteRepo) List(ctx context.Context, opts model.ListInvitesOptions) ([]*model.BetaInvite, error) {
	if err := opts.Validate(); err != nil {
		return nil, errs.Wrap(err, errs.ErrCodeValidation, "invalid list options")
	}

	query := `SELECT ` + inviteColumns + ` FROM beta_invites`
	args := []any{}
	if opts.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*opts.Status))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset)

	var invites []*model.BetaInvite
	err := pgxutil.Conn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		invites, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.BetaInvite])
		return err
	})
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	return invites, nil
}

// ListBetaUsers returns every beta user, most recent first.
func (r *InviteRepo) ListBetaUsers(ctx context.Context) ([]*model.BetaUser, error) {
	var users []*model.BetaUser
	err := pgxutil.Conn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT user_id, invite_id, joined_at FROM beta_users ORDER BY joined_at DESC`)
		if err != nil {
			return err
		}
		users, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.BetaUser])
		return err
	})
	if err != nil {
		return nil, errs.MapDBError(err)
	}
	return users, nil
}

// HasBetaUser reports whether userID holds a beta_users row.
func (r *InviteRepo) HasBetaUser(ctx context.Context, userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, ErrUserIDRequired
	}
	var exists bool
	err := pgxutil.Conn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM beta_users WHERE user_id = $1)`, userID).Scan(&exists)
	})
	if err != nil {
		return false, errs.MapDBError(err)
	}
	return exists, nil
}

var _ ports.InviteStore = (*InviteRepo)(nil)
