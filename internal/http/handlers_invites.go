package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/drivenlabs/membergate/internal/domain/model"
)

// InviteAPI is the invite service surface used by the HTTP layer.
type InviteAPI interface {
	CreateInvite(ctx context.Context, req model.CreateInviteRequest) (*model.BetaInvite, error)
	SendInvite(ctx context.Context, inviteID string) (bool, error)
	ValidateInviteCode(ctx context.Context, code string) bool
	ClaimInviteCode(ctx context.Context, code, userID string) bool
	HasBetaAccess(ctx context.Context, userID string) bool
	BetaModeEnabled(ctx context.Context) bool
	BulkInvite(ctx context.Context, emails []string, createdBy *string) int
	ListInvites(ctx context.Context, opts model.ListInvitesOptions) ([]*model.BetaInvite, error)
	ListBetaUsers(ctx context.Context) ([]*model.BetaUser, error)
	RevokeInvite(ctx context.Context, inviteID string) error
}

// BetaModeSetter changes the runtime beta-mode override.
type BetaModeSetter interface {
	Enabled(ctx context.Context) bool
	SetOverride(ctx context.Context, enabled *bool) error
}

// InviteHandlers serves the invite lifecycle.
type InviteHandlers struct {
	Svc      InviteAPI
	BetaMode BetaModeSetter
	Logger   *slog.Logger
}

const (
	defaultInviteListLimit = 50
	maxInviteListLimit     = 500
	maxBulkInviteEmails    = 1000
)

func (h *InviteHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type codeRequest struct {
	Code string `json:"code"`
}

// Validate reports whether a code can currently be claimed.
// POST /api/invites/validate.
func (h *InviteHandlers) Validate(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"valid": h.Svc.ValidateInviteCode(r.Context(), req.Code)})
}

// Claim redeems a code for the signed-in user.
// POST /api/invites/claim.
func (h *InviteHandlers) Claim(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	claimed := h.Svc.ClaimInviteCode(r.Context(), req.Code, PrincipalID(r.Context()))
	WriteJSON(w, http.StatusOK, map[string]bool{"claimed": claimed})
}

// MyBeta reports the caller's beta membership.
// GET /api/me/beta.
func (h *InviteHandlers) MyBeta(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	WriteJSON(w, http.StatusOK, map[string]bool{
		"has_access": h.Svc.HasBetaAccess(ctx, PrincipalID(ctx)),
		"beta_mode":  h.Svc.BetaModeEnabled(ctx),
	})
}

// List returns invites newest first.
// GET /api/admin/invites?status=&limit=&offset=.
func (h *InviteHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultInviteListLimit, maxInviteListLimit)
	opts := model.ListInvitesOptions{Limit: limit, Offset: offset}
	if s := strings.TrimSpace(r.URL.Query().Get("status")); s != "" {
		status := model.InviteStatus(s)
		opts.Status = &status
	}

	invites, err := h.Svc.ListInvites(r.Context(), opts)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "list invites failed", "error", err)
		WriteServiceError(w, err, "list_failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"invites": invites, "limit": limit, "offset": offset})
}

type createInviteRequest struct {
	Email string  `json:"email"`
	Notes *string `json:"notes,omitempty"`
	// Send delivers the invite right after creating it.
	Send bool `json:"send"`
}

// Create stores a pending invite and optionally sends it.
// POST /api/admin/invites.
func (h *InviteHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createInviteRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	admin := PrincipalID(r.Context())
	inv, err := h.Svc.CreateInvite(r.Context(), model.CreateInviteRequest{
		Email:     req.Email,
		Notes:     req.Notes,
		CreatedBy: &admin,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "create invite failed", "error", err)
		WriteServiceError(w, err, "create_failed")
		return
	}

	resp := map[string]any{"invite": inv}
	if req.Send {
		sent, sendErr := h.Svc.SendInvite(r.Context(), inv.ID)
		if sendErr != nil {
			h.logger().WarnContext(r.Context(), "send after create failed", "invite_id", inv.ID, "error", sendErr)
		}
		resp["sent"] = sent
	}
	WriteJSON(w, http.StatusCreated, resp)
}

// Send delivers a pending invite.
// POST /api/admin/invites/{id}/send.
func (h *InviteHandlers) Send(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sent, err := h.Svc.SendInvite(r.Context(), id)
	if err != nil {
		h.logger().WarnContext(r.Context(), "send invite failed", "invite_id", id, "error", err)
		WriteServiceError(w, err, "send_failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"sent": sent})
}

// Revoke expires a pending or sent invite.
// POST /api/admin/invites/{id}/revoke.
func (h *InviteHandlers) Revoke(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Svc.RevokeInvite(r.Context(), id); err != nil {
		h.logger().WarnContext(r.Context(), "revoke invite failed", "invite_id", id, "error", err)
		WriteServiceError(w, err, "revoke_failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"revoked": true})
}

type bulkInviteRequest struct {
	Emails []string `json:"emails"`
}

// Bulk creates and sends one invite per address.
// POST /api/admin/invites/bulk.
func (h *InviteHandlers) Bulk(w http.ResponseWriter, r *http.Request) {
	var req bulkInviteRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if len(req.Emails) == 0 || len(req.Emails) > maxBulkInviteEmails {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed",
			Err: errors.New("emails must hold between 1 and 1000 addresses"), Field: "emails"})
		return
	}
	admin := PrincipalID(r.Context())
	sent := h.Svc.BulkInvite(r.Context(), req.Emails, &admin)
	WriteJSON(w, http.StatusOK, map[string]int{"requested": len(req.Emails), "sent": sent})
}

// BetaUsers lists everyone holding beta access.
// GET /api/admin/beta-users.
func (h *InviteHandlers) BetaUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Svc.ListBetaUsers(r.Context())
	if err != nil {
		h.logger().ErrorContext(r.Context(), "list beta users failed", "error", err)
		WriteServiceError(w, err, "list_failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"beta_users": users})
}

type betaModeRequest struct {
	// Enabled nil clears the override.
	Enabled *bool `json:"enabled"`
}

// SetBetaMode sets or clears the runtime beta-mode override.
// PUT /api/admin/beta-mode.
func (h *InviteHandlers) SetBetaMode(w http.ResponseWriter, r *http.Request) {
	if h.BetaMode == nil {
		WriteError(w, ErrorParams{Code: http.StatusNotImplemented, ErrCode: "unavailable",
			Err: errors.New("beta mode override is not configured")})
		return
	}
	var req betaModeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.BetaMode.SetOverride(r.Context(), req.Enabled); err != nil {
		h.logger().ErrorContext(r.Context(), "set beta mode failed", "error", err)
		WriteServiceError(w, err, "update_failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"enabled": h.BetaMode.Enabled(r.Context())})
}
