package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
	"github.com/drivenlabs/membergate/internal/service"
)

// RoleAPI is the role service surface used by the HTTP layer.
type RoleAPI interface {
	RoleChecker
	Resolve(ctx context.Context, principalID string, forceRefresh bool) domainauth.UserRoleInfo
	AssignRole(ctx context.Context, principalID, role, grantedBy string) error
	RevokeRole(ctx context.Context, principalID, role string) (bool, error)
	Invalidate(principalID string)
	InvalidateAll()
	CacheStats() service.RoleCacheStats
}

// RoleHandlers serves role lookups and role administration.
type RoleHandlers struct {
	Svc    RoleAPI
	Logger *slog.Logger
}

type roleResponse struct {
	PrincipalID string `json:"principal_id"`
	domainauth.UserRoleInfo
	PrimaryRole *string `json:"primary_role"`
}

// Me returns the caller's role snapshot.
// GET /api/me/roles?refresh=true.
func (h *RoleHandlers) Me(w http.ResponseWriter, r *http.Request) {
	id := PrincipalID(r.Context())
	info := h.Svc.Resolve(r.Context(), id, parseBoolQuery(r, "refresh", false))

	resp := roleResponse{PrincipalID: id, UserRoleInfo: info}
	if role, ok := domainauth.PrimaryRole(info); ok {
		s := string(role)
		resp.PrimaryRole = &s
	}
	WriteJSON(w, http.StatusOK, resp)
}

type roleMutationRequest struct {
	PrincipalID string `json:"principal_id"`
	Role        string `json:"role"`
}

// Assign grants a role.
// POST /api/admin/roles.
func (h *RoleHandlers) Assign(w http.ResponseWriter, r *http.Request) {
	var req roleMutationRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.Svc.AssignRole(r.Context(), req.PrincipalID, req.Role, PrincipalID(r.Context())); err != nil {
		h.logError(r, "assign role failed", err)
		WriteServiceError(w, err, "assign_failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"assigned": true})
}

// Revoke removes a role.
// DELETE /api/admin/roles.
func (h *RoleHandlers) Revoke(w http.ResponseWriter, r *http.Request) {
	var req roleMutationRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	removed, err := h.Svc.RevokeRole(r.Context(), req.PrincipalID, req.Role)
	if err != nil {
		h.logError(r, "revoke role failed", err)
		WriteServiceError(w, err, "revoke_failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

type invalidateRequest struct {
	PrincipalID string `json:"principal_id"`
	All         bool   `json:"all"`
}

// Invalidate drops cached role snapshots.
// POST /api/admin/roles/invalidate.
func (h *RoleHandlers) Invalidate(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	switch {
	case req.All:
		h.Svc.InvalidateAll()
	case req.PrincipalID != "":
		h.Svc.Invalidate(req.PrincipalID)
	default:
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed",
			Err: errors.New("principal_id or all is required"), Field: "principal_id"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"invalidated": true})
}

// CacheStats reports role cache counters.
// GET /api/admin/roles/cache.
func (h *RoleHandlers) CacheStats(w http.ResponseWriter, _ *http.Request) {
	s := h.Svc.CacheStats()
	WriteJSON(w, http.StatusOK, map[string]any{
		"hits":        s.Hits,
		"misses":      s.Misses,
		"size":        s.Size,
		"ttl_seconds": s.TTL.Seconds(),
	})
}

func (h *RoleHandlers) logError(r *http.Request, msg string, err error) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(r.Context(), msg, "error", err)
}
