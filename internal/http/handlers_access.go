package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/drivenlabs/membergate/internal/domain/access"
)

// AccessAPI is the access gate surface used by the HTTP layer.
type AccessAPI interface {
	UserTier(ctx context.Context, principalID string) *access.Tier
	CheckContent(ctx context.Context, principalID string, required access.Tier, comingSoon bool) access.Eligibility
}

// AccessHandlers answers content-lock questions for the caller.
type AccessHandlers struct {
	Svc AccessAPI
}

type accessResponse struct {
	access.Eligibility
	Tier     *access.Tier `json:"tier"`
	Required access.Tier  `json:"required"`
}

// Check evaluates the caller against a content item's requirements.
// GET /api/me/access?tier=driven&coming_soon=false.
func (h *AccessHandlers) Check(w http.ResponseWriter, r *http.Request) {
	required := access.TierFree
	if raw := strings.TrimSpace(r.URL.Query().Get("tier")); raw != "" {
		t, err := access.ParseTier(raw)
		if err != nil {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err, Field: "tier"})
			return
		}
		required = t
	}

	ctx := r.Context()
	id := PrincipalID(ctx)
	WriteJSON(w, http.StatusOK, accessResponse{
		Eligibility: h.Svc.CheckContent(ctx, id, required, parseBoolQuery(r, "coming_soon", false)),
		Tier:        h.Svc.UserTier(ctx, id),
		Required:    required,
	})
}
