package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/drivenlabs/membergate/internal/domain/access"
	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
	"github.com/drivenlabs/membergate/internal/ports"
)

// RoleResolver resolves a principal's role snapshot.
type RoleResolver interface {
	Resolve(ctx context.Context, principalID string, forceRefresh bool) domainauth.UserRoleInfo
}

// BetaAccessChecker answers closed-beta membership.
type BetaAccessChecker interface {
	HasBetaAccess(ctx context.Context, userID string) bool
}

// AccessServiceOptions groups dependencies for AccessService.
type AccessServiceOptions struct {
	Roles        RoleResolver      // Required
	Tiers        ports.TierStore   // Required
	Beta         BetaAccessChecker // Optional: nil disables beta gating
	StoreTimeout time.Duration
	Logger       *slog.Logger
}

// AccessService makes content-lock decisions for a principal by combining
// beta membership, the admin role and the subscription tier.
type AccessService struct {
	roles        RoleResolver
	tiers        ports.TierStore
	beta         BetaAccessChecker
	storeTimeout time.Duration
	logger       *slog.Logger
}

// NewAccessService constructs an AccessService. It panics when Roles or Tiers is nil.
func NewAccessService(opts AccessServiceOptions) *AccessService {
	if opts.Roles == nil {
		//nolint:forbidigo // Constructor guard for required dependency
		panic("RoleResolver is required")
	}
	if opts.Tiers == nil {
		//nolint:forbidigo // Constructor guard for required dependency
		panic("TierStore is required")
	}
	timeout := opts.StoreTimeout
	if timeout <= 0 {
		timeout = DefaultRoleStoreTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AccessService{
		roles:        opts.Roles,
		tiers:        opts.Tiers,
		beta:         opts.Beta,
		storeTimeout: timeout,
		logger:       logger.With("component", "access_service"),
	}
}

// UserTier returns the principal's subscription tier, nil for anonymous
// viewers. A missing, unknown or unreadable tier is free.
func (s *AccessService) UserTier(ctx context.Context, principalID string) *access.Tier {
	if principalID == "" {
		return nil
	}
	free := access.TierFree

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	raw, found, err := s.tiers.GetSubscriptionTier(ctx, principalID)
	if err != nil {
		s.logger.WarnContext(ctx, "subscription tier unavailable", "principal_id", principalID, "error", err)
		return &free
	}
	if !found {
		return &free
	}
	tier, err := access.ParseTier(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "unknown subscription tier", "principal_id", principalID, "tier", raw)
		return &free
	}
	return &tier
}

// CheckContent decides whether principalID (empty for anonymous) may open
// content that requires tier required. Coming-soon content is never open.
// In beta mode a viewer without beta access is denied with invite_required.
// Admins pass tier and beta gates.
func (s *AccessService) CheckContent(ctx context.Context, principalID string, required access.Tier, comingSoon bool) access.Eligibility {
	isAdmin := principalID != "" &&
		domainauth.HasRole(s.roles.Resolve(ctx, principalID, false), domainauth.RoleAdmin)

	var e access.Eligibility
	if isAdmin {
		e = access.Eligibility{
			Allowed:           !comingSoon,
			EligibleOnRelease: true,
		}
		if comingSoon {
			e.Denial = access.DenialComingSoon
		}
		return e
	}

	e = access.Evaluate(s.UserTier(ctx, principalID), required, comingSoon)
	if comingSoon {
		return e
	}
	if s.beta != nil && !s.beta.HasBetaAccess(ctx, principalID) {
		e.Allowed = false
		e.Denial = access.DenialInviteRequired
	}
	return e
}
