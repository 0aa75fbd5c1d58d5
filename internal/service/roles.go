package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/drivenlabs/membergate/internal/domain/access"
	domainauth "github.com/drivenlabs/membergate/internal/domain/auth"
	errs "github.com/drivenlabs/membergate/internal/errors"
	"github.com/drivenlabs/membergate/internal/observability/metrics"
	"github.com/drivenlabs/membergate/internal/observability/statsd"
	"github.com/drivenlabs/membergate/internal/ports"
)

// DefaultRoleStoreTimeout bounds each role store query.
const DefaultRoleStoreTimeout = 3 * time.Second

// RoleServiceOptions groups dependencies for RoleService.
type RoleServiceOptions struct {
	Store        ports.RoleStore      // Required: role sources
	Cache        *RoleCache           // Required: shared snapshot cache
	Admin        ports.RoleAdminStore // Optional: enables AssignRole/RevokeRole/SetProfile
	Bypass       ports.RoleBypass     // Optional: development short-circuit
	Clock        ports.Clock          // Optional: defaults to wall clock
	StoreTimeout time.Duration        // Optional: per-query deadline
	Logger       *slog.Logger         // Optional: structured logger
	Metrics      statsd.Sink          // Optional: metrics sink (StatsD-compatible)
}

// RoleService resolves a principal's roles from the assignment table and the
// profile row, caches the merged snapshot and coalesces concurrent lookups.
// Resolution never returns an error: any failure degrades to fewer roles.
type RoleService struct {
	store        ports.RoleStore
	admin        ports.RoleAdminStore
	cache        *RoleCache
	bypass       ports.RoleBypass
	clock        ports.Clock
	storeTimeout time.Duration
	logger       *slog.Logger
	metrics      statsd.Sink
	group        singleflight.Group
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// NewRoleService constructs a RoleService. It panics when Store or Cache is nil.
func NewRoleService(opts RoleServiceOptions) *RoleService {
	if opts.Store == nil {
		//nolint:forbidigo // Constructor guard for required dependency
		panic("RoleStore is required")
	}
	if opts.Cache == nil {
		//nolint:forbidigo // Constructor guard for required dependency
		panic("RoleCache is required")
	}
	clock := opts.Clock
	if clock == nil {
		clock = wallClock{}
	}
	timeout := opts.StoreTimeout
	if timeout <= 0 {
		timeout = DefaultRoleStoreTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleService{
		store:        opts.Store,
		admin:        opts.Admin,
		cache:        opts.Cache,
		bypass:       opts.Bypass,
		clock:        clock,
		storeTimeout: timeout,
		logger:       logger.With("component", "role_service"),
		metrics:      opts.Metrics,
	}
}

// Resolve returns the role snapshot for principalID. A live bypass wins over
// everything. Otherwise a fresh cache entry is returned unless forceRefresh is
// set, and a miss fetches both role sources concurrently.
func (s *RoleService) Resolve(ctx context.Context, principalID string, forceRefresh bool) domainauth.UserRoleInfo {
	now := s.clock.Now()
	if s.bypass != nil {
		if info, ok := s.bypass.Snapshot(now); ok {
			metrics.EmitRoleResolution(s.metrics, metrics.RoleSourceBypass, 0)
			return info
		}
	}
	if principalID == "" {
		return domainauth.NoRoles(now)
	}
	if !forceRefresh {
		if info, ok := s.cache.Get(principalID); ok {
			metrics.EmitRoleResolution(s.metrics, metrics.RoleSourceCache, 0)
			return info
		}
	}

	// The shared fetch must outlive any single caller's cancellation.
	fetchCtx := context.WithoutCancel(ctx)
	gen := s.cache.Generation(principalID)
	resultCh := s.group.DoChan(gen.flightKey(principalID), func() (any, error) {
		return s.fetch(fetchCtx, principalID, gen), nil
	})

	select {
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "role resolution abandoned", "principal_id", principalID, "error", ctx.Err())
		metrics.EmitRoleResolution(s.metrics, metrics.RoleSourceAbandoned, 0)
		return domainauth.NoRoles(now)
	case res := <-resultCh:
		metrics.EmitRoleResolution(s.metrics, metrics.RoleSourceStore, s.clock.Now().Sub(now))
		info, ok := res.Val.(domainauth.UserRoleInfo)
		if !ok {
			return domainauth.NoRoles(now)
		}
		return info
	}
}

// fetch queries both sources, merges and caches the result. A panic anywhere
// on this path yields the empty snapshot, which is not cached. The result is
// not cached either when the principal was invalidated after gen was taken.
func (s *RoleService) fetch(ctx context.Context, principalID string, gen Generation) (info domainauth.UserRoleInfo) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "role resolution panicked", "principal_id", principalID, "panic", r)
			info = domainauth.NoRoles(s.clock.Now())
		}
	}()

	var (
		wg          sync.WaitGroup
		assigned    []string
		profileRole *string
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		assigned = s.loadAssignments(ctx, principalID)
	}()
	go func() {
		defer wg.Done()
		profileRole = s.loadProfileRole(ctx, principalID)
	}()
	wg.Wait()

	info = domainauth.NewUserRoleInfo(assigned, profileRole, s.clock.Now())
	if !s.cache.SetIfCurrent(principalID, info, gen) {
		s.logger.DebugContext(ctx, "discarding roles fetched before invalidation", "principal_id", principalID)
	}
	return info
}

func (s *RoleService) loadAssignments(ctx context.Context, principalID string) (roles []string) {
	defer s.recoverSource(ctx, principalID, "assignments")

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	roles, err := s.store.GetRoleAssignments(ctx, principalID)
	if err != nil {
		s.logger.WarnContext(ctx, "role assignments unavailable", "principal_id", principalID, "error", err)
		return nil
	}
	return roles
}

func (s *RoleService) loadProfileRole(ctx context.Context, principalID string) (role *string) {
	defer s.recoverSource(ctx, principalID, "profile")

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	r, found, err := s.store.GetProfileRole(ctx, principalID)
	if err != nil {
		s.logger.WarnContext(ctx, "profile role unavailable", "principal_id", principalID, "error", err)
		return nil
	}
	if !found || strings.TrimSpace(r) == "" {
		return nil
	}
	return &r
}

// recoverSource keeps a panicking store from taking down the resolution; the
// named return of the caller stays at its zero value.
func (s *RoleService) recoverSource(ctx context.Context, principalID, source string) {
	if r := recover(); r != nil {
		s.logger.ErrorContext(ctx, "role source panicked",
			"principal_id", principalID, "source", source, "panic", r)
	}
}

// HasRole resolves principalID and checks role.
func (s *RoleService) HasRole(ctx context.Context, principalID string, role domainauth.Role) bool {
	return domainauth.HasRole(s.Resolve(ctx, principalID, false), role)
}

// PrimaryRole resolves principalID and returns its highest-priority role.
func (s *RoleService) PrimaryRole(ctx context.Context, principalID string) (domainauth.Role, bool) {
	return domainauth.PrimaryRole(s.Resolve(ctx, principalID, false))
}

// Invalidate drops the cached snapshot for principalID. A lookup already in
// flight finishes for its own callers but is neither cached nor joined by
// later ones.
func (s *RoleService) Invalidate(principalID string) {
	s.cache.Invalidate(principalID)
}

// InvalidateAll drops every cached snapshot, retiring in-flight lookups the
// same way Invalidate does.
func (s *RoleService) InvalidateAll() {
	s.cache.InvalidateAll()
}

// CacheStats exposes the cache counters.
func (s *RoleService) CacheStats() RoleCacheStats {
	return s.cache.Stats()
}

// AssignRole grants role to principalID and drops its cached snapshot.
func (s *RoleService) AssignRole(ctx context.Context, principalID, role, grantedBy string) error {
	if err := s.checkMutation(principalID, role); err != nil {
		return err
	}
	if err := s.admin.AssignRole(ctx, principalID, role, grantedBy); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	s.Invalidate(principalID)
	s.logger.InfoContext(ctx, "role assigned", "principal_id", principalID, "role", role, "granted_by", grantedBy)
	return nil
}

// RevokeRole removes role from principalID and drops its cached snapshot.
// It reports whether an assignment existed.
func (s *RoleService) RevokeRole(ctx context.Context, principalID, role string) (bool, error) {
	if err := s.checkMutation(principalID, role); err != nil {
		return false, err
	}
	removed, err := s.admin.RevokeRole(ctx, principalID, role)
	if err != nil {
		return false, fmt.Errorf("revoke role: %w", err)
	}
	s.Invalidate(principalID)
	s.logger.InfoContext(ctx, "role revoked", "principal_id", principalID, "role", role, "removed", removed)
	return removed, nil
}

// SetProfile writes the profile role and subscription tier of principalID and
// drops its cached snapshot. A nil or blank role clears the profile role.
func (s *RoleService) SetProfile(ctx context.Context, principalID string, role *string, tier access.Tier) error {
	if err := s.checkPrincipal(principalID); err != nil {
		return err
	}
	if !tier.Valid() {
		return errs.ValidationField("tier", fmt.Sprintf("unknown subscription tier %q", tier))
	}
	if role != nil && strings.TrimSpace(*role) == "" {
		role = nil
	}
	if err := s.admin.UpsertProfile(ctx, principalID, role, string(tier)); err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	s.Invalidate(principalID)
	s.logger.InfoContext(ctx, "profile updated", "principal_id", principalID, "tier", tier, "has_role", role != nil)
	return nil
}

var errRoleAdminUnavailable = errors.New("role administration is not configured")

func (s *RoleService) checkPrincipal(principalID string) error {
	if s.admin == nil {
		return errs.Wrap(errRoleAdminUnavailable, errs.ErrCodeInternal, "role administration unavailable")
	}
	if strings.TrimSpace(principalID) == "" {
		return errs.ValidationField("principal_id", "principal id is required")
	}
	return nil
}

func (s *RoleService) checkMutation(principalID, role string) error {
	if err := s.checkPrincipal(principalID); err != nil {
		return err
	}
	if strings.TrimSpace(role) == "" {
		return errs.ValidationField("role", "role is required")
	}
	return nil
}
