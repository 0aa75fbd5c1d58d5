package testutil

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/drivenlabs/membergate/internal/domain/model"
	errs "github.com/drivenlabs/membergate/internal/errors"
	"github.com/drivenlabs/membergate/internal/ports"
)

// MemoryInviteStore is an in-memory ports.InviteStore. One mutex covers every
// operation, so Claim is atomic in the same way the Postgres transaction is.
type MemoryInviteStore struct {
	mu      sync.Mutex
	invites map[string]*model.BetaInvite
	order   []string
	users   map[string]*model.BetaUser

	// CreateErr, when set, is returned by Create before any write.
	CreateErr error
	// FailBetaUserInsert makes Claim fail after the status check, leaving nothing written.
	FailBetaUserInsert error
}

// NewMemoryInviteStore returns an empty store.
func NewMemoryInviteStore() *MemoryInviteStore {
	return &MemoryInviteStore{
		invites: make(map[string]*model.BetaInvite),
		users:   make(map[string]*model.BetaUser),
	}
}

func (s *MemoryInviteStore) Create(_ context.Context, inv *model.BetaInvite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return s.CreateErr
	}
	if _, ok := s.invites[inv.ID]; ok {
		return errs.ValidationField("id", "duplicate invite id")
	}
	if s.liveByCodeLocked(inv.Code) != nil {
		c := errs.Conflict("This value already exists.")
		c.Field = "code"
		return c
	}
	if inv.Status == "" {
		inv.Status = model.InviteStatusPending
	}
	cp := *inv
	s.invites[inv.ID] = &cp
	s.order = append(s.order, inv.ID)
	return nil
}

func (s *MemoryInviteStore) GetByID(_ context.Context, id string) (*model.BetaInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[id]
	if !ok {
		return nil, errs.NotFound("Resource not found")
	}
	cp := *inv
	return &cp, nil
}

func (s *MemoryInviteStore) GetByCode(_ context.Context, code string) (*model.BetaInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := s.liveByCodeLocked(code)
	if inv == nil {
		return nil, errs.NotFound("Resource not found")
	}
	cp := *inv
	return &cp, nil
}

func (s *MemoryInviteStore) MarkSent(_ context.Context, id string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[id]
	if !ok || inv.Status != model.InviteStatusPending {
		return false, nil
	}
	inv.Status = model.InviteStatusSent
	inv.SentAt = &at
	return true, nil
}

func (s *MemoryInviteStore) MarkExpired(_ context.Context, id string, from model.InviteStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[id]
	if !ok || inv.Status != from || !model.CanTransition(from, model.InviteStatusExpired) {
		return false, nil
	}
	inv.Status = model.InviteStatusExpired
	return true, nil
}

func (s *MemoryInviteStore) Claim(_ context.Context, code, userID string, now time.Time) (ports.ClaimOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv := s.liveByCodeLocked(code)
	if inv == nil || inv.Status != model.InviteStatusSent {
		return ports.ClaimInvalid, nil
	}
	if inv.IsExpiredAt(now) {
		inv.Status = model.InviteStatusExpired
		return ports.ClaimExpired, nil
	}
	if _, ok := s.users[userID]; ok {
		return ports.ClaimAlreadyMember, nil
	}
	if s.FailBetaUserInsert != nil {
		return ports.ClaimInvalid, s.FailBetaUserInsert
	}

	claimedAt, by := now, userID
	inv.Status = model.InviteStatusClaimed
	inv.ClaimedAt = &claimedAt
	inv.ClaimedBy = &by
	s.users[userID] = &model.BetaUser{UserID: userID, InviteID: inv.ID, JoinedAt: now}
	return ports.ClaimSucceeded, nil
}

func (s *MemoryInviteStore) ExpireOverdue(_ context.Context, now time.Time, limit int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range s.order {
		if n >= int64(limit) {
			break
		}
		inv := s.invites[id]
		if (inv.Status == model.InviteStatusPending || inv.Status == model.InviteStatusSent) && now.After(inv.ExpiresAt) {
			inv.Status = model.InviteStatusExpired
			n++
		}
	}
	return n, nil
}

func (s *MemoryInviteStore) List(_ context.Context, opts model.ListInvitesOptions) ([]*model.BetaInvite, error) {
	if err := opts.Validate(); err != nil {
		return nil, errs.Wrap(err, errs.ErrCodeValidation, "invalid list options")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.BetaInvite
	for _, id := range slices.Backward(s.order) {
		inv := s.invites[id]
		if opts.Status != nil && inv.Status != *opts.Status {
			continue
		}
		cp := *inv
		out = append(out, &cp)
	}
	if opts.Offset >= len(out) {
		return []*model.BetaInvite{}, nil
	}
	out = out[opts.Offset:]
	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *MemoryInviteStore) ListBetaUsers(_ context.Context) ([]*model.BetaUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.BetaUser, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *model.BetaUser) int { return b.JoinedAt.Compare(a.JoinedAt) })
	return out, nil
}

func (s *MemoryInviteStore) HasBetaUser(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[userID]
	return ok, nil
}

// BetaUserCount returns the number of stored beta users.
func (s *MemoryInviteStore) BetaUserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Put stores inv as-is, bypassing Create's checks. Used to seed fixtures.
func (s *MemoryInviteStore) Put(inv model.BetaInvite) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invites[inv.ID]; !ok {
		s.order = append(s.order, inv.ID)
	}
	s.invites[inv.ID] = &inv
}

func (s *MemoryInviteStore) liveByCodeLocked(code string) *model.BetaInvite {
	for _, inv := range s.invites {
		if inv.Code == code && inv.Status != model.InviteStatusExpired {
			return inv
		}
	}
	return nil
}

var _ ports.InviteStore = (*MemoryInviteStore)(nil)

// MemoryRoleStore is an in-memory role, tier and role-admin store.
type MemoryRoleStore struct {
	mu       sync.Mutex
	assigned map[string][]string
	profiles map[string]string
	tiers    map[string]string
}

// NewMemoryRoleStore returns an empty role store.
func NewMemoryRoleStore() *MemoryRoleStore {
	return &MemoryRoleStore{
		assigned: make(map[string][]string),
		profiles: make(map[string]string),
		tiers:    make(map[string]string),
	}
}

func (s *MemoryRoleStore) GetRoleAssignments(_ context.Context, principalID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.assigned[principalID]), nil
}

func (s *MemoryRoleStore) GetProfileRole(_ context.Context, principalID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.profiles[principalID]
	return r, ok, nil
}

func (s *MemoryRoleStore) GetSubscriptionTier(_ context.Context, principalID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tiers[principalID]
	return t, ok, nil
}

func (s *MemoryRoleStore) AssignRole(_ context.Context, principalID, role, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.assigned[principalID], role) {
		s.assigned[principalID] = append(s.assigned[principalID], role)
	}
	return nil
}

func (s *MemoryRoleStore) RevokeRole(_ context.Context, principalID, role string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roles := s.assigned[principalID]
	i := slices.Index(roles, role)
	if i < 0 {
		return false, nil
	}
	s.assigned[principalID] = slices.Delete(roles, i, i+1)
	return true, nil
}

func (s *MemoryRoleStore) UpsertProfile(_ context.Context, principalID string, role *string, tier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if role == nil {
		delete(s.profiles, principalID)
	} else {
		s.profiles[principalID] = *role
	}
	s.tiers[principalID] = tier
	return nil
}

// SetProfile sets the profile role (empty clears it) and subscription tier.
func (s *MemoryRoleStore) SetProfile(principalID, role, tier string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if role == "" {
		delete(s.profiles, principalID)
	} else {
		s.profiles[principalID] = role
	}
	if tier != "" {
		s.tiers[principalID] = tier
	}
}

var (
	_ ports.RoleStore      = (*MemoryRoleStore)(nil)
	_ ports.RoleAdminStore = (*MemoryRoleStore)(nil)
	_ ports.TierStore      = (*MemoryRoleStore)(nil)
)
