package data

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivenlabs/membergate/internal/domain/model"
	errs "github.com/drivenlabs/membergate/internal/errors"
	"github.com/drivenlabs/membergate/internal/ports"
	"github.com/drivenlabs/membergate/internal/testutil"
)

func newTestInvite(code, email string, created time.Time) *model.BetaInvite {
	return &model.BetaInvite{
		ID:        uuid.NewString(),
		Code:      code,
		Email:     email,
		CreatedAt: created,
		ExpiresAt: created.Add(model.DefaultInviteTTL),
	}
}

func createSentInvite(t *testing.T, repo *InviteRepo, code string, created time.Time) *model.BetaInvite {
	t.Helper()
	ctx := context.Background()
	inv := newTestInvite(code, code+"@example.com", created)
	require.NoError(t, repo.Create(ctx, inv))
	ok, err := repo.MarkSent(ctx, inv.ID, created)
	require.NoError(t, err)
	require.True(t, ok)
	return inv
}

func TestInviteRepo_CreateAndLookup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewInviteRepo(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	inv := newTestInvite("ABCD-EFGH-IJKL", "a@x.com", now)
	require.NoError(t, repo.Create(ctx, inv))
	assert.Equal(t, model.InviteStatusPending, inv.Status)

	got, err := repo.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
	assert.True(t, got.ExpiresAt.Equal(now.Add(model.DefaultInviteTTL)))

	got, err = repo.GetByCode(ctx, "ABCD-EFGH-IJKL")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.True(t, errs.IsNotFound(err))

	dup := newTestInvite("ABCD-EFGH-IJKL", "b@x.com", now)
	err = repo.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))
	assert.Equal(t, "code", errs.GetField(err))
}

func TestInviteRepo_CodeReusableAfterExpiry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewInviteRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	first := newTestInvite("AAAA-BBBB-CCCC", "a@x.com", now)
	require.NoError(t, repo.Create(ctx, first))
	ok, err := repo.MarkExpired(ctx, first.ID, model.InviteStatusPending)
	require.NoError(t, err)
	require.True(t, ok)

	second := newTestInvite("AAAA-BBBB-CCCC", "b@x.com", now)
	require.NoError(t, repo.Create(ctx, second))
}

func TestInviteRepo_ConditionalTransitions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewInviteRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	inv := newTestInvite("QQQQ-WWWW-EEEE", "a@x.com", now)
	require.NoError(t, repo.Create(ctx, inv))

	ok, err := repo.MarkSent(ctx, inv.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkSent(ctx, inv.ID, now)
	require.NoError(t, err)
	assert.False(t, ok, "second send must not re-stamp")

	ok, err = repo.MarkExpired(ctx, inv.ID, model.InviteStatusPending)
	require.NoError(t, err)
	assert.False(t, ok, "invite is no longer pending")

	ok, err = repo.MarkExpired(ctx, inv.ID, model.InviteStatusClaimed)
	require.NoError(t, err)
	assert.False(t, ok, "claimed is terminal")
}

func TestInviteRepo_Claim(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewInviteRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	inv := createSentInvite(t, repo, "CLAI-MMEE-0001", now)

	outcome, err := repo.Claim(ctx, inv.Code, "user-1", now)
	require.NoError(t, err)
	assert.Equal(t, ports.ClaimSucceeded, outcome)

	got, err := repo.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InviteStatusClaimed, got.Status)
	require.NotNil(t, got.ClaimedBy)
	assert.Equal(t, "user-1", *got.ClaimedBy)

	outcome, err = repo.Claim(ctx, inv.Code, "user-2", now)
	require.NoError(t, err)
	assert.Equal(t, ports.ClaimInvalid, outcome)

	users, err := repo.ListBetaUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "user-1", users[0].UserID)
	assert.Equal(t, inv.ID, users[0].InviteID)

	has, err := repo.HasBetaUser(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestInviteRepo_ClaimExpiredCommitsExpiry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewInviteRepo(db)
	ctx := context.Background()
	created := time.Now().UTC().Add(-31 * 24 * time.Hour)

	inv := createSentInvite(t, repo, "OLDD-CODE-0001", created)

	outcome, err := repo.Claim(ctx, inv.Code, "user-1", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, ports.ClaimExpired, outcome)

	got, err := repo.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InviteStatusExpired, got.Status)

	has, err := repo.HasBetaUser(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestInviteRepo_ClaimSecondCodeForSameUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewInviteRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	first := createSentInvite(t, repo, "FRST-CODE-0001", now)
	second := createSentInvite(t, repo, "SCND-CODE-0001", now)

	outcome, err := repo.Claim(ctx, first.Code, "user-1", now)
	require.NoError(t, err)
	require.Equal(t, ports.ClaimSucceeded, outcome)

	outcome, err = repo.Claim(ctx, second.Code, "user-1", now)
	require.NoError(t, err)
	assert.Equal(t, ports.ClaimAlreadyMember, outcome)

	got, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InviteStatusSent, got.Status, "rejected claim must not consume the invite")
}

func TestInviteRepo_ConcurrentClaimsSingleWinner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewInviteRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	inv := createSentInvite(t, repo, "RACE-CODE-0001", now)

	const claimers = 8
	outcomes := make([]ports.ClaimOutcome, claimers)
	var wg sync.WaitGroup
	for i := range claimers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := repo.Claim(ctx, inv.Code, uuid.NewString(), now)
			assert.NoError(t, err)
			outcomes[i] = outcome
		}()
	}
	wg.Wait()

	wins := 0
	for _, o := range outcomes {
		if o == ports.ClaimSucceeded {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	users, err := repo.ListBetaUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestInviteRepo_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewInviteRepo(db)
	ctx := context.Background()
	base := time.Now().UTC()

	for i, code := range []string{"LIST-AAAA-0001", "LIST-AAAA-0002", "LIST-AAAA-0003"} {
		require.NoError(t, repo.Create(ctx, newTestInvite(code, "l@x.com", base.Add(time.Duration(i)*time.Minute))))
	}
	sent := createSentInvite(t, repo, "LIST-SENT-0001", base.Add(time.Hour))

	all, err := repo.List(ctx, model.ListInvitesOptions{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, sent.ID, all[0].ID, "newest first")

	status := model.InviteStatusPending
	pending, err := repo.List(ctx, model.ListInvitesOptions{Status: &status, Limit: 2})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "LIST-AAAA-0003", pending[0].Code)
}

func TestInviteRepo_ExpireOverdue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewInviteRepo(db)
	ctx := context.Background()
	old := time.Now().UTC().Add(-2 * model.DefaultInviteTTL)

	overduePending := newTestInvite("OVER-DUE0-0001", "p@x.com", old)
	require.NoError(t, repo.Create(ctx, overduePending))
	overdueSent := createSentInvite(t, repo, "OVER-DUE0-0002", old)
	fresh := createSentInvite(t, repo, "OVER-DUE0-0003", time.Now().UTC())

	n, err := repo.ExpireOverdue(ctx, time.Now().UTC(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.ExpireOverdue(ctx, time.Now().UTC(), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	for _, id := range []string{overduePending.ID, overdueSent.ID} {
		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.InviteStatusExpired, got.Status)
	}
	got, err := repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InviteStatusSent, got.Status)
}
