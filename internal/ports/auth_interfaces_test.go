package ports_test

import (
	"testing"

	"github.com/drivenlabs/membergate/internal/mocks"
	authmocks "github.com/drivenlabs/membergate/internal/mocks/auth"
	"github.com/drivenlabs/membergate/internal/ports"
	"github.com/drivenlabs/membergate/internal/testutil"
)

// This test only verifies that the test doubles conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthProvider = (*authmocks.MockAuthProvider)(nil)
	var _ ports.SessionStore = (*authmocks.MemorySessionStore)(nil)
	var _ ports.RoleStore = (*mocks.MockRoleStore)(nil)
	var _ ports.TierStore = (*mocks.MockTierStore)(nil)
	var _ ports.Notifier = (*mocks.MockNotifier)(nil)
	var _ ports.BetaOverrideStore = (*mocks.MockBetaOverrideStore)(nil)
	var _ ports.InviteStore = (*testutil.MemoryInviteStore)(nil)
	var _ ports.RoleStore = (*testutil.MemoryRoleStore)(nil)
	var _ ports.RoleAdminStore = (*testutil.MemoryRoleStore)(nil)
}

func TestClaimOutcomeString(t *testing.T) {
	cases := map[ports.ClaimOutcome]string{
		ports.ClaimInvalid:       "invalid",
		ports.ClaimExpired:       "expired",
		ports.ClaimAlreadyMember: "already_member",
		ports.ClaimSucceeded:     "claimed",
	}
	for outcome, want := range cases {
		if got := outcome.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", outcome, got, want)
		}
	}
}
