package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAccess(t *testing.T) {
	tests := []struct {
		name       string
		userTier   *Tier
		required   Tier
		comingSoon bool
		want       bool
	}{
		{"free content anonymous", nil, TierFree, false, true},
		{"premium anonymous", nil, TierDriven, false, false},
		{"exact tier", tierPtr(TierAspiring), TierAspiring, false, true},
		{"higher tier", tierPtr(TierBreakthrough), TierDriven, false, true},
		{"lower tier", tierPtr(TierDriven), TierAspiring, false, false},
		{"coming soon top tier", tierPtr(TierBreakthrough), TierFree, true, false},
		{"coming soon anonymous", nil, TierFree, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.userTier, tt.required, tt.comingSoon))
		})
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		userTier   *Tier
		required   Tier
		comingSoon bool
		want       Eligibility
	}{
		{
			name:     "allowed",
			userTier: tierPtr(TierDriven),
			required: TierDriven,
			want:     Eligibility{Allowed: true, EligibleOnRelease: true},
		},
		{
			name:     "upgrade",
			userTier: tierPtr(TierFree),
			required: TierAspiring,
			want:     Eligibility{Denial: DenialUpgradeRequired},
		},
		{
			name:       "coming soon but included in plan",
			userTier:   tierPtr(TierBreakthrough),
			required:   TierAspiring,
			comingSoon: true,
			want:       Eligibility{EligibleOnRelease: true, Denial: DenialComingSoon},
		},
		{
			name:       "coming soon and not in plan",
			required:   TierAspiring,
			comingSoon: true,
			want:       Eligibility{Denial: DenialComingSoon},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.userTier, tt.required, tt.comingSoon))
		})
	}
}
