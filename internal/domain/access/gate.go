package access

// Denial explains why content is locked so the caller can pick a prompt.
type Denial string

const (
	DenialNone            Denial = ""
	DenialUpgradeRequired Denial = "upgrade_required"
	DenialComingSoon      Denial = "coming_soon"
	DenialInviteRequired  Denial = "invite_required"
)

// CanAccess is the content lock decision. Coming-soon content is never
// accessible; otherwise the tier comparison decides.
func CanAccess(userTier *Tier, required Tier, comingSoon bool) bool {
	if comingSoon {
		return false
	}
	return HasTierAccess(userTier, required)
}

// Eligibility is a gate result. EligibleOnRelease carries the tier outcome
// alone, so coming-soon content can still be shown as "included in your plan".
type Eligibility struct {
	Allowed           bool   `json:"allowed"`
	EligibleOnRelease bool   `json:"eligible_on_release"`
	Denial            Denial `json:"denial,omitempty"`
}

// Evaluate builds an Eligibility for a viewer on userTier.
func Evaluate(userTier *Tier, required Tier, comingSoon bool) Eligibility {
	tierOK := HasTierAccess(userTier, required)
	e := Eligibility{
		Allowed:           CanAccess(userTier, required, comingSoon),
		EligibleOnRelease: tierOK,
	}
	switch {
	case comingSoon:
		e.Denial = DenialComingSoon
	case !tierOK:
		e.Denial = DenialUpgradeRequired
	}
	return e
}
