// Package access holds the subscription tier ordering and the pure content
// gating decisions built on it.
package access

import (
	"fmt"
	"strings"
)

// Tier is a subscription level. Tiers are only ever compared by Rank.
type Tier string

const (
	TierFree         Tier = "free"
	TierDriven       Tier = "driven"
	TierAspiring     Tier = "aspiring"
	TierBreakthrough Tier = "breakthrough"
)

var tierRanks = map[Tier]int{
	TierFree:         0,
	TierDriven:       1,
	TierAspiring:     2,
	TierBreakthrough: 3,
}

// Tiers returns all tiers in ascending order.
func Tiers() []Tier {
	return []Tier{TierFree, TierDriven, TierAspiring, TierBreakthrough}
}

// Rank returns the ordinal of t. Unknown tiers rank with free so a bad user
// tier never unlocks anything.
func Rank(t Tier) int {
	return tierRanks[t]
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	_, ok := tierRanks[t]
	return ok
}

// ParseTier parses a tier name, ignoring case and surrounding whitespace.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown subscription tier %q (want one of %s)", s, tierNames())
	}
	return t, nil
}

func tierNames() string {
	tiers := Tiers()
	names := make([]string, len(tiers))
	for i, t := range tiers {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// HasTierAccess reports whether a viewer on userTier may see content that
// requires required. A nil userTier is an anonymous viewer and only passes free.
// Content requiring an unknown tier is locked for everyone.
func HasTierAccess(userTier *Tier, required Tier) bool {
	if !required.Valid() {
		return false
	}
	if userTier == nil {
		return Rank(required) == Rank(TierFree)
	}
	return Rank(*userTier) >= Rank(required)
}
