// Package loyalty derives a customer's tier and reward eligibility
// from accumulated points.
package loyalty

import "rms-sync-service/internal/domain"

const (
	BronzeThreshold = 50
	SilverThreshold = 150
	GoldThreshold   = 400
)

// TierFor classifies a point balance. Tiers only ever move up.
func TierFor(points int) domain.LoyaltyTier {
	switch {
	case points >= GoldThreshold:
		return domain.TierGold
	case points >= SilverThreshold:
		return domain.TierSilver
	case points >= BronzeThreshold:
		return domain.TierBronze
	default:
		return domain.TierNone
	}
}

// rank orders tiers so a recomputed tier never demotes a customer.
func rank(t domain.LoyaltyTier) int {
	switch t {
	case domain.TierGold:
		return 3
	case domain.TierSilver:
		return 2
	case domain.TierBronze:
		return 1
	default:
		return 0
	}
}

// Promote returns the higher of the current and recomputed tiers.
func Promote(current domain.LoyaltyTier, points int) domain.LoyaltyTier {
	computed := TierFor(points)
	if rank(computed) > rank(current) {
		return computed
	}
	return current
}

// Eligible reports whether a reward is claimable at the given tier.
func Eligible(reward domain.Reward, tier domain.LoyaltyTier) bool {
	return !reward.IsClaimed && rank(tier) >= rank(reward.Tier)
}
