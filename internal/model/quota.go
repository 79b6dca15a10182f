package model

// Subscription tiers known to the quota table.
const (
	TierFree    = "free"
	TierBasic   = "basic"
	TierPremium = "premium"
)

// QuotaUnlimited is the sentinel daily limit meaning "no limit".
const QuotaUnlimited = -1

// DefaultQuotas maps each tier to its daily import limit.
func DefaultQuotas() map[string]int {
	return map[string]int{
		TierFree:    1,
		TierBasic:   10,
		TierPremium: QuotaUnlimited,
	}
}
