package models

// MembershipTier is the ordered customer classification.
type MembershipTier string

const (
	TierBronze   MembershipTier = "bronze"
	TierSilver   MembershipTier = "silver"
	TierGold     MembershipTier = "gold"
	TierPlatinum MembershipTier = "platinum"
)

var tierRank = map[MembershipTier]int{
	TierBronze:   1,
	TierSilver:   2,
	TierGold:     3,
	TierPlatinum: 4,
}

// Rank orders tiers from bronze (1) to platinum (4). Unknown tiers rank 0.
func (t MembershipTier) Rank() int {
	return tierRank[t]
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Customer struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Phone           string         `json:"phone,omitempty"`
	Gender          string         `json:"gender,omitempty"`
	MembershipLevel MembershipTier `json:"membership_level"`
	LoyaltyPoints   int            `json:"loyalty_points"`
	TotalPurchases  float64        `json:"total_purchases"`
	Status          string         `json:"status"`
}
