package circle

// Paid capacity beyond the free tier is sold in packs.
const (
	ExtraFriendsPerPack = 10
	PricePerPackCents   = 100
	MaxTotalFriends     = 500
)

// UpgradeQuote prices the packs needed to cover an overage.
type UpgradeQuote struct {
	ExtraNeeded    int  `json:"extra_needed"`
	Packs          int  `json:"packs"`
	PriceCents     int  `json:"price_cents"`
	ExceedsHardCap bool `json:"exceeds_hard_cap"`
}

// QuoteUpgrade prices ov for a circle with totalFriends relationships. Payment never
// lifts a circle past MaxTotalFriends.
func QuoteUpgrade(ov Overage, totalFriends int) UpgradeQuote {
	q := UpgradeQuote{
		ExtraNeeded:    ov.ExtraNeeded,
		ExceedsHardCap: totalFriends > MaxTotalFriends,
	}
	if ov.ExtraNeeded > 0 {
		q.Packs = (ov.ExtraNeeded + ExtraFriendsPerPack - 1) / ExtraFriendsPerPack
		q.PriceCents = q.Packs * PricePerPackCents
	}
	return q
}
