// Package pioneer decides when a user graduates from the restricted Pioneer
// experience into the full app. Everything here is a pure function over a
// snapshot of the user's credits and cached status; persistence lives in the
// service layer.
package pioneer

import (
	"realones/internal/domain"
	"realones/internal/models"
)

// ActivationThreshold is the number of distinct credits that unlocks the main app.
const ActivationThreshold = 5

// FriendCreditDisplayCap is how many friend_joined credits the task list shows as
// attainable. It is not enforced: referrals alone may activate a user.
const FriendCreditDisplayCap = 5

// MaxSourceIDLength bounds a credit source id; it matches the stored column width.
const MaxSourceIDLength = 64

// Activation is the derived activation decision for one user.
type Activation struct {
	CreditsCount  int  `json:"credits_count"`
	IsActivated   bool `json:"is_activated"`
	CreditsNeeded int  `json:"credits_needed"`
}

// SourceKey is the dedup key stored alongside a credit. Only friend_joined credits
// are keyed by source; every other type collapses to a single key per user.
func SourceKey(t domain.CreditType, sourceID string) string {
	if t.MultiGrant() {
		return sourceID
	}
	return ""
}

// ClientClaimable reports whether a client may claim t directly. Referral and
// profile credits are only granted after the server has seen the fact behind them.
func ClientClaimable(t domain.CreditType) bool {
	return t == domain.CreditFacebookImport || t == domain.CreditContactsImport
}

// HasEarnedCredit reports whether credits already contains the given grant. An
// empty sourceID for friend_joined matches any referral.
func HasEarnedCredit(credits []models.Credit, t domain.CreditType, sourceID string) bool {
	key := SourceKey(t, sourceID)
	for i := range credits {
		c := &credits[i]
		if c.CreditType != t {
			continue
		}
		if !t.MultiGrant() || sourceID == "" {
			return true
		}
		if creditSource(c) == key {
			return true
		}
	}
	return false
}

func creditSource(c *models.Credit) string {
	if c.SourceKey != "" {
		return c.SourceKey
	}
	if c.SourceID != nil {
		return *c.SourceID
	}
	return ""
}

// ComputeActivation combines the ledger count with the cached status. The cached
// count is a floor and a cached activation is permanent.
func ComputeActivation(ledgerCount int, cached *models.PioneerStatus) Activation {
	count := ledgerCount
	activated := false
	if cached != nil {
		if cached.Credits > count {
			count = cached.Credits
		}
		activated = cached.IsActivated
	}
	if count >= ActivationThreshold {
		activated = true
	}
	needed := ActivationThreshold - count
	if needed < 0 {
		needed = 0
	}
	return Activation{CreditsCount: count, IsActivated: activated, CreditsNeeded: needed}
}

// ExperienceFor picks the onboarding surface for an activation state.
func ExperienceFor(a Activation) domain.Experience {
	if a.IsActivated {
		return domain.ExperienceMain
	}
	return domain.ExperiencePioneer
}

// Progress summarises earned credits per type for the onboarding task list.
type Progress struct {
	FriendCredits    int                        `json:"friend_credits"`
	FriendCreditsCap int                        `json:"friend_credits_cap"`
	Earned           map[domain.CreditType]bool `json:"earned"`
}

func ComputeProgress(credits []models.Credit) Progress {
	p := Progress{
		FriendCreditsCap: FriendCreditDisplayCap,
		Earned:           make(map[domain.CreditType]bool, len(domain.CreditTypes)),
	}
	for _, t := range domain.CreditTypes {
		p.Earned[t] = false
	}
	for i := range credits {
		t := credits[i].CreditType
		if t == domain.CreditFriendJoined {
			p.FriendCredits++
		}
		p.Earned[t] = true
	}
	return p
}

// ShouldPersist reports whether next carries information the cache lacks.
// The cache is only ever raised.
func ShouldPersist(cached *models.PioneerStatus, next Activation) bool {
	if cached == nil {
		return true
	}
	return next.CreditsCount > cached.Credits || (next.IsActivated && !cached.IsActivated)
}
