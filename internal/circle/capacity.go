// Package circle classifies a user's friend relationships, validates status
// changes and reports free-tier overage. It never rejects a write because of
// capacity: overage is informational and the caller decides what to do with it.
package circle

import (
	"realones/internal/domain"
	"realones/internal/models"
)

// Free-tier caps.
const (
	FreeActiveLimit   = 100
	FreeArchivedLimit = 100
)

// Partition groups relationships by status. Each group keeps the input order.
type Partition struct {
	Active     []models.Friend `json:"active"`
	Archived   []models.Friend `json:"archived"`
	ImportPool []models.Friend `json:"import_pool"`
	Pending    []models.Friend `json:"pending"`
}

func PartitionByStatus(friends []models.Friend) Partition {
	p := Partition{
		Active:     []models.Friend{},
		Archived:   []models.Friend{},
		ImportPool: []models.Friend{},
		Pending:    []models.Friend{},
	}
	for _, f := range friends {
		switch f.Status {
		case domain.FriendActive:
			p.Active = append(p.Active, f)
		case domain.FriendArchived:
			p.Archived = append(p.Archived, f)
		case domain.FriendImportPool:
			p.ImportPool = append(p.ImportPool, f)
		case domain.FriendPending:
			p.Pending = append(p.Pending, f)
		}
	}
	return p
}

// Overage is the free-tier limit report.
type Overage struct {
	IsOverLimit bool `json:"is_over_limit"`
	ExtraNeeded int  `json:"extra_needed"`
}

// ComputeOverage reports whether either dimension is over its cap. ExtraNeeded sums
// both raw differences before clamping, so a dimension under its cap reduces the
// total. Clients already depend on this number; keep it as is.
func ComputeOverage(activeCount, archivedCount int) Overage {
	extra := (activeCount - FreeActiveLimit) + (archivedCount - FreeArchivedLimit)
	if extra < 0 {
		extra = 0
	}
	return Overage{
		IsOverLimit: activeCount > FreeActiveLimit || archivedCount > FreeArchivedLimit,
		ExtraNeeded: extra,
	}
}

// TierCapacity returns the informational size of a tier.
func TierCapacity(t domain.Tier) int {
	switch t {
	case domain.TierRideOrDies:
		return 4
	case domain.TierSquad:
		return 12
	case domain.TierRealOnes:
		return 200
	}
	return 0
}

// TierSlot is the usage of one tier.
type TierSlot struct {
	Tier      domain.Tier `json:"tier"`
	Capacity  int         `json:"capacity"`
	Used      int         `json:"used"`
	Remaining int         `json:"remaining"`
}

// TierUsage counts tiered relationships that are not archived.
func TierUsage(friends []models.Friend) []TierSlot {
	used := make(map[domain.Tier]int, len(domain.Tiers))
	for _, f := range friends {
		if f.Tier == nil || f.Status == domain.FriendArchived {
			continue
		}
		used[*f.Tier]++
	}
	slots := make([]TierSlot, 0, len(domain.Tiers))
	for _, t := range domain.Tiers {
		c := TierCapacity(t)
		rem := c - used[t]
		if rem < 0 {
			rem = 0
		}
		slots = append(slots, TierSlot{Tier: t, Capacity: c, Used: used[t], Remaining: rem})
	}
	return slots
}
