package circle

import (
	"testing"

	"realones/internal/domain"
	"realones/internal/models"

	"github.com/google/uuid"
)

func friend(status domain.FriendStatus) models.Friend {
	return models.Friend{ID: uuid.New(), Status: status}
}

func tiered(status domain.FriendStatus, t domain.Tier) models.Friend {
	f := friend(status)
	f.Tier = &t
	return f
}

func TestPartitionByStatus(t *testing.T) {
	in := []models.Friend{
		friend(domain.FriendActive),
		friend(domain.FriendArchived),
		friend(domain.FriendActive),
		friend(domain.FriendImportPool),
		friend(domain.FriendPending),
	}
	p := PartitionByStatus(in)
	if len(p.Active) != 2 || len(p.Archived) != 1 || len(p.ImportPool) != 1 || len(p.Pending) != 1 {
		t.Fatalf("unexpected partition sizes: %d/%d/%d/%d", len(p.Active), len(p.Archived), len(p.ImportPool), len(p.Pending))
	}
	if p.Active[0].ID != in[0].ID || p.Active[1].ID != in[2].ID {
		t.Error("partition must keep input order")
	}
}

func TestPartitionByStatus_Empty(t *testing.T) {
	p := PartitionByStatus(nil)
	if p.Active == nil || p.Archived == nil || p.ImportPool == nil || p.Pending == nil {
		t.Error("empty groups should be non-nil so they encode as []")
	}
}

func TestComputeOverage(t *testing.T) {
	tests := []struct {
		name     string
		active   int
		archived int
		over     bool
		extra    int
	}{
		{"empty", 0, 0, false, 0},
		{"both at cap", 100, 100, false, 0},
		{"active over", 101, 100, true, 1},
		{"both over", 110, 120, true, 30},
		{"archived under absorbs active overage", 105, 90, true, 0},
		{"archived over, active under", 95, 108, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeOverage(tt.active, tt.archived)
			if got.IsOverLimit != tt.over || got.ExtraNeeded != tt.extra {
				t.Errorf("ComputeOverage(%d, %d) = %+v, want over=%v extra=%d", tt.active, tt.archived, got, tt.over, tt.extra)
			}
		})
	}
}

func TestTierCapacity(t *testing.T) {
	if TierCapacity(domain.TierRideOrDies) != 4 || TierCapacity(domain.TierSquad) != 12 || TierCapacity(domain.TierRealOnes) != 200 {
		t.Error("unexpected tier capacities")
	}
	if TierCapacity(domain.Tier("vip")) != 0 {
		t.Error("unknown tier should have zero capacity")
	}
}

func TestTierUsage(t *testing.T) {
	friends := []models.Friend{
		tiered(domain.FriendActive, domain.TierRideOrDies),
		tiered(domain.FriendActive, domain.TierRideOrDies),
		tiered(domain.FriendArchived, domain.TierRideOrDies),
		tiered(domain.FriendPending, domain.TierSquad),
		friend(domain.FriendActive),
	}
	slots := TierUsage(friends)
	if len(slots) != len(domain.Tiers) {
		t.Fatalf("got %d slots, want %d", len(slots), len(domain.Tiers))
	}
	byTier := map[domain.Tier]TierSlot{}
	for _, s := range slots {
		byTier[s.Tier] = s
	}
	if s := byTier[domain.TierRideOrDies]; s.Used != 2 || s.Remaining != 2 {
		t.Errorf("rideordies = %+v", s)
	}
	if s := byTier[domain.TierSquad]; s.Used != 1 || s.Remaining != 11 {
		t.Errorf("squad = %+v", s)
	}
	if s := byTier[domain.TierRealOnes]; s.Used != 0 || s.Remaining != 200 {
		t.Errorf("realones = %+v", s)
	}
}

func TestQuoteUpgrade(t *testing.T) {
	tests := []struct {
		name    string
		extra   int
		total   int
		packs   int
		price   int
		exceeds bool
	}{
		{"nothing needed", 0, 150, 0, 0, false},
		{"one friend over", 1, 201, 1, 100, false},
		{"exact pack", 10, 210, 1, 100, false},
		{"partial second pack", 11, 211, 2, 200, false},
		{"past hard cap", 320, 520, 32, 3200, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuoteUpgrade(Overage{IsOverLimit: tt.extra > 0, ExtraNeeded: tt.extra}, tt.total)
			if q.Packs != tt.packs || q.PriceCents != tt.price || q.ExceedsHardCap != tt.exceeds {
				t.Errorf("QuoteUpgrade = %+v", q)
			}
		})
	}
}
