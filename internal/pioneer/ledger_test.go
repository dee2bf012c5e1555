package pioneer

import (
	"testing"

	"realones/internal/domain"
	"realones/internal/models"

	"github.com/google/uuid"
)

func credit(t domain.CreditType, source string) models.Credit {
	c := models.Credit{ID: uuid.New(), CreditType: t, SourceKey: SourceKey(t, source)}
	if source != "" {
		s := source
		c.SourceID = &s
	}
	return c
}

func TestSourceKey(t *testing.T) {
	if got := SourceKey(domain.CreditFriendJoined, "f1"); got != "f1" {
		t.Errorf("friend_joined key = %q, want f1", got)
	}
	if got := SourceKey(domain.CreditProfileComplete, "ignored"); got != "" {
		t.Errorf("profile_complete key = %q, want empty", got)
	}
}

func TestHasEarnedCredit(t *testing.T) {
	credits := []models.Credit{
		credit(domain.CreditFriendJoined, "f1"),
		credit(domain.CreditProfileComplete, ""),
	}

	tests := []struct {
		name     string
		typ      domain.CreditType
		source   string
		expected bool
	}{
		{"same referred friend", domain.CreditFriendJoined, "f1", true},
		{"different referred friend", domain.CreditFriendJoined, "f2", false},
		{"any referred friend", domain.CreditFriendJoined, "", true},
		{"single grant type earned", domain.CreditProfileComplete, "", true},
		{"single grant ignores source", domain.CreditProfileComplete, "anything", true},
		{"single grant type not earned", domain.CreditContactsImport, "", false},
		{"facebook import not earned", domain.CreditFacebookImport, "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasEarnedCredit(credits, tt.typ, tt.source); got != tt.expected {
				t.Errorf("HasEarnedCredit(%s, %q) = %v, want %v", tt.typ, tt.source, got, tt.expected)
			}
		})
	}
}

func TestHasEarnedCredit_FallsBackToSourceID(t *testing.T) {
	s := "f9"
	credits := []models.Credit{{CreditType: domain.CreditFriendJoined, SourceID: &s}}
	if !HasEarnedCredit(credits, domain.CreditFriendJoined, "f9") {
		t.Error("expected match on SourceID when SourceKey is empty")
	}
}

func TestHasEarnedCredit_AnyReferralWithoutOne(t *testing.T) {
	credits := []models.Credit{credit(domain.CreditProfileComplete, "")}
	if HasEarnedCredit(credits, domain.CreditFriendJoined, "") {
		t.Error("no referral credit held")
	}
}

func TestClientClaimable(t *testing.T) {
	want := map[domain.CreditType]bool{
		domain.CreditFacebookImport:  true,
		domain.CreditContactsImport:  true,
		domain.CreditFriendJoined:    false,
		domain.CreditProfileComplete: false,
	}
	for typ, ok := range want {
		if got := ClientClaimable(typ); got != ok {
			t.Errorf("ClientClaimable(%s) = %v, want %v", typ, got, ok)
		}
	}
}

func TestComputeActivation_ThresholdBoundary(t *testing.T) {
	tests := []struct {
		count     int
		activated bool
		needed    int
	}{
		{0, false, 5},
		{3, false, 2},
		{4, false, 1},
		{5, true, 0},
		{7, true, 0},
	}
	for _, tt := range tests {
		got := ComputeActivation(tt.count, nil)
		if got.CreditsCount != tt.count || got.IsActivated != tt.activated || got.CreditsNeeded != tt.needed {
			t.Errorf("ComputeActivation(%d) = %+v, want activated=%v needed=%d", tt.count, got, tt.activated, tt.needed)
		}
	}
}

func TestComputeActivation_CachedCountIsFloor(t *testing.T) {
	cached := &models.PioneerStatus{Credits: 4}
	got := ComputeActivation(2, cached)
	if got.CreditsCount != 4 {
		t.Errorf("CreditsCount = %d, want 4", got.CreditsCount)
	}
	if got.CreditsNeeded != 1 {
		t.Errorf("CreditsNeeded = %d, want 1", got.CreditsNeeded)
	}

	got = ComputeActivation(6, cached)
	if got.CreditsCount != 6 || !got.IsActivated {
		t.Errorf("ledger above cache: got %+v", got)
	}
}

func TestComputeActivation_Monotonic(t *testing.T) {
	cached := &models.PioneerStatus{Credits: 1, IsActivated: true}
	got := ComputeActivation(0, cached)
	if !got.IsActivated {
		t.Error("cached activation must never revert")
	}
}

func TestComputeActivation_DefaultsWithoutCache(t *testing.T) {
	got := ComputeActivation(0, nil)
	want := Activation{CreditsCount: 0, IsActivated: false, CreditsNeeded: 5}
	if got != want {
		t.Errorf("ComputeActivation(0, nil) = %+v, want %+v", got, want)
	}
}

func TestExperienceFor(t *testing.T) {
	if ExperienceFor(Activation{IsActivated: false}) != domain.ExperiencePioneer {
		t.Error("non-activated users see the pioneer experience")
	}
	if ExperienceFor(Activation{IsActivated: true}) != domain.ExperienceMain {
		t.Error("activated users see the main experience")
	}
}

func TestComputeProgress(t *testing.T) {
	p := ComputeProgress([]models.Credit{
		credit(domain.CreditFriendJoined, "a"),
		credit(domain.CreditFriendJoined, "b"),
		credit(domain.CreditProfileComplete, ""),
	})
	if p.FriendCredits != 2 {
		t.Errorf("FriendCredits = %d, want 2", p.FriendCredits)
	}
	if !p.Earned[domain.CreditProfileComplete] || p.Earned[domain.CreditContactsImport] {
		t.Errorf("Earned = %v", p.Earned)
	}
	if len(p.Earned) != len(domain.CreditTypes) {
		t.Errorf("Earned should list every credit type, got %d", len(p.Earned))
	}
}

func TestShouldPersist(t *testing.T) {
	tests := []struct {
		name   string
		cached *models.PioneerStatus
		next   Activation
		want   bool
	}{
		{"no cache", nil, Activation{}, true},
		{"count raised", &models.PioneerStatus{Credits: 2}, Activation{CreditsCount: 3}, true},
		{"unchanged", &models.PioneerStatus{Credits: 3}, Activation{CreditsCount: 3}, false},
		{"newly activated", &models.PioneerStatus{Credits: 5}, Activation{CreditsCount: 5, IsActivated: true}, true},
		{"already activated", &models.PioneerStatus{Credits: 5, IsActivated: true}, Activation{CreditsCount: 5, IsActivated: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldPersist(tt.cached, tt.next); got != tt.want {
				t.Errorf("ShouldPersist = %v, want %v", got, tt.want)
			}
		})
	}
}
