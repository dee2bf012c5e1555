package service

import (
	"context"
	"testing"
	"time"

	"realones/internal/models"
	"realones/internal/repository"

	"github.com/google/uuid"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02 15:04", s)
	return t
}

func TestAdvanceStreak(t *testing.T) {
	tests := []struct {
		name    string
		in      models.Streak
		now     time.Time
		current int
		longest int
		changed bool
	}{
		{"first action", models.Streak{}, day("2025-03-01 09:00"), 1, 1, true},
		{"same day", models.Streak{CurrentStreak: 2, LongestStreak: 4, LastActionDate: "2025-03-01"}, day("2025-03-01 23:00"), 2, 4, false},
		{"next day", models.Streak{CurrentStreak: 2, LongestStreak: 2, LastActionDate: "2025-03-01"}, day("2025-03-02 00:05"), 3, 3, true},
		{"gap resets", models.Streak{CurrentStreak: 6, LongestStreak: 6, LastActionDate: "2025-03-01"}, day("2025-03-04 12:00"), 1, 6, true},
		{"month boundary", models.Streak{CurrentStreak: 1, LongestStreak: 1, LastActionDate: "2025-02-28"}, day("2025-03-01 08:00"), 2, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := AdvanceStreak(tt.in, tt.now)
			if got.CurrentStreak != tt.current || got.LongestStreak != tt.longest || changed != tt.changed {
				t.Errorf("AdvanceStreak = %+v changed=%v", got, changed)
			}
		})
	}
}

func TestStreakService_RecordAndGet(t *testing.T) {
	f := newFixture(t)
	svc := NewStreakService(repository.NewStreakRepository(f.db), f.backend)
	ctx := context.Background()
	user := uuid.New()

	clock := day("2025-03-01 10:00")
	svc.now = func() time.Time { return clock }

	if _, err := svc.RecordAction(ctx, user); err != nil {
		t.Fatal(err)
	}
	clock = day("2025-03-02 10:00")
	st, err := svc.RecordAction(ctx, user)
	if err != nil || st.CurrentStreak != 2 {
		t.Fatalf("second day = %+v, %v", st, err)
	}

	clock = day("2025-03-05 10:00")
	st, err = svc.Get(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if st.CurrentStreak != 0 || st.LongestStreak != 2 {
		t.Errorf("broken streak should read 0 with longest kept: %+v", st)
	}

	empty, err := svc.Get(ctx, uuid.New())
	if err != nil || empty.CurrentStreak != 0 {
		t.Errorf("unknown user = %+v, %v", empty, err)
	}
}
