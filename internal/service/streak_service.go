package service

import (
	"context"
	"time"

	"realones/internal/models"

	"github.com/google/uuid"
)

const streakDateLayout = "2006-01-02"

type StreakStore interface {
	Find(ctx context.Context, userID uuid.UUID) (*models.Streak, error)
	Save(ctx context.Context, s *models.Streak) error
}

// AdvanceStreak applies one triage action on day now (UTC) to s. A second action on
// the same day changes nothing, an action the day after the last one extends the
// streak, and any longer gap restarts it at 1.
func AdvanceStreak(s models.Streak, now time.Time) (models.Streak, bool) {
	today := now.UTC().Format(streakDateLayout)
	if s.LastActionDate == today {
		return s, false
	}
	yesterday := now.UTC().AddDate(0, 0, -1).Format(streakDateLayout)
	if s.LastActionDate == yesterday {
		s.CurrentStreak++
	} else {
		s.CurrentStreak = 1
	}
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	s.LastActionDate = today
	return s, true
}

// liveStreak is the streak as shown on day now: a streak whose last action is older
// than yesterday is already broken.
func liveStreak(s models.Streak, now time.Time) models.Streak {
	today := now.UTC().Format(streakDateLayout)
	yesterday := now.UTC().AddDate(0, 0, -1).Format(streakDateLayout)
	if s.LastActionDate != today && s.LastActionDate != yesterday {
		s.CurrentStreak = 0
	}
	return s
}

type StreakService struct {
	store   StreakStore
	backend Backend
	now     func() time.Time
}

func NewStreakService(store StreakStore, backend Backend) *StreakService {
	return &StreakService{store: store, backend: backend, now: time.Now}
}

// RecordAction counts a triage action toward today's streak.
func (s *StreakService) RecordAction(ctx context.Context, userID uuid.UUID) (*models.Streak, error) {
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()

	current, err := s.store.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	base := models.Streak{UserID: userID}
	if current != nil {
		base = *current
	}
	next, changed := AdvanceStreak(base, s.now())
	if !changed {
		return &next, nil
	}
	next.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// Get returns the user's streak as of today. Users who never acted get a zero streak.
func (s *StreakService) Get(ctx context.Context, userID uuid.UUID) (*models.Streak, error) {
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()

	current, err := s.store.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return &models.Streak{UserID: userID}, nil
	}
	live := liveStreak(*current, s.now())
	return &live, nil
}
