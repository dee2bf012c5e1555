package service

import (
	"context"

	"realones/internal/domain"
	"realones/internal/pioneer"

	"github.com/google/uuid"
)

// SessionView tells the client which experience to render.
type SessionView struct {
	UserID     uuid.UUID          `json:"user_id"`
	Experience domain.Experience  `json:"experience"`
	Activation pioneer.Activation `json:"activation"`
}

// SessionService routes a signed-in user to the Pioneer or main experience based
// only on their activation state.
type SessionService struct {
	pioneer *PioneerService
}

func NewSessionService(p *PioneerService) *SessionService {
	return &SessionService{pioneer: p}
}

func (s *SessionService) Experience(ctx context.Context, userID uuid.UUID) (*SessionView, error) {
	a, err := s.pioneer.ComputeActivation(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &SessionView{UserID: userID, Experience: pioneer.ExperienceFor(a), Activation: a}, nil
}
