package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"realones/internal/repository"
	"realones/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type published struct {
	userID  uuid.UUID
	event   string
	payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(userID uuid.UUID, event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{userID, event, payload})
}

func (p *recordingPublisher) count(event string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.event == event {
			n++
		}
	}
	return n
}

type sentNotification struct {
	userID    uuid.UUID
	notifType string
	body      string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, notifType, _, body string, _ map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{userID, notifType, body})
	return nil
}

func (n *recordingNotifier) count(notifType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, s := range n.sent {
		if s.notifType == notifType {
			c++
		}
	}
	return c
}

type fixture struct {
	db        *gorm.DB
	backend   Backend
	events    *recordingPublisher
	notifier  *recordingNotifier
	pioneer   *PioneerService
	streaks   *StreakService
	circle    *CircleService
	profiles  *repository.ProfileRepository
	friendsDB *repository.FriendRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	backend := NewBackend(5 * time.Second)
	log := zap.NewNop()
	f := &fixture{
		db:        db,
		backend:   backend,
		events:    &recordingPublisher{},
		notifier:  &recordingNotifier{},
		profiles:  repository.NewProfileRepository(db),
		friendsDB: repository.NewFriendRepository(db),
	}
	f.pioneer = NewPioneerService(
		repository.NewCreditRepository(db),
		repository.NewPioneerStatusRepository(db),
		f.events, f.notifier, backend, log,
	)
	f.streaks = NewStreakService(repository.NewStreakRepository(db), backend)
	f.circle = NewCircleService(f.friendsDB, f.streaks, nil, f.events, backend, log)
	return f
}

func stringsReader(s string) io.Reader { return strings.NewReader(s) }
