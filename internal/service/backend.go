package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Backend bounds every store round trip made by a service.
type Backend struct {
	Timeout time.Duration
}

func NewBackend(timeout time.Duration) Backend {
	return Backend{Timeout: timeout}
}

// bound derives the context for a single round trip.
func (b Backend) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.Timeout)
}

// ChangePublisher pushes realtime change events to a user's open connections.
type ChangePublisher interface {
	Publish(userID uuid.UUID, event string, payload interface{})
}

// Notifier stores a notification and relays it as a push.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string, data map[string]interface{}) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(uuid.UUID, string, interface{}) {}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, uuid.UUID, string, string, string, map[string]interface{}) error {
	return nil
}
