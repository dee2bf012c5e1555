package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"realones/internal/domain"
	"realones/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errUnregistered = errors.New("registration-token-not-registered")

type fakePusher struct {
	sent []string
	dead map[string]bool
}

func (p *fakePusher) Send(_ context.Context, token, _, body string, data map[string]string) error {
	if p.dead[token] {
		return errUnregistered
	}
	p.sent = append(p.sent, token+"|"+data["type"]+"|"+body)
	return nil
}

func (p *fakePusher) IsUnregistered(err error) bool { return errors.Is(err, errUnregistered) }

func TestTruncateBody(t *testing.T) {
	short := "hello"
	if TruncateBody(short) != short {
		t.Error("short bodies are unchanged")
	}
	exact := strings.Repeat("x", 100)
	if TruncateBody(exact) != exact {
		t.Error("100 characters fit")
	}
	got := TruncateBody(strings.Repeat("é", 150))
	if len([]rune(got)) != 100 || !strings.HasSuffix(got, "...") {
		t.Errorf("TruncateBody = %q (%d runes)", got, len([]rune(got)))
	}
}

func TestNotificationService_NotifyFansOut(t *testing.T) {
	f := newFixture(t)
	tokens := repository.NewPushTokenRepository(f.db)
	pusher := &fakePusher{dead: map[string]bool{"stale": true}}
	svc := NewNotificationService(repository.NewNotificationRepository(f.db), tokens, pusher, f.backend, zap.NewNop())
	ctx := context.Background()
	user := uuid.New()

	for _, tok := range []string{"phone", "tablet", "stale"} {
		if err := svc.RegisterToken(ctx, user, tok); err != nil {
			t.Fatal(err)
		}
	}
	if err := svc.Notify(ctx, user, domain.NotifyActivated, "You're in!", strings.Repeat("b", 120), map[string]interface{}{"n": 5}); err != nil {
		t.Fatal(err)
	}
	if len(pusher.sent) != 2 {
		t.Fatalf("sent = %v", pusher.sent)
	}
	left, _ := tokens.TokensForUser(ctx, user)
	if len(left) != 2 {
		t.Errorf("stale token should be dropped, left %v", left)
	}

	list, err := svc.List(ctx, user, 0, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %+v, %v", list, err)
	}
	if len([]rune(list[0].Body)) != 100 || list[0].Data != `{"n":5}` {
		t.Errorf("stored notification = %+v", list[0])
	}
	if err := svc.MarkRead(ctx, user, list[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.MarkRead(ctx, uuid.New(), list[0].ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("stranger MarkRead err = %v", err)
	}
}

func TestNotificationService_WithoutPush(t *testing.T) {
	f := newFixture(t)
	svc := NewNotificationService(repository.NewNotificationRepository(f.db), repository.NewPushTokenRepository(f.db), nil, f.backend, zap.NewNop())
	if err := svc.Notify(context.Background(), uuid.New(), domain.NotifyFriendJoined, "t", "b", nil); err != nil {
		t.Errorf("Notify without push = %v", err)
	}
}

func TestStringData(t *testing.T) {
	id := uuid.New()
	got := stringData("T", map[string]interface{}{"s": "x", "n": 3, "b": true, "id": id, "m": map[string]int{"a": 1}})
	want := map[string]string{"type": "T", "s": "x", "n": "3", "b": "true", "id": id.String(), "m": `{"a":1}`}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}
