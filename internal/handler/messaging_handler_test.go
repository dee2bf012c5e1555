package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"realones/internal/domain"
	"realones/internal/models"
	"realones/internal/repository"
	"realones/internal/service"
	"realones/internal/testutil"
	"realones/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// befriend puts target in owner's active circle.
func befriend(t *testing.T, r http.Handler, owner, target uuid.UUID) {
	t.Helper()
	w := do(t, r, owner, http.MethodPost, "/api/v1/me/friends", gin.H{"friend_id": target.String()})
	if w.Code != http.StatusCreated {
		t.Fatalf("add friend: status %d, body %s", w.Code, w.Body.String())
	}
	var f struct {
		ID uuid.UUID `json:"id"`
	}
	decode(t, w, &f)
	if w := do(t, r, owner, http.MethodPost, "/api/v1/me/friends/"+f.ID.String()+"/activate", nil); w.Code != http.StatusOK {
		t.Fatalf("activate friend: status %d", w.Code)
	}
}

func TestConversations_DMFlow(t *testing.T) {
	r := newTestEngine(t)
	alice, bob := uuid.New(), uuid.New()
	befriend(t, r, alice, bob)

	w := do(t, r, alice, http.MethodPost, "/api/v1/me/conversations", gin.H{"type": "dm", "member_ids": []string{bob.String()}})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", w.Code, w.Body.String())
	}
	var conv service.ConversationView
	decode(t, w, &conv)

	// Opening the same DM again returns it.
	w = do(t, r, alice, http.MethodPost, "/api/v1/me/conversations", gin.H{"type": "dm", "member_ids": []string{bob.String()}})
	var again service.ConversationView
	decode(t, w, &again)
	if w.Code != http.StatusOK || again.ID != conv.ID {
		t.Errorf("reopen: status %d, id %s want %s", w.Code, again.ID, conv.ID)
	}

	base := "/api/v1/me/conversations/" + conv.ID.String()
	for _, text := range []string{"hey", "you up?"} {
		if w := do(t, r, alice, http.MethodPost, base+"/messages", gin.H{"content": text}); w.Code != http.StatusCreated {
			t.Fatalf("send: status %d, body %s", w.Code, w.Body.String())
		}
	}

	w = do(t, r, bob, http.MethodGet, "/api/v1/me/conversations", nil)
	var list struct {
		Conversations []service.ConversationView `json:"conversations"`
	}
	decode(t, w, &list)
	if len(list.Conversations) != 1 || list.Conversations[0].UnreadCount != 2 {
		t.Fatalf("bob's list = %+v", list.Conversations)
	}
	if lm := list.Conversations[0].LastMessage; lm == nil || lm.Content != "you up?" {
		t.Errorf("last message = %+v", lm)
	}

	w = do(t, r, bob, http.MethodGet, base+"/messages", nil)
	var page struct {
		Messages []service.MessageView `json:"messages"`
	}
	decode(t, w, &page)
	if len(page.Messages) != 2 || page.Messages[0].Content != "hey" || page.Messages[0].IsMine {
		t.Errorf("messages = %+v", page.Messages)
	}

	w = do(t, r, bob, http.MethodGet, "/api/v1/me/conversations", nil)
	decode(t, w, &list)
	if list.Conversations[0].UnreadCount != 0 {
		t.Errorf("unread after reading = %d", list.Conversations[0].UnreadCount)
	}

	stranger := uuid.New()
	if w := do(t, r, stranger, http.MethodGet, base+"/messages", nil); w.Code != http.StatusNotFound {
		t.Errorf("stranger read: status %d", w.Code)
	}
	if w := do(t, r, stranger, http.MethodPost, base+"/messages", gin.H{"content": "hi"}); w.Code != http.StatusNotFound {
		t.Errorf("stranger send: status %d", w.Code)
	}
	if w := do(t, r, stranger, http.MethodPost, base+"/read", nil); w.Code != http.StatusNotFound {
		t.Errorf("stranger mark read: status %d", w.Code)
	}
}

func TestConversations_Validation(t *testing.T) {
	r := newTestEngine(t)
	me, friend, stranger := uuid.New(), uuid.New(), uuid.New()
	befriend(t, r, me, friend)

	tests := []struct {
		name string
		body gin.H
	}{
		{"unknown type", gin.H{"type": "group", "member_ids": []string{friend.String()}}},
		{"no members", gin.H{"type": "squad", "member_ids": []string{}}},
		{"bad id", gin.H{"type": "dm", "member_ids": []string{"nope"}}},
		{"dm with two", gin.H{"type": "dm", "member_ids": []string{friend.String(), uuid.NewString()}}},
		{"outside circle", gin.H{"type": "dm", "member_ids": []string{stranger.String()}}},
		{"missing type", gin.H{"member_ids": []string{friend.String()}}},
	}
	for _, tt := range tests {
		if w := do(t, r, me, http.MethodPost, "/api/v1/me/conversations", tt.body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, body %s", tt.name, w.Code, w.Body.String())
		}
	}

	w := do(t, r, me, http.MethodPost, "/api/v1/me/conversations", gin.H{"type": "dm", "member_ids": []string{friend.String()}})
	var conv service.ConversationView
	decode(t, w, &conv)
	long := strings.Repeat("x", 4001)
	if w := do(t, r, me, http.MethodPost, "/api/v1/me/conversations/"+conv.ID.String()+"/messages", gin.H{"content": long}); w.Code != http.StatusBadRequest {
		t.Errorf("oversized message: status %d", w.Code)
	}
	if w := do(t, r, me, http.MethodPost, "/api/v1/me/conversations/"+conv.ID.String()+"/messages", gin.H{"content": "   "}); w.Code != http.StatusBadRequest {
		t.Errorf("blank message: status %d", w.Code)
	}
}

func TestMessagingFrames(t *testing.T) {
	db := testutil.NewDB(t)
	hub := ws.NewHub()
	svc := service.NewMessagingService(repository.NewConversationRepository(db), repository.NewFriendRepository(db),
		repository.NewProfileRepository(db), hub, service.NewBackend(5*time.Second), zap.NewNop())
	h := NewMessagingHandler(svc, zap.NewNop())
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	if err := db.Create(&models.Friend{OwnerUserID: alice, TargetUserID: &bob, Status: domain.FriendActive, Source: domain.SourceManual}).Error; err != nil {
		t.Fatal(err)
	}
	conv, _, err := svc.CreateConversation(ctx, alice, service.NewConversation{Type: domain.ConversationDM, MemberIDs: []uuid.UUID{bob}})
	if err != nil {
		t.Fatal(err)
	}
	bobConn := ws.NewClient(bob)
	hub.Register(bobConn)
	defer bobConn.Close()

	next := func() string {
		t.Helper()
		select {
		case raw := <-bobConn.Send:
			var ev ws.Event
			if err := json.Unmarshal(raw, &ev); err != nil {
				t.Fatal(err)
			}
			return ev.Type
		default:
			return ""
		}
	}

	if err := h.Frames(ctx, alice, ws.Frame{Type: "message", ConversationID: conv.ID, Content: "hi"}); err != nil {
		t.Fatalf("message frame: %v", err)
	}
	if got := next(); got != domain.EventMessageCreated {
		t.Errorf("bob got %q, want message_created", got)
	}
	if err := h.Frames(ctx, alice, ws.Frame{Type: "typing", ConversationID: conv.ID}); err != nil {
		t.Fatalf("typing frame: %v", err)
	}
	if got := next(); got != domain.EventTyping {
		t.Errorf("bob got %q, want typing", got)
	}
	if err := h.Frames(ctx, bob, ws.Frame{Type: "read", ConversationID: conv.ID}); err != nil {
		t.Errorf("read frame: %v", err)
	}
	if err := h.Frames(ctx, alice, ws.Frame{Type: "wave"}); err != nil {
		t.Errorf("unknown frame type err = %v", err)
	}

	err = h.Frames(ctx, uuid.New(), ws.Frame{Type: "typing", ConversationID: conv.ID})
	if err == nil || err.Error() != "not found" {
		t.Errorf("stranger typing err = %v", err)
	}
	err = h.Frames(ctx, alice, ws.Frame{Type: "message", ConversationID: conv.ID})
	if err == nil || !strings.Contains(err.Error(), "invalid message") {
		t.Errorf("empty message err = %v", err)
	}
}
