package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// sendBuffer is the per-connection outbound queue. A slow reader drops events
// rather than blocking publishers; clients re-fetch on reconnect.
const sendBuffer = 64

// Event is one change pushed to subscribers.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
	At   time.Time   `json:"at"`
}

// Client represents a single WebSocket connection with user context.
type Client struct {
	UserID uuid.UUID
	Send   chan []byte
	hub    *Hub
	mu     sync.Mutex
	closed bool
}

func NewClient(userID uuid.UUID) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, sendBuffer)}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.hub != nil {
		c.hub.unregister(c)
	}
	close(c.Send)
}

// Reply sends an event to this connection alone.
func (c *Client) Reply(event string, payload interface{}) {
	data, err := json.Marshal(Event{Type: event, Data: payload, At: time.Now().UTC()})
	if err != nil {
		return
	}
	c.offer(data)
}

func (c *Client) offer(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

// Hub fans change events out to every connection of the owning user.
type Hub struct {
	mu     sync.RWMutex
	byUser map[uuid.UUID]map[*Client]struct{}
	now    func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		byUser: make(map[uuid.UUID]map[*Client]struct{}),
		now:    time.Now,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	if h.byUser[c.UserID] == nil {
		h.byUser[c.UserID] = make(map[*Client]struct{})
	}
	h.byUser[c.UserID][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.byUser[c.UserID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
}

// Publish sends an event to the user's connections only.
func (h *Hub) Publish(userID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(Event{Type: event, Data: payload, At: h.now().UTC()})
	if err != nil {
		return
	}
	h.mu.RLock()
	m := h.byUser[userID]
	clients := make([]*Client, 0, len(m))
	for c := range m {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		c.offer(data)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, m := range h.byUser {
		n += len(m)
	}
	return n
}
