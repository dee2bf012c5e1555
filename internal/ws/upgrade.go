package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"realones/config"
	"realones/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pingPeriod = 30 * time.Second
	pongWait   = 60 * time.Second
	writeWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Frame is a client message on the change feed, e.g.
// {"type":"message","conversation_id":"...","content":"hi"}.
type Frame struct {
	Type           string    `json:"type"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Content        string    `json:"content,omitempty"`
}

// FrameHandler acts on one client frame. A returned error goes back to that
// connection only, as an "error" event.
type FrameHandler func(ctx context.Context, userID uuid.UUID, f Frame) error

// UpgradeChanges subscribes the caller to their own change feed. The token comes
// from the query string since browsers cannot set headers on a websocket handshake.
// frames may be nil, in which case client frames are read and dropped.
func UpgradeChanges(cfg *config.JWTConfig, hub *Hub, frames FrameHandler, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}
		_, userID, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Debug("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		client := NewClient(userID)
		hub.Register(client)
		defer client.Close()

		go writePump(client, conn)
		readPump(c.Request.Context(), conn, client, frames, log)
	}
}

// writePump copies messages from client.Send to the connection.
func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads client frames until the client goes away. Malformed frames and
// unknown types are skipped.
func readPump(ctx context.Context, conn *websocket.Conn, client *Client, frames FrameHandler, log *zap.Logger) {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if frames == nil {
			continue
		}
		var f Frame
		if json.Unmarshal(raw, &f) != nil || f.Type == "" {
			continue
		}
		if err := frames(ctx, client.UserID, f); err != nil {
			log.Debug("client frame rejected", zap.String("type", f.Type), zap.Error(err))
			client.Reply("error", map[string]string{"frame": f.Type, "error": err.Error()})
		}
	}
}
