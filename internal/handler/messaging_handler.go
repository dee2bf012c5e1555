package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"realones/internal/domain"
	"realones/internal/middleware"
	"realones/internal/service"
	"realones/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MessagingHandler struct {
	messaging *service.MessagingService
	log       *zap.Logger
}

func NewMessagingHandler(s *service.MessagingService, log *zap.Logger) *MessagingHandler {
	return &MessagingHandler{messaging: s, log: log}
}

// GET /me/conversations
func (h *MessagingHandler) List(c *gin.Context) {
	list, err := h.messaging.ListConversations(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": list})
}

type createConversationRequest struct {
	Type      domain.ConversationType `json:"type" binding:"required"`
	MemberIDs []string                `json:"member_ids" binding:"required"`
	Name      *string                 `json:"name"`
}

// Create opens a conversation. Re-opening an existing DM answers 200 with it.
// POST /me/conversations
func (h *MessagingHandler) Create(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type and member_ids required"})
		return
	}
	members, err := parseIDs(req.MemberIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member_ids"})
		return
	}
	in := service.NewConversation{Type: req.Type, MemberIDs: members, Name: req.Name}
	v, created, err := h.messaging.CreateConversation(c.Request.Context(), middleware.GetUserID(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, v)
}

// Messages returns a page oldest first and marks the conversation read.
// GET /me/conversations/:id/messages?limit=&offset=
func (h *MessagingHandler) Messages(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.messaging.Messages(c.Request.Context(), middleware.GetUserID(c), id, limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": list})
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// POST /me/conversations/:id/messages
func (h *MessagingHandler) Send(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content required"})
		return
	}
	m, err := h.messaging.SendMessage(c.Request.Context(), middleware.GetUserID(c), id, req.Content)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// POST /me/conversations/:id/read
func (h *MessagingHandler) MarkRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.messaging.MarkRead(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Frames handles chat frames sent over the change feed: "message" sends, "typing"
// relays an indicator and "read" marks the conversation read.
func (h *MessagingHandler) Frames(ctx context.Context, userID uuid.UUID, f ws.Frame) error {
	var err error
	switch f.Type {
	case "message":
		_, err = h.messaging.SendMessage(ctx, userID, f.ConversationID, f.Content)
	case "typing":
		err = h.messaging.Typing(ctx, userID, f.ConversationID)
	case "read":
		err = h.messaging.MarkRead(ctx, userID, f.ConversationID)
	default:
		return nil
	}
	if err == nil {
		return nil
	}
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("chat frame failed", zap.String("type", f.Type), zap.Error(err))
	}
	return errors.New(msg)
}
