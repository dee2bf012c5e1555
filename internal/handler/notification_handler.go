package handler

import (
	"net/http"
	"strconv"

	"realones/internal/middleware"
	"realones/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	notifications *service.NotificationService
	log           *zap.Logger
}

func NewNotificationHandler(s *service.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: s, log: log}
}

func (h *NotificationHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.notifications.List(c.Request.Context(), middleware.GetUserID(c), limit, offset)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), middleware.GetUserID(c), uint(id)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
