package handler

import (
	"net/http"
	"strings"

	"realones/internal/middleware"
	"realones/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxAvatarBytes caps avatar uploads.
const maxAvatarBytes = 5 << 20

type MeHandler struct {
	profiles      *service.ProfileService
	streaks       *service.StreakService
	notifications *service.NotificationService
	log           *zap.Logger
}

func NewMeHandler(profiles *service.ProfileService, streaks *service.StreakService, notifications *service.NotificationService, log *zap.Logger) *MeHandler {
	return &MeHandler{profiles: profiles, streaks: streaks, notifications: notifications, log: log}
}

// GET /me/profile
func (h *MeHandler) GetProfile(c *gin.Context) {
	view, err := h.profiles.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateProfile edits name and bio. Completing the profile earns profile_complete.
// PATCH /me/profile
func (h *MeHandler) UpdateProfile(c *gin.Context) {
	var req service.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	view, err := h.profiles.Update(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /me/profile/avatar
func (h *MeHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	if file.Size > maxAvatarBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	if ct := file.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	view, err := h.profiles.UploadAvatar(c.Request.Context(), middleware.GetUserID(c), f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DELETE /me/profile/avatar
func (h *MeHandler) RemoveAvatar(c *gin.Context) {
	view, err := h.profiles.RemoveAvatar(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GET /me/streak
func (h *MeHandler) GetStreak(c *gin.Context) {
	st, err := h.streaks.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// RegisterPushToken saves the FCM token for push notifications.
// POST /me/push-token
func (h *MeHandler) RegisterPushToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}
	if err := h.notifications.RegisterToken(c.Request.Context(), middleware.GetUserID(c), req.Token); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
