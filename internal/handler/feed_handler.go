package handler

import (
	"net/http"
	"strconv"

	"realones/internal/domain"
	"realones/internal/middleware"
	"realones/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FeedHandler struct {
	feed *service.FeedService
	log  *zap.Logger
}

func NewFeedHandler(s *service.FeedService, log *zap.Logger) *FeedHandler {
	return &FeedHandler{feed: s, log: log}
}

// GET /me/feed?page=
func (h *FeedHandler) Feed(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	out, err := h.feed.Feed(c.Request.Context(), middleware.GetUserID(c), page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// POST /me/posts
func (h *FeedHandler) Create(c *gin.Context) {
	var req service.NewPost
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	p, err := h.feed.CreatePost(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// DELETE /me/posts/:id
func (h *FeedHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.feed.DeletePost(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type reactRequest struct {
	Type domain.ReactionType `json:"type" binding:"required"`
}

// PUT /me/posts/:id/reaction
func (h *FeedHandler) React(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req reactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type required"})
		return
	}
	r, err := h.feed.React(c.Request.Context(), middleware.GetUserID(c), id, req.Type)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// DELETE /me/posts/:id/reaction
func (h *FeedHandler) Unreact(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.feed.RemoveReaction(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
