package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"realones/internal/circle"
	"realones/internal/domain"
	"realones/internal/middleware"
	"realones/internal/models"
	"realones/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxImportBytes caps an uploaded Facebook export.
const maxImportBytes = 10 << 20

type CircleHandler struct {
	circle *service.CircleService
	log    *zap.Logger
}

func NewCircleHandler(s *service.CircleService, log *zap.Logger) *CircleHandler {
	return &CircleHandler{circle: s, log: log}
}

// List returns the caller's circle grouped by status with overage and tier usage.
// GET /me/friends
func (h *CircleHandler) List(c *gin.Context) {
	snap, err := h.circle.Refresh(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GET /me/circle/upgrade-quote
func (h *CircleHandler) UpgradeQuote(c *gin.Context) {
	q, err := h.circle.UpgradeQuote(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

type addFriendRequest struct {
	FriendID string       `json:"friend_id" binding:"required"`
	Tier     *domain.Tier `json:"tier"`
}

// POST /me/friends
func (h *CircleHandler) Add(c *gin.Context) {
	var req addFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "friend_id required"})
		return
	}
	target, err := uuid.Parse(req.FriendID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid friend_id"})
		return
	}
	f, err := h.circle.AddFriend(c.Request.Context(), middleware.GetUserID(c), target, req.Tier)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

// POST /me/friends/:id/archive
func (h *CircleHandler) Archive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	f, err := h.circle.Archive(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// POST /me/friends/:id/activate
func (h *CircleHandler) Activate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	f, err := h.circle.Activate(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

type setTierRequest struct {
	Tier *domain.Tier `json:"tier"`
}

// SetTier assigns a tier; {"tier": null} clears it.
// PATCH /me/friends/:id/tier
func (h *CircleHandler) SetTier(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req setTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	f, err := h.circle.SetTier(c.Request.Context(), middleware.GetUserID(c), id, req.Tier)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// DELETE /me/friends/:id
func (h *CircleHandler) Remove(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.circle.Remove(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type bulkRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// POST /me/friends/bulk-archive
func (h *CircleHandler) BulkArchive(c *gin.Context) {
	h.bulk(c, h.circle.BulkArchive)
}

// POST /me/friends/bulk-activate
func (h *CircleHandler) BulkActivate(c *gin.Context) {
	h.bulk(c, h.circle.BulkActivate)
}

func (h *CircleHandler) bulk(c *gin.Context, apply func(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) ([]models.Friend, error)) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids required"})
		return
	}
	ids, err := parseIDs(req.IDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id in ids"})
		return
	}
	out, err := apply(c.Request.Context(), middleware.GetUserID(c), ids)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": out, "count": len(out)})
}

type importContactsRequest struct {
	Contacts []circle.ImportEntry `json:"contacts" binding:"required"`
}

// POST /me/friends/import/contacts
func (h *CircleHandler) ImportContacts(c *gin.Context) {
	var req importContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contacts required"})
		return
	}
	res, err := h.circle.ImportContacts(c.Request.Context(), middleware.GetUserID(c), req.Contacts)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ImportFacebook accepts the friends JSON from a Facebook data download, either as a
// multipart "file" field or as the raw request body.
// POST /me/friends/import/facebook
func (h *CircleHandler) ImportFacebook(c *gin.Context) {
	var body io.Reader
	if fh, err := c.FormFile("file"); err == nil {
		if fh.Size > maxImportBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
			return
		}
		defer f.Close()
		body = f
	} else {
		raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes+1))
		if err != nil || len(raw) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "export file required"})
			return
		}
		if len(raw) > maxImportBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		body = bytes.NewReader(raw)
	}
	res, err := h.circle.ImportFacebookExport(c.Request.Context(), middleware.GetUserID(c), body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type facebookGraphRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

// POST /me/friends/import/facebook-graph
func (h *CircleHandler) ImportFacebookGraph(c *gin.Context) {
	var req facebookGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "access_token required"})
		return
	}
	res, err := h.circle.ImportFacebookGraph(c.Request.Context(), middleware.GetUserID(c), req.AccessToken)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
