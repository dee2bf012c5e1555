package handler

import (
	"net/http"

	"realones/internal/domain"
	"realones/internal/middleware"
	"realones/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PioneerHandler struct {
	pioneer *service.PioneerService
	session *service.SessionService
	invites *service.InviteService
	log     *zap.Logger
}

func NewPioneerHandler(p *service.PioneerService, s *service.SessionService, i *service.InviteService, log *zap.Logger) *PioneerHandler {
	return &PioneerHandler{pioneer: p, session: s, invites: i, log: log}
}

// Session tells the client whether to show the Pioneer or the main experience.
// GET /me/session
func (h *PioneerHandler) Session(c *gin.Context) {
	view, err := h.session.Experience(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GET /me/pioneer
func (h *PioneerHandler) Get(c *gin.Context) {
	snap, err := h.pioneer.Refresh(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GET /me/pioneer/credits/check?credit_type=&source_id=
func (h *PioneerHandler) CheckCredit(c *gin.Context) {
	t := domain.CreditType(c.Query("credit_type"))
	earned, err := h.pioneer.HasEarnedCredit(c.Request.Context(), middleware.GetUserID(c), t, c.Query("source_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"credit_type": t, "earned": earned})
}

type earnCreditRequest struct {
	CreditType string `json:"credit_type" binding:"required"`
	SourceID   string `json:"source_id"`
}

// EarnCredit claims an import credit for the caller. Claiming twice is not an error.
// Referral and profile credits cannot be claimed here.
// POST /me/pioneer/credits
func (h *PioneerHandler) EarnCredit(c *gin.Context) {
	var req earnCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "credit_type required"})
		return
	}
	userID := middleware.GetUserID(c)
	out, err := h.pioneer.ClaimCredit(c.Request.Context(), userID, domain.CreditType(req.CreditType), req.SourceID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	status := http.StatusOK
	if out.Granted {
		status = http.StatusCreated
	}
	c.JSON(status, out)
}

// AcceptInvite credits the inviter for the caller having joined through their link.
// POST /invites/:inviter_id/accept
func (h *PioneerHandler) AcceptInvite(c *gin.Context) {
	inviterID, ok := parseIDParam(c, "inviter_id")
	if !ok {
		return
	}
	res, err := h.invites.Accept(c.Request.Context(), inviterID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
