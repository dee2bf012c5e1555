package handler

import (
	"errors"
	"net/http"

	"realones/internal/domain"
	"realones/pkg/facebook"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var badRequestErrors = []error{
	domain.ErrInvalidCreditType,
	domain.ErrSourceRequired,
	domain.ErrInvalidSource,
	domain.ErrInvalidStatus,
	domain.ErrInvalidTier,
	domain.ErrEmptyBatch,
	domain.ErrSelfInvite,
	domain.ErrSelfRelationship,
	domain.ErrInvalidImport,
	domain.ErrInvalidProfile,
	domain.ErrInvalidConversation,
	domain.ErrInvalidMessage,
	domain.ErrInvalidPost,
	domain.ErrInvalidReaction,
}

// statusFor maps a service error onto an HTTP status and client message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrAlreadyInCircle):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrCreditNotClaimable):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, facebook.ErrInvalidToken):
		return http.StatusBadRequest, "facebook access token invalid or expired"
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusServiceUnavailable, "failed, try again"
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, err.Error()
		}
	}
	return http.StatusInternalServerError, "internal error"
}

func respondError(c *gin.Context, log *zap.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
