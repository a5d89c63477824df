package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prospect-crm/internal/service"
)

// respondError traduce errores de servicio a respuestas HTTP.
func respondError(c *gin.Context, logger *zap.Logger, action string, err error) {
	var (
		validationErr *service.ValidationError
		generationErr *service.GenerationFailure
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "field": validationErr.Field})
	case errors.As(err, &generationErr):
		logger.Warn(action+" generation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "generation failed", "reason": generationErr.Reason})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	case errors.Is(err, service.ErrProspectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "prospect not found"})
	case errors.Is(err, service.ErrProspectExists), errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "timed out"})
	default:
		logger.Error(action+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not " + action})
	}
}

func badRequest(c *gin.Context, logger *zap.Logger, action string, err error) {
	logger.Warn("invalid "+action+" request", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}
