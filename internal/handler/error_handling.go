package handler

import (
	"errors"
	"net/http"

	"weave-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleServiceError maps service errors to HTTP responses. Forbidden is
// collapsed into 404 so that story existence cannot be probed.
func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrUnknownChoice):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, models.ErrInsufficientCredits):
		statusCode = http.StatusBadRequest
		message = "Insufficient credits"
	case errors.Is(err, models.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		message = "Unauthorized"
	case errors.Is(err, models.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		message = "Invalid email or password"
	case errors.Is(err, models.ErrUserAlreadyExists):
		statusCode = http.StatusConflict
		message = "Email already registered"
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrNoChapter):
		statusCode = http.StatusNotFound
		message = "Story not found or access denied"
	case errors.Is(err, models.ErrConflict):
		statusCode = http.StatusConflict
		message = "Story was updated concurrently, please retry"
	default:
		zap.L().Error("Unhandled internal error", zap.Error(err))
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{Error: message})
}
