package middleware

import (
	"net/http"
	"strings"

	"weave-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserIDKey is the gin context key under which the authenticated user id is
// stored.
const UserIDKey = "user_id"

// TokenVerifier validates a bearer token and returns the user id it carries.
type TokenVerifier func(tokenString string) (uuid.UUID, error)

// Auth returns a gin middleware that requires a valid bearer session token.
func Auth(verify TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			logger.Warn("Invalid Authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
			return
		}

		userID, err := verify(parts[1])
		if err != nil {
			logger.Warn("Session token verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserIDFromContext extracts the authenticated user id set by Auth.
func UserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}
