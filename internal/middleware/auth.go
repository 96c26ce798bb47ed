package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mentiva/studyloop/internal/services"
)

func Auth(authService *services.AuthService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errorEnvelope("MISSING_AUTHORIZATION", "Authorization header is required"))
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errorEnvelope("INVALID_AUTHORIZATION_FORMAT", "Authorization header must be in format 'Bearer <token>'"))
			return
		}

		claims, err := authService.ValidateToken(tokenParts[1])
		if err != nil {
			logger.WithError(err).Warn("Invalid JWT token")
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errorEnvelope("INVALID_TOKEN", "Invalid or expired token"))
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_tier", claims.UserTier)
		c.Next()
	}
}

// GetUserFromContext returns the authenticated principal stored by Auth.
// ok is false when auth has not run on this request. A missing tier reads
// as "free".
func GetUserFromContext(c *gin.Context) (uuid.UUID, string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, "", false
	}
	userID, isUUID := v.(uuid.UUID)
	if !isUUID {
		return uuid.Nil, "", false
	}

	userTier := "free"
	if t, exists := c.Get("user_tier"); exists {
		if s, isString := t.(string); isString && s != "" {
			userTier = s
		}
	}
	return userID, userTier, true
}
