package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mentiva/studyloop/internal/services"
)

func RateLimit(rateLimitService *services.RateLimitService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, userTier, ok := GetUserFromContext(c)
		if !ok {
			// Auth middleware should have run first.
			logger.Error("Rate limit middleware called without user context")
			c.Next()
			return
		}

		allowed, info, err := rateLimitService.IsAllowed(userID.String(), userTier)
		if err != nil {
			logger.WithError(err).Error("Failed to check rate limit")
			// Fail open so a Redis outage does not block traffic.
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime, 10))

		if !allowed {
			logger.WithFields(logrus.Fields{
				"user_id":   userID,
				"user_tier": userTier,
				"limit":     info.Limit,
			}).Warn("Rate limit exceeded")

			body := errorEnvelope("RATE_LIMIT_EXCEEDED", "Rate limit exceeded. Please try again later.")
			body["rate_limit"] = info
			c.AbortWithStatusJSON(http.StatusTooManyRequests, body)
			return
		}

		c.Next()
	}
}
