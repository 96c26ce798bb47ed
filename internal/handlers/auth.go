package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mentiva/studyloop/internal/services"
	"github.com/mentiva/studyloop/internal/validation"
	"github.com/mentiva/studyloop/pkg/models"
)

type AuthHandler struct {
	auth      *services.AuthService
	validator *validation.SchemaValidator
	logger    *logrus.Logger
}

func NewAuthHandler(auth *services.AuthService, validator *validation.SchemaValidator, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		validator: validator,
		logger:    logger,
	}
}

// Token mints a session JWT for the given user.
func (h *AuthHandler) Token(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST_BODY",
				"message": "Failed to read request body",
			},
		})
		return
	}

	if result := h.validator.ValidateAuthRequest(body); !result.Valid {
		c.JSON(http.StatusBadRequest, result.ToAPIError())
		return
	}

	var req models.AuthRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST_BODY",
				"message": "Invalid request body format",
			},
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_CREDENTIALS_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user ID format",
			},
		})
		return
	}

	userTier := req.UserTier
	if userTier == "" {
		userTier = "free"
	}

	token, expiresAt, err := h.auth.GenerateToken(userID, userTier)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "TOKEN_GENERATION_FAILED",
				"message": "Failed to generate token",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserTier:  userTier,
	})
}
