package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mentiva/studyloop/internal/services"
	"github.com/mentiva/studyloop/pkg/models"
)

const (
	defaultRecommendationLimit = 6
	defaultFavoritesLimit      = 5
)

type RecommendationHandler struct {
	orchestrator *services.RecommendationOrchestrator
	logger       *logrus.Logger
}

func NewRecommendationHandler(orchestrator *services.RecommendationOrchestrator, logger *logrus.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

func (h *RecommendationHandler) Get(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user ID format",
			},
		})
		return
	}

	limit := defaultRecommendationLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_LIMIT",
					"message": "limit must be a positive integer",
				},
			})
			return
		}
		limit = parsed
	}

	refresh := c.Query("refresh") == "true"

	result, err := h.orchestrator.Recommend(c.Request.Context(), userID, limit, refresh)
	if err != nil {
		if errors.Is(err, services.ErrInvalidArgument) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_ARGUMENT",
					"message": err.Error(),
				},
			})
			return
		}

		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to generate recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "RECOMMENDATION_GENERATION_FAILED",
				"message": "Failed to generate recommendations",
			},
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *RecommendationHandler) GetFavorites(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user ID format",
			},
		})
		return
	}

	limit := defaultFavoritesLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	favorites, err := h.orchestrator.FavoriteGames(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to resolve favorite games")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "FAVORITES_LOOKUP_FAILED",
				"message": "Failed to resolve favorite games",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.FavoriteGamesResponse{
		UserID:    userID,
		Favorites: favorites,
	})
}
