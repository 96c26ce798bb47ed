package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mentiva/studyloop/internal/services"
	"github.com/mentiva/studyloop/internal/validation"
	"github.com/mentiva/studyloop/pkg/models"
)

type GameHandler struct {
	catalog   *services.GameCatalogService
	validator *validation.SchemaValidator
	logger    *logrus.Logger
}

func NewGameHandler(catalog *services.GameCatalogService, validator *validation.SchemaValidator, logger *logrus.Logger) *GameHandler {
	return &GameHandler{
		catalog:   catalog,
		validator: validator,
		logger:    logger,
	}
}

// Upsert creates a game or updates the existing row with the same normalized
// category and title.
func (h *GameHandler) Upsert(c *gin.Context) {
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

	if result := h.validator.ValidateGameUpsert(body); !result.Valid {
		c.JSON(http.StatusBadRequest, result.ToAPIError())
		return
	}

	var req models.GameUpsertRequest
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
				"code":    "INVALID_GAME",
				"message": err.Error(),
			},
		})
		return
	}

	game, err := h.catalog.UpsertGame(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_GAME",
					"message": err.Error(),
				},
			})
			return
		}

		h.logger.WithError(err).Error("Failed to upsert game")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "GAME_UPSERT_FAILED",
				"message": "Failed to store game",
			},
		})
		return
	}

	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) List(c *gin.Context) {
	games, err := h.catalog.ActiveGames(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list games")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "GAME_LIST_FAILED",
				"message": "Failed to list games",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"games": games, "count": len(games)})
}

func (h *GameHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_GAME_ID",
				"message": "Game ID must be an integer",
			},
		})
		return
	}

	game, err := h.catalog.Game(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "GAME_NOT_FOUND",
					"message": "Game not found",
				},
			})
			return
		}

		h.logger.WithError(err).WithField("game_id", id).Error("Failed to fetch game")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "GAME_LOOKUP_FAILED",
				"message": "Failed to fetch game",
			},
		})
		return
	}

	c.JSON(http.StatusOK, game)
}
