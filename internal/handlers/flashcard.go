package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mentiva/studyloop/internal/services"
	"github.com/mentiva/studyloop/internal/validation"
	"github.com/mentiva/studyloop/pkg/models"
)

type FlashcardHandler struct {
	flashcards *services.FlashcardService
	validator  *validation.SchemaValidator
	logger     *logrus.Logger
}

func NewFlashcardHandler(flashcards *services.FlashcardService, validator *validation.SchemaValidator, logger *logrus.Logger) *FlashcardHandler {
	return &FlashcardHandler{
		flashcards: flashcards,
		validator:  validator,
		logger:     logger,
	}
}

// SubmitReview grades a flashcard and returns the updated scheduling state.
func (h *FlashcardHandler) SubmitReview(c *gin.Context) {
	flashcardID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_FLASHCARD_ID",
				"message": "Flashcard ID must be an integer",
			},
		})
		return
	}

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

	if result := h.validator.ValidateReview(body); !result.Valid {
		c.JSON(http.StatusBadRequest, result.ToAPIError())
		return
	}

	var req models.ReviewRequest
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
				"code":    "INVALID_QUALITY",
				"message": err.Error(),
			},
		})
		return
	}

	card, err := h.flashcards.SubmitReview(c.Request.Context(), flashcardID, req.Quality)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidArgument):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_QUALITY",
					"message": err.Error(),
				},
			})
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": gin.H{
					"code":    "FLASHCARD_NOT_FOUND",
					"message": "Flashcard not found",
				},
			})
		default:
			h.logger.WithError(err).WithField("flashcard_id", flashcardID).Error("Failed to submit review")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "REVIEW_SUBMISSION_FAILED",
					"message": "Failed to submit review",
				},
			})
		}
		return
	}

	response := models.ReviewResponse{
		FlashcardID:  card.ID,
		Quality:      req.Quality,
		EaseFactor:   card.EaseFactor,
		IntervalDays: card.IntervalDays,
		Repetitions:  card.Repetitions,
		Accuracy:     h.flashcards.Accuracy(card),
	}
	if card.NextReviewDate != nil {
		response.NextReviewDate = *card.NextReviewDate
	}

	c.JSON(http.StatusOK, response)
}

// DueFlashcards lists a topic's cards due at the given instant. The optional
// ?now= parameter (RFC3339) supports deterministic clients and tests.
func (h *FlashcardHandler) DueFlashcards(c *gin.Context) {
	topicID, err := strconv.ParseInt(c.Param("topicId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_TOPIC_ID",
				"message": "Topic ID must be an integer",
			},
		})
		return
	}

	now := time.Now().UTC()
	if nowStr := c.Query("now"); nowStr != "" {
		parsed, err := time.Parse(time.RFC3339, nowStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_TIMESTAMP",
					"message": "now must be an RFC3339 timestamp",
				},
			})
			return
		}
		now = parsed
	}

	cards, err := h.flashcards.DueFlashcards(c.Request.Context(), topicID, now)
	if err != nil {
		h.logger.WithError(err).WithField("topic_id", topicID).Error("Failed to list due flashcards")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "DUE_FLASHCARDS_FAILED",
				"message": "Failed to list due flashcards",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"flashcards": cards, "count": len(cards)})
}
