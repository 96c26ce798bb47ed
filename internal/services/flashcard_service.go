package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/mentiva/studyloop/pkg/models"
)

// TransactionalQuerier extends DatabaseQuerier with transactions for the
// row-locked review update.
type TransactionalQuerier interface {
	DatabaseQuerier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ReviewEventPublisher emits review-submitted events after the state change
// commits. The message bus implements it; tests pass nil.
type ReviewEventPublisher interface {
	PublishReviewSubmitted(event models.ReviewSubmittedEvent) error
}

// FlashcardService owns flashcard persistence and applies the scheduler
// inside a per-card transaction. Two concurrent reviews of the same card
// serialize on the row lock; reviews of different cards are independent.
type FlashcardService struct {
	db        TransactionalQuerier
	scheduler *SpacedRepetitionScheduler
	publisher ReviewEventPublisher
	logger    *logrus.Logger
}

func NewFlashcardService(
	db TransactionalQuerier,
	scheduler *SpacedRepetitionScheduler,
	publisher ReviewEventPublisher,
	logger *logrus.Logger,
) *FlashcardService {
	return &FlashcardService{
		db:        db,
		scheduler: scheduler,
		publisher: publisher,
		logger:    logger,
	}
}

const flashcardColumns = `id, topic_id, front, back, COALESCE(hint, ''), order_index,
		ease_factor, interval_days, repetitions, next_review_date, last_reviewed_at,
		total_reviews, correct_reviews`

// SubmitReview loads the card under a row lock, applies the SM-2 update and
// persists the new scheduling state atomically.
func (s *FlashcardService) SubmitReview(ctx context.Context, flashcardID int64, quality int) (*models.Flashcard, error) {
	if quality < 0 || quality > MaxQuality {
		return nil, fmt.Errorf("submit review: %w: quality %d outside [0,%d]", ErrInvalidArgument, quality, MaxQuality)
	}

	now := time.Now().UTC()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin review transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `SELECT ` + flashcardColumns + ` FROM flashcards WHERE id = $1 FOR UPDATE`

	var card models.Flashcard
	err = tx.QueryRow(ctx, query, flashcardID).Scan(&card.ID, &card.TopicID, &card.Front,
		&card.Back, &card.Hint, &card.OrderIndex, &card.EaseFactor, &card.IntervalDays,
		&card.Repetitions, &card.NextReviewDate, &card.LastReviewedAt,
		&card.TotalReviews, &card.CorrectReviews)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("flashcard %d: %w", flashcardID, ErrNotFound)
		}
		return nil, fmt.Errorf("load flashcard: %w", err)
	}

	if err := s.scheduler.SubmitReview(&card, quality, now); err != nil {
		return nil, err
	}

	update := `
		UPDATE flashcards SET
			ease_factor = $1,
			interval_days = $2,
			repetitions = $3,
			next_review_date = $4,
			last_reviewed_at = $5,
			total_reviews = $6,
			correct_reviews = $7
		WHERE id = $8`

	if _, err := tx.Exec(ctx, update, card.EaseFactor, card.IntervalDays, card.Repetitions,
		card.NextReviewDate, card.LastReviewedAt, card.TotalReviews, card.CorrectReviews,
		card.ID); err != nil {
		return nil, fmt.Errorf("persist review: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit review: %w", err)
	}

	reviewsProcessedTotal.WithLabelValues(reviewOutcome(quality)).Inc()

	if s.publisher != nil {
		event := models.ReviewSubmittedEvent{
			FlashcardID:  card.ID,
			TopicID:      card.TopicID,
			Quality:      quality,
			Passed:       quality >= PassingQuality,
			IntervalDays: card.IntervalDays,
			ReviewedAt:   now,
		}
		if err := s.publisher.PublishReviewSubmitted(event); err != nil {
			// The review itself is committed; event delivery is best effort.
			s.logger.WithError(err).WithField("flashcard_id", card.ID).Warn("Failed to publish review event")
		}
	}

	return &card, nil
}

// DueFlashcards returns a topic's cards whose next review is unset or has
// passed, in study order.
func (s *FlashcardService) DueFlashcards(ctx context.Context, topicID int64, now time.Time) ([]models.Flashcard, error) {
	query := `SELECT ` + flashcardColumns + `
		FROM flashcards
		WHERE topic_id = $1 AND (next_review_date IS NULL OR next_review_date <= $2)
		ORDER BY order_index, id`

	rows, err := s.db.Query(ctx, query, topicID, now)
	if err != nil {
		return nil, fmt.Errorf("query due flashcards: %w", err)
	}
	defer rows.Close()

	var cards []models.Flashcard
	for rows.Next() {
		var card models.Flashcard
		if err := rows.Scan(&card.ID, &card.TopicID, &card.Front, &card.Back, &card.Hint,
			&card.OrderIndex, &card.EaseFactor, &card.IntervalDays, &card.Repetitions,
			&card.NextReviewDate, &card.LastReviewedAt, &card.TotalReviews,
			&card.CorrectReviews); err != nil {
			return nil, fmt.Errorf("scan flashcard row: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flashcard rows: %w", err)
	}

	return cards, nil
}

// Accuracy exposes the scheduler's lifetime accuracy for API responses.
func (s *FlashcardService) Accuracy(card *models.Flashcard) float64 {
	return s.scheduler.Accuracy(card)
}

func reviewOutcome(quality int) string {
	if quality >= PassingQuality {
		return "pass"
	}
	return "fail"
}
