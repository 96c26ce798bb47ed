package services

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mentiva/studyloop/pkg/models"
)

const (
	// MinEaseFactor is the SM-2 lower bound on a card's ease.
	MinEaseFactor = 1.3
	// DefaultEaseFactor is the ease assigned to freshly created cards.
	DefaultEaseFactor = 2.5

	// PassingQuality is the lowest quality rating that counts as a
	// successful recall.
	PassingQuality = 3
	MaxQuality     = 5
)

// SpacedRepetitionScheduler implements the SM-2 review algorithm. Each call
// updates one card's scheduling state; callers own atomicity for concurrent
// reviews of the same card (the flashcard store serializes them with a row
// lock).
type SpacedRepetitionScheduler struct {
	logger *logrus.Logger
}

func NewSpacedRepetitionScheduler(logger *logrus.Logger) *SpacedRepetitionScheduler {
	return &SpacedRepetitionScheduler{logger: logger}
}

// SubmitReview applies a quality rating in [0,5] to the card's scheduling
// state. Quality >= 3 is a pass: repetitions and ease grow and the interval
// expands. Below 3 is a failure: repetitions and interval reset while ease
// and the lifetime counters are left alone.
func (s *SpacedRepetitionScheduler) SubmitReview(card *models.Flashcard, quality int, now time.Time) error {
	if quality < 0 || quality > MaxQuality {
		return fmt.Errorf("submit review: %w: quality %d outside [0,%d]", ErrInvalidArgument, quality, MaxQuality)
	}

	card.TotalReviews++
	card.LastReviewedAt = &now

	if quality >= PassingQuality {
		card.CorrectReviews++
		card.Repetitions++
		card.EaseFactor = math.Max(MinEaseFactor,
			card.EaseFactor+(0.1-float64(MaxQuality-quality)*(0.08+float64(MaxQuality-quality)*0.02)))
	} else {
		card.Repetitions = 0
		card.IntervalDays = 1
	}

	// The repetitions == 0 case only fires after a failed review reset;
	// every pass leaves repetitions >= 1.
	switch {
	case card.Repetitions == 0:
		card.IntervalDays = 1
	case card.Repetitions == 1:
		card.IntervalDays = 6
	default:
		card.IntervalDays = int(math.Round(float64(card.IntervalDays) * card.EaseFactor))
	}

	next := now.AddDate(0, 0, card.IntervalDays)
	card.NextReviewDate = &next

	s.logger.WithFields(logrus.Fields{
		"flashcard_id":  card.ID,
		"quality":       quality,
		"repetitions":   card.Repetitions,
		"interval_days": card.IntervalDays,
		"ease_factor":   card.EaseFactor,
	}).Debug("Review applied")

	return nil
}

// IsDue reports whether the card should be shown. Never-reviewed cards are
// always due.
func (s *SpacedRepetitionScheduler) IsDue(card *models.Flashcard, now time.Time) bool {
	if card.NextReviewDate == nil {
		return true
	}
	return !now.Before(*card.NextReviewDate)
}

// Accuracy is the card's lifetime correct-review percentage, 0-100.
func (s *SpacedRepetitionScheduler) Accuracy(card *models.Flashcard) float64 {
	if card.TotalReviews == 0 {
		return 0.0
	}
	return float64(card.CorrectReviews) / float64(card.TotalReviews) * 100
}
