package services

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentiva/studyloop/pkg/models"
)

func testScheduler() *SpacedRepetitionScheduler {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewSpacedRepetitionScheduler(logger)
}

func newCard() *models.Flashcard {
	return &models.Flashcard{
		ID:         1,
		TopicID:    10,
		Front:      "7 x 8",
		Back:       "56",
		EaseFactor: DefaultEaseFactor,
	}
}

func TestSpacedRepetitionScheduler_PassingStreak(t *testing.T) {
	scheduler := testScheduler()
	card := newCard()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// First perfect recall: ease grows by 0.1, first interval is 6 days.
	require.NoError(t, scheduler.SubmitReview(card, 5, now))
	assert.Equal(t, 1, card.Repetitions)
	assert.Equal(t, 6, card.IntervalDays)
	assert.InDelta(t, 2.6, card.EaseFactor, 0.0001)
	require.NotNil(t, card.NextReviewDate)
	assert.Equal(t, now.AddDate(0, 0, 6), *card.NextReviewDate)

	// Second perfect recall: interval multiplies by the new ease.
	now = now.AddDate(0, 0, 6)
	require.NoError(t, scheduler.SubmitReview(card, 5, now))
	assert.Equal(t, 2, card.Repetitions)
	assert.InDelta(t, 2.7, card.EaseFactor, 0.0001)
	assert.Equal(t, 16, card.IntervalDays) // round(6 * 2.7)

	now = now.AddDate(0, 0, 16)
	require.NoError(t, scheduler.SubmitReview(card, 5, now))
	assert.Equal(t, 3, card.Repetitions)
	assert.InDelta(t, 2.8, card.EaseFactor, 0.0001)
	assert.Equal(t, 45, card.IntervalDays) // round(16 * 2.8)

	assert.Equal(t, 3, card.TotalReviews)
	assert.Equal(t, 3, card.CorrectReviews)
}

func TestSpacedRepetitionScheduler_QualityThreeKeepsEaseStable(t *testing.T) {
	scheduler := testScheduler()
	card := newCard()
	now := time.Now()

	// Quality 4 is exactly neutral for ease.
	require.NoError(t, scheduler.SubmitReview(card, 4, now))
	assert.InDelta(t, 2.5, card.EaseFactor, 0.0001)
	assert.Equal(t, 1, card.Repetitions)
	assert.Equal(t, 6, card.IntervalDays)
}

func TestSpacedRepetitionScheduler_FailedReviewResets(t *testing.T) {
	scheduler := testScheduler()
	card := newCard()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, scheduler.SubmitReview(card, 5, now))
	require.NoError(t, scheduler.SubmitReview(card, 5, now))
	easeBefore := card.EaseFactor
	require.Greater(t, card.IntervalDays, 1)

	// Failure resets the streak but leaves ease untouched.
	require.NoError(t, scheduler.SubmitReview(card, 1, now))
	assert.Equal(t, 0, card.Repetitions)
	assert.Equal(t, 1, card.IntervalDays)
	assert.InDelta(t, easeBefore, card.EaseFactor, 0.0001)
	require.NotNil(t, card.NextReviewDate)
	assert.Equal(t, now.AddDate(0, 0, 1), *card.NextReviewDate)

	assert.Equal(t, 3, card.TotalReviews)
	assert.Equal(t, 2, card.CorrectReviews)
}

func TestSpacedRepetitionScheduler_EaseFactorFloor(t *testing.T) {
	scheduler := testScheduler()
	card := newCard()
	now := time.Now()

	// Quality 3 shrinks ease by 0.14 per review; the floor holds at 1.3.
	for i := 0; i < 20; i++ {
		require.NoError(t, scheduler.SubmitReview(card, 3, now))
	}

	assert.InDelta(t, MinEaseFactor, card.EaseFactor, 0.0001)
}

func TestSpacedRepetitionScheduler_QualityBounds(t *testing.T) {
	scheduler := testScheduler()
	now := time.Now()

	tests := []struct {
		name    string
		quality int
		wantErr bool
	}{
		{name: "below range", quality: -1, wantErr: true},
		{name: "above range", quality: 6, wantErr: true},
		{name: "lowest valid", quality: 0, wantErr: false},
		{name: "highest valid", quality: 5, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := newCard()
			err := scheduler.SubmitReview(card, tt.quality, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				assert.Equal(t, 0, card.TotalReviews)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 1, card.TotalReviews)
			}
		})
	}
}

func TestSpacedRepetitionScheduler_IsDue(t *testing.T) {
	scheduler := testScheduler()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 1)

	tests := []struct {
		name string
		next *time.Time
		want bool
	}{
		{name: "never reviewed", next: nil, want: true},
		{name: "past due date", next: &past, want: true},
		{name: "due exactly now", next: &now, want: true},
		{name: "future due date", next: &future, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := newCard()
			card.NextReviewDate = tt.next
			assert.Equal(t, tt.want, scheduler.IsDue(card, now))
		})
	}
}

func TestSpacedRepetitionScheduler_Accuracy(t *testing.T) {
	scheduler := testScheduler()

	card := newCard()
	assert.Equal(t, 0.0, scheduler.Accuracy(card))

	card.TotalReviews = 4
	card.CorrectReviews = 2
	assert.InDelta(t, 50.0, scheduler.Accuracy(card), 0.0001)

	card.CorrectReviews = 4
	assert.InDelta(t, 100.0, scheduler.Accuracy(card), 0.0001)
}

func TestSpacedRepetitionScheduler_RecoveryAfterFailure(t *testing.T) {
	scheduler := testScheduler()
	card := newCard()
	now := time.Now()

	require.NoError(t, scheduler.SubmitReview(card, 5, now))
	require.NoError(t, scheduler.SubmitReview(card, 0, now))

	// The pass after a failure restarts the interval ladder at 6 days.
	require.NoError(t, scheduler.SubmitReview(card, 4, now))
	assert.Equal(t, 1, card.Repetitions)
	assert.Equal(t, 6, card.IntervalDays)
}
