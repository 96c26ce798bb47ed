package models

import "time"

// Flashcard carries static content plus the SM-2 scheduling state mutated by
// review submissions. Lifetime counters only ever grow; repetitions and
// interval reset on a failed review.
type Flashcard struct {
	ID         int64  `json:"id" db:"id"`
	TopicID    int64  `json:"topic_id" db:"topic_id"`
	Front      string `json:"front" db:"front"`
	Back       string `json:"back" db:"back"`
	Hint       string `json:"hint,omitempty" db:"hint"`
	OrderIndex int    `json:"order_index" db:"order_index"`

	EaseFactor     float64    `json:"ease_factor" db:"ease_factor"`
	IntervalDays   int        `json:"interval_days" db:"interval_days"`
	Repetitions    int        `json:"repetitions" db:"repetitions"`
	NextReviewDate *time.Time `json:"next_review_date,omitempty" db:"next_review_date"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty" db:"last_reviewed_at"`

	TotalReviews   int `json:"total_reviews" db:"total_reviews"`
	CorrectReviews int `json:"correct_reviews" db:"correct_reviews"`
}

type ReviewRequest struct {
	Quality int `json:"quality" validate:"min=0,max=5"`
}

type ReviewResponse struct {
	FlashcardID    int64     `json:"flashcard_id"`
	Quality        int       `json:"quality"`
	EaseFactor     float64   `json:"ease_factor"`
	IntervalDays   int       `json:"interval_days"`
	Repetitions    int       `json:"repetitions"`
	NextReviewDate time.Time `json:"next_review_date"`
	Accuracy       float64   `json:"accuracy"`
}

// ReviewSubmittedEvent is published after a review transaction commits.
type ReviewSubmittedEvent struct {
	FlashcardID  int64     `json:"flashcard_id"`
	TopicID      int64     `json:"topic_id"`
	Quality      int       `json:"quality"`
	Passed       bool      `json:"passed"`
	IntervalDays int       `json:"interval_days"`
	ReviewedAt   time.Time `json:"reviewed_at"`
}
