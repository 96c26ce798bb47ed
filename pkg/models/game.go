package models

import "time"

// Game is a recommendable catalog item. Snapshots are read-only during a
// scoring pass; the catalog service owns their lifecycle.
type Game struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title" validate:"required,min=1,max=255"`
	Category        string    `json:"category" db:"category" validate:"required"`
	Difficulty      string    `json:"difficulty" db:"difficulty"` // easy, medium, hard
	EstimatedTime   int       `json:"estimated_time" db:"estimated_time" validate:"min=1"`
	XPReward        int       `json:"xp_reward" db:"xp_reward" validate:"min=0"`
	Rating          float64   `json:"rating" db:"rating" validate:"min=0,max=5"`
	Likes           int       `json:"likes" db:"likes" validate:"min=0"`
	Active          bool      `json:"active" db:"active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

type GameUpsertRequest struct {
	Title         string  `json:"title" validate:"required,min=1,max=255"`
	Category      string  `json:"category" validate:"required,min=1"`
	Difficulty    string  `json:"difficulty" validate:"required"`
	EstimatedTime int     `json:"estimated_time" validate:"required,min=1"`
	XPReward      int     `json:"xp_reward" validate:"min=0"`
	Rating        float64 `json:"rating" validate:"min=0,max=5"`
	Likes         int     `json:"likes" validate:"min=0"`
	Active        *bool   `json:"active,omitempty"`
}
