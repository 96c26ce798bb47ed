package models

import (
	"time"

	"github.com/google/uuid"
)

type Recommendation struct {
	GameID      int64   `json:"game_id"`
	Score       float64 `json:"score"`
	Strategy    string  `json:"strategy"` // content_similarity, popularity
	Explanation string  `json:"explanation,omitempty"`
	Position    int     `json:"position"`
	Game        *Game   `json:"game,omitempty"`
}

type RecommendationRequest struct {
	UserID  uuid.UUID `json:"user_id" validate:"required"`
	Limit   int       `json:"limit" validate:"min=1,max=100"`
	Explain bool      `json:"explain"`
}

type RecommendationResponse struct {
	UserID          uuid.UUID        `json:"user_id"`
	Recommendations []Recommendation `json:"recommendations"`
	ColdStart       bool             `json:"cold_start"`
	GeneratedAt     time.Time        `json:"generated_at"`
	CacheHit        bool             `json:"cache_hit"`
}

type FavoriteGamesResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Favorites []Game    `json:"favorites"`
}
