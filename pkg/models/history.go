package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayHistoryEntry is an aggregate over a user's study sessions for one game.
type PlayHistoryEntry struct {
	GameID       int64      `json:"game_id" db:"game_id"`
	PlayCount    int        `json:"play_count" db:"play_count"`
	LastPlayedAt *time.Time `json:"last_played_at,omitempty" db:"last_played_at"`
}

// SessionCompletedEvent is consumed from the session-events topic and folded
// into the play_history aggregates.
type SessionCompletedEvent struct {
	SessionID   uuid.UUID `json:"session_id"`
	UserID      uuid.UUID `json:"user_id"`
	GameID      int64     `json:"game_id"`
	CompletedAt time.Time `json:"completed_at"`
}
