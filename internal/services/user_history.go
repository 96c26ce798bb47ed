package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mentiva/studyloop/pkg/models"
)

// PlayHistoryService maintains per-user play aggregates. Session-completed
// events from the message bus fold into the play_history table; the
// recommender reads the aggregates back as clean in-memory snapshots.
type PlayHistoryService struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewPlayHistoryService(db DatabaseQuerier, logger *logrus.Logger) *PlayHistoryService {
	return &PlayHistoryService{db: db, logger: logger}
}

// UserHistory returns the user's aggregated play counts, most-played first
// with recency as tie-break. The ordering matches the favorite-selection
// fallback so the two stay consistent.
func (s *PlayHistoryService) UserHistory(ctx context.Context, userID uuid.UUID) ([]models.PlayHistoryEntry, error) {
	query := `
		SELECT game_id, play_count, last_played_at
		FROM play_history
		WHERE user_id = $1
		ORDER BY play_count DESC, last_played_at DESC NULLS LAST, game_id`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query play history: %w", err)
	}
	defer rows.Close()

	var history []models.PlayHistoryEntry
	for rows.Next() {
		var entry models.PlayHistoryEntry
		if err := rows.Scan(&entry.GameID, &entry.PlayCount, &entry.LastPlayedAt); err != nil {
			return nil, fmt.Errorf("scan play history row: %w", err)
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate play history rows: %w", err)
	}

	return history, nil
}

// RecordCompletion folds one finished session into the aggregates. Replayed
// events with an older timestamp still bump the play count but never move
// last_played_at backwards.
func (s *PlayHistoryService) RecordCompletion(ctx context.Context, event models.SessionCompletedEvent) error {
	query := `
		INSERT INTO play_history (user_id, game_id, play_count, last_played_at)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (user_id, game_id) DO UPDATE SET
			play_count = play_history.play_count + 1,
			last_played_at = GREATEST(play_history.last_played_at, EXCLUDED.last_played_at)`

	if _, err := s.db.Exec(ctx, query, event.UserID, event.GameID, event.CompletedAt); err != nil {
		return fmt.Errorf("record session completion: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": event.UserID,
		"game_id": event.GameID,
	}).Debug("Play history updated")

	return nil
}
