package services

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/mentiva/studyloop/pkg/models"
)

const (
	// DefaultMinPlays is the repeat-play threshold above which a game counts
	// as a favorite.
	DefaultMinPlays = 2
	// DefaultFallbackCount bounds the favorite set when no game clears the
	// threshold.
	DefaultFallbackCount = 3
)

// TasteProfileBuilder selects the games that anchor a user's taste profile
// from their aggregated play history. Repeat plays are the implicit "liked
// it" signal; recency breaks ties among single plays.
type TasteProfileBuilder struct {
	logger *logrus.Logger
}

func NewTasteProfileBuilder(logger *logrus.Logger) *TasteProfileBuilder {
	return &TasteProfileBuilder{logger: logger}
}

// SelectFavorites returns the game ids that form the profile anchor. Every
// entry with PlayCount >= minPlays qualifies. If none do, the top
// fallbackCount entries by play count, then recency, then ascending game id
// are taken instead so that any non-empty history yields a non-empty result.
// An empty history returns ErrEmptyHistory, which the orchestrator treats as
// the cold-start signal.
func (tp *TasteProfileBuilder) SelectFavorites(history []models.PlayHistoryEntry, minPlays, fallbackCount int) ([]int64, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("select favorites: %w", ErrEmptyHistory)
	}
	if minPlays < 1 {
		minPlays = DefaultMinPlays
	}
	if fallbackCount < 1 {
		fallbackCount = DefaultFallbackCount
	}

	var favorites []int64
	for _, entry := range history {
		if entry.PlayCount >= minPlays {
			favorites = append(favorites, entry.GameID)
		}
	}

	if len(favorites) > 0 {
		tp.logger.WithFields(logrus.Fields{
			"favorites": len(favorites),
			"min_plays": minPlays,
		}).Debug("Favorites selected by play-count threshold")
		return favorites, nil
	}

	// Fallback: nobody cleared the threshold, rank what exists.
	ranked := make([]models.PlayHistoryEntry, len(history))
	copy(ranked, history)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].PlayCount != ranked[j].PlayCount {
			return ranked[i].PlayCount > ranked[j].PlayCount
		}
		ti, tj := ranked[i].LastPlayedAt, ranked[j].LastPlayedAt
		switch {
		case ti != nil && tj != nil && !ti.Equal(*tj):
			return ti.After(*tj)
		case ti != nil && tj == nil:
			return true
		case ti == nil && tj != nil:
			return false
		}
		return ranked[i].GameID < ranked[j].GameID
	})

	if len(ranked) > fallbackCount {
		ranked = ranked[:fallbackCount]
	}

	favorites = make([]int64, len(ranked))
	for i, entry := range ranked {
		favorites[i] = entry.GameID
	}

	tp.logger.WithField("favorites", len(favorites)).Debug("Favorites selected by fallback ranking")
	return favorites, nil
}
