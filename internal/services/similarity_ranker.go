package services

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/mentiva/studyloop/pkg/models"
)

const (
	StrategyContentSimilarity = "content_similarity"
	StrategyPopularity        = "popularity"

	popularityExplanation = "Popular item"
)

// SimilarityRanker scores every game in a pool against the centroid of the
// user's favorite rows and returns a ranked, filtered candidate list. It is
// a pure function of its inputs; the matrix row order must match the game
// slice the matrix was vectorized from.
type SimilarityRanker struct {
	logger *logrus.Logger
}

func NewSimilarityRanker(logger *logrus.Logger) *SimilarityRanker {
	return &SimilarityRanker{logger: logger}
}

// Rank orders the candidate pool by cosine similarity to the favorites'
// centroid. With no favorites, or a pool too small to have peer data, it
// falls back to the popularity ordering with score 0.0 for every entry.
// Games in excludeIDs are removed before truncation, so exclusion can shrink
// the result below limit without padding. Ordering is score desc, rating
// desc, game id asc.
func (sr *SimilarityRanker) Rank(
	matrix *mat.Dense,
	games []models.Game,
	favoriteIDs []int64,
	excludeIDs []int64,
	limit int,
) ([]models.Recommendation, error) {
	if limit < 1 {
		return nil, fmt.Errorf("rank: %w: limit must be >= 1, got %d", ErrInvalidArgument, limit)
	}

	excluded := make(map[int64]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	if len(favoriteIDs) == 0 || len(games) < 2 {
		return sr.rankByPopularity(games, excluded, limit), nil
	}

	rows, cols := matrix.Dims()
	if rows != len(games) {
		return nil, fmt.Errorf("rank: %w: matrix has %d rows for %d games", ErrInvalidInput, rows, len(games))
	}

	rowIndex := make(map[int64]int, len(games))
	for i, g := range games {
		rowIndex[g.ID] = i
	}

	// Centroid of the favorite rows represents the user's aggregate taste.
	centroid := make([]float64, cols)
	matched := 0
	for _, id := range favoriteIDs {
		i, ok := rowIndex[id]
		if !ok {
			continue
		}
		floats.Add(centroid, matrix.RawRowView(i))
		matched++
	}
	if matched == 0 {
		// Favorites no longer in the active pool, e.g. deactivated games.
		sr.logger.WithField("favorites", len(favoriteIDs)).Debug("No favorite rows in pool, using popularity ranking")
		return sr.rankByPopularity(games, excluded, limit), nil
	}
	floats.Scale(1/float64(matched), centroid)

	type scored struct {
		game  models.Game
		score float64
	}

	candidates := make([]scored, 0, len(games))
	for i, g := range games {
		if excluded[g.ID] {
			continue
		}
		candidates = append(candidates, scored{
			game:  g,
			score: cosineSimilarity(centroid, matrix.RawRowView(i)),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].game.Rating != candidates[j].game.Rating {
			return candidates[i].game.Rating > candidates[j].game.Rating
		}
		return candidates[i].game.ID < candidates[j].game.ID
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	recommendations := make([]models.Recommendation, len(candidates))
	for i, c := range candidates {
		game := c.game
		recommendations[i] = models.Recommendation{
			GameID:   game.ID,
			Score:    c.score,
			Strategy: StrategyContentSimilarity,
			Position: i + 1,
			Game:     &game,
		}
	}

	return recommendations, nil
}

// rankByPopularity is the cold-start path: rating desc, likes desc, id asc,
// score pinned to 0.0. Deterministic for a given pool and limit.
func (sr *SimilarityRanker) rankByPopularity(games []models.Game, excluded map[int64]bool, limit int) []models.Recommendation {
	pool := make([]models.Game, 0, len(games))
	for _, g := range games {
		if !excluded[g.ID] {
			pool = append(pool, g)
		}
	}

	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Rating != pool[j].Rating {
			return pool[i].Rating > pool[j].Rating
		}
		if pool[i].Likes != pool[j].Likes {
			return pool[i].Likes > pool[j].Likes
		}
		return pool[i].ID < pool[j].ID
	})

	if len(pool) > limit {
		pool = pool[:limit]
	}

	recommendations := make([]models.Recommendation, len(pool))
	for i := range pool {
		game := pool[i]
		recommendations[i] = models.Recommendation{
			GameID:      game.ID,
			Score:       0.0,
			Strategy:    StrategyPopularity,
			Explanation: popularityExplanation,
			Position:    i + 1,
			Game:        &game,
		}
	}

	return recommendations
}

// cosineSimilarity between two equal-length vectors. Defined as 0.0 when
// either vector is zero, since the angle is undefined there.
func cosineSimilarity(a, b []float64) float64 {
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return floats.Dot(a, b) / (normA * normB)
}
