package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mentiva/studyloop/internal/config"
	"github.com/mentiva/studyloop/pkg/models"
)

// CatalogProvider supplies item snapshots for a scoring pass. The
// orchestrator never mutates catalog state.
type CatalogProvider interface {
	ActiveGames(ctx context.Context) ([]models.Game, error)
	GamesByIDs(ctx context.Context, ids []int64) ([]models.Game, error)
}

// HistoryProvider supplies aggregated play counts for one user.
type HistoryProvider interface {
	UserHistory(ctx context.Context, userID uuid.UUID) ([]models.PlayHistoryEntry, error)
}

// RecommendationOrchestrator runs the full content-based pipeline:
// vectorize the candidate pool, select favorites from play history, rank by
// centroid similarity, exclude played games and annotate the results. Every
// call rebuilds the feature matrix from the pool it was handed, so no
// normalization state leaks between requests.
type RecommendationOrchestrator struct {
	catalog    CatalogProvider
	history    HistoryProvider
	vectorizer *FeatureVectorizer
	profile    *TasteProfileBuilder
	ranker     *SimilarityRanker
	explainer  *RecommendationExplainer
	cache      *redis.Client // warm cache; nil disables caching
	config     *config.RecommendationConfig
	logger     *logrus.Logger
}

func NewRecommendationOrchestrator(
	catalog CatalogProvider,
	history HistoryProvider,
	cache *redis.Client,
	cfg *config.RecommendationConfig,
	logger *logrus.Logger,
) *RecommendationOrchestrator {
	return &RecommendationOrchestrator{
		catalog:    catalog,
		history:    history,
		vectorizer: NewFeatureVectorizer(logger),
		profile:    NewTasteProfileBuilder(logger),
		ranker:     NewSimilarityRanker(logger),
		explainer:  NewRecommendationExplainer(),
		cache:      cache,
		config:     cfg,
		logger:     logger,
	}
}

// Recommend returns up to limit unseen games ranked for the user. Users
// without history get the popularity ordering (cold start) rather than an
// error. refresh bypasses the cache read but still refills it.
func (ro *RecommendationOrchestrator) Recommend(ctx context.Context, userID uuid.UUID, limit int, refresh bool) (*models.RecommendationResponse, error) {
	if limit < 1 {
		return nil, fmt.Errorf("recommend: %w: limit must be >= 1, got %d", ErrInvalidArgument, limit)
	}
	if ro.config.MaxLimit > 0 && limit > ro.config.MaxLimit {
		limit = ro.config.MaxLimit
	}

	cacheKey := fmt.Sprintf("recommendations:%s:%d", userID.String(), limit)
	if !refresh {
		if cached := ro.getCachedResponse(ctx, cacheKey); cached != nil {
			cached.CacheHit = true
			return cached, nil
		}
	}

	games, err := ro.catalog.ActiveGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch candidate pool: %w", err)
	}

	history, err := ro.history.UserHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch play history: %w", err)
	}

	response := &models.RecommendationResponse{
		UserID:          userID,
		Recommendations: []models.Recommendation{},
		GeneratedAt:     time.Now().UTC(),
	}

	if len(games) == 0 {
		// Nothing to recommend; not an error for callers.
		return response, nil
	}

	favoriteIDs, err := ro.profile.SelectFavorites(history, ro.config.MinPlays, ro.config.FallbackCount)
	if err != nil {
		if !errors.Is(err, ErrEmptyHistory) {
			return nil, err
		}
		favoriteIDs = nil
	}

	excludeIDs := make([]int64, 0, len(history))
	for _, entry := range history {
		excludeIDs = append(excludeIDs, entry.GameID)
	}

	var recommendations []models.Recommendation
	if len(favoriteIDs) == 0 || len(games) < 2 {
		// Cold start: no usable taste signal or no peer data in the pool.
		response.ColdStart = true
		recommendations, err = ro.ranker.Rank(nil, games, nil, excludeIDs, limit)
		if err != nil {
			return nil, err
		}
	} else {
		matrix, _, err := ro.vectorizer.Vectorize(games)
		if err != nil {
			return nil, err
		}

		recommendations, err = ro.ranker.Rank(matrix, games, favoriteIDs, excludeIDs, limit)
		if err != nil {
			return nil, err
		}

		favorites := ro.resolveFavorites(games, favoriteIDs)
		for i := range recommendations {
			if recommendations[i].Game != nil && recommendations[i].Strategy == StrategyContentSimilarity {
				recommendations[i].Explanation = ro.explainer.Explain(*recommendations[i].Game, favorites)
			}
		}
	}

	response.Recommendations = recommendations

	for _, rec := range recommendations {
		recommendationsServedTotal.WithLabelValues(rec.Strategy).Inc()
	}

	ro.setCachedResponse(ctx, cacheKey, response)

	ro.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"pool":       len(games),
		"favorites":  len(favoriteIDs),
		"results":    len(recommendations),
		"cold_start": response.ColdStart,
	}).Debug("Recommendations generated")

	return response, nil
}

// FavoriteGames resolves the user's most-played games in history order, for
// the favorites endpoint and for debugging taste profiles.
func (ro *RecommendationOrchestrator) FavoriteGames(ctx context.Context, userID uuid.UUID, limit int) ([]models.Game, error) {
	if limit < 1 {
		return nil, fmt.Errorf("favorite games: %w: limit must be >= 1, got %d", ErrInvalidArgument, limit)
	}

	history, err := ro.history.UserHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch play history: %w", err)
	}
	if len(history) == 0 {
		return []models.Game{}, nil
	}
	if len(history) > limit {
		history = history[:limit]
	}

	ids := make([]int64, len(history))
	for i, entry := range history {
		ids[i] = entry.GameID
	}

	games, err := ro.catalog.GamesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve favorite games: %w", err)
	}

	// Preserve history ordering; GamesByIDs returns rows in id order.
	byID := make(map[int64]models.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}
	ordered := make([]models.Game, 0, len(ids))
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			ordered = append(ordered, g)
		}
	}

	return ordered, nil
}

func (ro *RecommendationOrchestrator) resolveFavorites(pool []models.Game, favoriteIDs []int64) []models.Game {
	wanted := make(map[int64]bool, len(favoriteIDs))
	for _, id := range favoriteIDs {
		wanted[id] = true
	}

	var favorites []models.Game
	for _, g := range pool {
		if wanted[g.ID] {
			favorites = append(favorites, g)
		}
	}
	return favorites
}

func (ro *RecommendationOrchestrator) getCachedResponse(ctx context.Context, key string) *models.RecommendationResponse {
	if ro.cache == nil {
		return nil
	}

	cached, err := ro.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			ro.logger.WithError(err).Warn("Recommendation cache read failed")
		}
		recommendationCacheHits.WithLabelValues("miss").Inc()
		return nil
	}

	var response models.RecommendationResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		ro.logger.WithError(err).Warn("Recommendation cache entry corrupt")
		recommendationCacheHits.WithLabelValues("miss").Inc()
		return nil
	}

	recommendationCacheHits.WithLabelValues("hit").Inc()
	return &response
}

func (ro *RecommendationOrchestrator) setCachedResponse(ctx context.Context, key string, response *models.RecommendationResponse) {
	if ro.cache == nil {
		return
	}

	data, err := json.Marshal(response)
	if err != nil {
		ro.logger.WithError(err).Warn("Failed to marshal recommendations for cache")
		return
	}

	if err := ro.cache.Set(ctx, key, data, ro.config.CacheTTL).Err(); err != nil {
		ro.logger.WithError(err).Warn("Recommendation cache write failed")
	}
}
