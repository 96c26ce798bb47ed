package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentiva/studyloop/internal/config"
	"github.com/mentiva/studyloop/pkg/models"
)

type fakeCatalog struct {
	games []models.Game
}

func (f *fakeCatalog) ActiveGames(ctx context.Context) ([]models.Game, error) {
	return f.games, nil
}

func (f *fakeCatalog) GamesByIDs(ctx context.Context, ids []int64) ([]models.Game, error) {
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []models.Game
	for _, g := range f.games {
		if wanted[g.ID] {
			out = append(out, g)
		}
	}
	return out, nil
}

type fakeHistory struct {
	entries []models.PlayHistoryEntry
}

func (f *fakeHistory) UserHistory(ctx context.Context, userID uuid.UUID) ([]models.PlayHistoryEntry, error) {
	return f.entries, nil
}

func testRecommendationConfig() *config.RecommendationConfig {
	return &config.RecommendationConfig{
		MinPlays:      2,
		FallbackCount: 3,
		DefaultLimit:  6,
		MaxLimit:      20,
		CacheTTL:      15 * time.Minute,
	}
}

func testOrchestrator(catalog *fakeCatalog, history *fakeHistory) *RecommendationOrchestrator {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewRecommendationOrchestrator(catalog, history, nil, testRecommendationConfig(), logger)
}

func TestRecommendationOrchestrator_ContentPipeline(t *testing.T) {
	catalog := &fakeCatalog{games: []models.Game{
		{ID: 1, Title: "Fraction Frenzy", Category: "Math", Difficulty: "medium", EstimatedTime: 15, XPReward: 80, Rating: 4.5, Likes: 500, Active: true},
		{ID: 2, Title: "Decimal Dash", Category: "Math", Difficulty: "medium", EstimatedTime: 14, XPReward: 75, Rating: 4.2, Likes: 300, Active: true},
		{ID: 3, Title: "Verb Voyage", Category: "Language", Difficulty: "easy", EstimatedTime: 40, XPReward: 30, Rating: 3.8, Likes: 100, Active: true},
	}}
	history := &fakeHistory{entries: []models.PlayHistoryEntry{
		{GameID: 1, PlayCount: 3},
	}}

	ro := testOrchestrator(catalog, history)
	userID := uuid.New()

	resp, err := ro.Recommend(context.Background(), userID, 2, false)
	require.NoError(t, err)

	assert.Equal(t, userID, resp.UserID)
	assert.False(t, resp.ColdStart)
	assert.False(t, resp.CacheHit)
	require.Len(t, resp.Recommendations, 2)

	// The played favorite is excluded; its Math twin leads the Language game.
	assert.Equal(t, int64(2), resp.Recommendations[0].GameID)
	assert.Equal(t, int64(3), resp.Recommendations[1].GameID)
	assert.Greater(t, resp.Recommendations[0].Score, resp.Recommendations[1].Score)
	assert.Equal(t, StrategyContentSimilarity, resp.Recommendations[0].Strategy)
	assert.Contains(t, resp.Recommendations[0].Explanation, "Similar to Fraction Frenzy (same category: Math)")
	assert.Contains(t, resp.Recommendations[0].Explanation, "Matches your preferred difficulty: medium")
}

func TestRecommendationOrchestrator_ColdStart(t *testing.T) {
	catalog := &fakeCatalog{games: []models.Game{
		{ID: 1, Rating: 4.0, Likes: 100, Active: true},
		{ID: 2, Rating: 4.8, Likes: 50, Active: true},
		{ID: 3, Rating: 4.0, Likes: 200, Active: true},
	}}
	history := &fakeHistory{}

	ro := testOrchestrator(catalog, history)

	resp, err := ro.Recommend(context.Background(), uuid.New(), 2, false)
	require.NoError(t, err)

	assert.True(t, resp.ColdStart)
	require.Len(t, resp.Recommendations, 2)
	assert.Equal(t, int64(2), resp.Recommendations[0].GameID)
	assert.Equal(t, int64(3), resp.Recommendations[1].GameID)
	assert.Equal(t, "Popular item", resp.Recommendations[0].Explanation)
	assert.Equal(t, 0.0, resp.Recommendations[0].Score)
}

func TestRecommendationOrchestrator_EmptyCatalog(t *testing.T) {
	ro := testOrchestrator(&fakeCatalog{}, &fakeHistory{})

	resp, err := ro.Recommend(context.Background(), uuid.New(), 5, false)
	require.NoError(t, err)
	assert.Empty(t, resp.Recommendations)
	assert.False(t, resp.ColdStart)
}

func TestRecommendationOrchestrator_AllGamesPlayed(t *testing.T) {
	catalog := &fakeCatalog{games: []models.Game{
		{ID: 1, Category: "Math", Difficulty: "medium", EstimatedTime: 10, Rating: 4.0, Active: true},
		{ID: 2, Category: "Math", Difficulty: "easy", EstimatedTime: 12, Rating: 4.5, Active: true},
	}}
	history := &fakeHistory{entries: []models.PlayHistoryEntry{
		{GameID: 1, PlayCount: 4},
		{GameID: 2, PlayCount: 2},
	}}

	ro := testOrchestrator(catalog, history)

	resp, err := ro.Recommend(context.Background(), uuid.New(), 5, false)
	require.NoError(t, err)
	assert.Empty(t, resp.Recommendations)
}

func TestRecommendationOrchestrator_InvalidLimit(t *testing.T) {
	ro := testOrchestrator(&fakeCatalog{}, &fakeHistory{})

	_, err := ro.Recommend(context.Background(), uuid.New(), 0, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRecommendationOrchestrator_LimitClampedToMax(t *testing.T) {
	games := make([]models.Game, 30)
	for i := range games {
		games[i] = models.Game{ID: int64(i + 1), Rating: 4.0, Likes: i, Active: true}
	}
	ro := testOrchestrator(&fakeCatalog{games: games}, &fakeHistory{})

	resp, err := ro.Recommend(context.Background(), uuid.New(), 100, false)
	require.NoError(t, err)
	assert.Len(t, resp.Recommendations, 20)
}

func TestRecommendationOrchestrator_FavoriteGames(t *testing.T) {
	catalog := &fakeCatalog{games: []models.Game{
		{ID: 1, Title: "Fraction Frenzy", Active: true},
		{ID: 2, Title: "Decimal Dash", Active: true},
		{ID: 3, Title: "Verb Voyage", Active: true},
	}}
	// History arrives ordered by play count; the response must keep it.
	history := &fakeHistory{entries: []models.PlayHistoryEntry{
		{GameID: 3, PlayCount: 7},
		{GameID: 1, PlayCount: 2},
		{GameID: 2, PlayCount: 1},
	}}

	ro := testOrchestrator(catalog, history)

	favorites, err := ro.FavoriteGames(context.Background(), uuid.New(), 2)
	require.NoError(t, err)
	require.Len(t, favorites, 2)
	assert.Equal(t, "Verb Voyage", favorites[0].Title)
	assert.Equal(t, "Fraction Frenzy", favorites[1].Title)
}

func TestRecommendationOrchestrator_FavoriteGamesEmptyHistory(t *testing.T) {
	ro := testOrchestrator(&fakeCatalog{}, &fakeHistory{})

	favorites, err := ro.FavoriteGames(context.Background(), uuid.New(), 5)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}
