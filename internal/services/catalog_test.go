package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentiva/studyloop/pkg/models"
)

func testCatalogService(t *testing.T) (*GameCatalogService, pgxmock.PgxPoolIface) {
	t.Helper()

	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	return NewGameCatalogService(mockDB, NewContentNormalizer(), logger), mockDB
}

func gameRows(games ...models.Game) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{
		"id", "title", "category", "difficulty", "estimated_time", "xp_reward",
		"rating", "likes", "active", "created_at", "updated_at",
	})
	for _, g := range games {
		rows.AddRow(g.ID, g.Title, g.Category, g.Difficulty, g.EstimatedTime, g.XPReward,
			g.Rating, g.Likes, g.Active, g.CreatedAt, g.UpdatedAt)
	}
	return rows
}

func TestGameCatalogService_ActiveGames(t *testing.T) {
	service, mockDB := testCatalogService(t)

	now := time.Now()
	mockDB.ExpectQuery("SELECT").WillReturnRows(gameRows(
		models.Game{ID: 1, Title: "Fraction Frenzy", Category: "Math", Difficulty: "medium", EstimatedTime: 15, XPReward: 80, Rating: 4.5, Likes: 500, Active: true, CreatedAt: now, UpdatedAt: now},
		models.Game{ID: 2, Title: "Verb Voyage", Category: "Language", Difficulty: "easy", EstimatedTime: 40, XPReward: 30, Rating: 3.8, Likes: 100, Active: true, CreatedAt: now, UpdatedAt: now},
	))

	games, err := service.ActiveGames(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "Fraction Frenzy", games[0].Title)
	assert.Equal(t, int64(2), games[1].ID)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestGameCatalogService_GameNotFound(t *testing.T) {
	service, mockDB := testCatalogService(t)

	mockDB.ExpectQuery("SELECT").WithArgs(int64(404)).WillReturnError(pgx.ErrNoRows)

	_, err := service.Game(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGameCatalogService_GamesByIDsEmpty(t *testing.T) {
	service, mockDB := testCatalogService(t)

	games, err := service.GamesByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, games)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestGameCatalogService_UpsertGameNormalizes(t *testing.T) {
	service, mockDB := testCatalogService(t)

	now := time.Now()
	// The stored row carries the normalized labels.
	mockDB.ExpectQuery("INSERT INTO games").
		WithArgs("Fraction Frenzy", "Math", "medium", 15, 80, 4.5, 500, true).
		WillReturnRows(gameRows(models.Game{
			ID: 1, Title: "Fraction Frenzy", Category: "Math", Difficulty: "medium",
			EstimatedTime: 15, XPReward: 80, Rating: 4.5, Likes: 500, Active: true,
			CreatedAt: now, UpdatedAt: now,
		}))

	game, err := service.UpsertGame(context.Background(), models.GameUpsertRequest{
		Title:         "  Fraction   Frenzy ",
		Category:      "algebra",
		Difficulty:    "MEDIUM",
		EstimatedTime: 15,
		XPReward:      80,
		Rating:        4.5,
		Likes:         500,
	})
	require.NoError(t, err)
	assert.Equal(t, "Math", game.Category)
	assert.Equal(t, "medium", game.Difficulty)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestGameCatalogService_UpsertGameEmptyTitle(t *testing.T) {
	service, mockDB := testCatalogService(t)

	_, err := service.UpsertGame(context.Background(), models.GameUpsertRequest{
		Title:      "   ",
		Category:   "Math",
		Difficulty: "easy",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}
