package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/mentiva/studyloop/pkg/models"
)

// DatabaseQuerier is the subset of pgxpool.Pool the catalog and history
// services need; pgxmock satisfies it in tests.
type DatabaseQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// GameCatalogService reads and writes the game catalog. Upserts pass through
// the content normalizer so every stored row carries canonical category and
// difficulty labels.
type GameCatalogService struct {
	db         DatabaseQuerier
	normalizer *ContentNormalizer
	logger     *logrus.Logger
}

func NewGameCatalogService(db DatabaseQuerier, normalizer *ContentNormalizer, logger *logrus.Logger) *GameCatalogService {
	return &GameCatalogService{
		db:         db,
		normalizer: normalizer,
		logger:     logger,
	}
}

const gameColumns = `id, title, category, difficulty, estimated_time, xp_reward, rating, likes, active, created_at, updated_at`

// ActiveGames returns the full candidate pool for a recommendation pass,
// ordered by id for deterministic vectorization.
func (s *GameCatalogService) ActiveGames(ctx context.Context) ([]models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE active = true ORDER BY id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query active games: %w", err)
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.ID, &g.Title, &g.Category, &g.Difficulty, &g.EstimatedTime,
			&g.XPReward, &g.Rating, &g.Likes, &g.Active, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan game row: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game rows: %w", err)
	}

	return games, nil
}

// Game fetches one catalog row by id.
func (s *GameCatalogService) Game(ctx context.Context, id int64) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	var g models.Game
	err := s.db.QueryRow(ctx, query, id).Scan(&g.ID, &g.Title, &g.Category, &g.Difficulty,
		&g.EstimatedTime, &g.XPReward, &g.Rating, &g.Likes, &g.Active, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("game %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("query game: %w", err)
	}

	return &g, nil
}

// GamesByIDs resolves a set of catalog rows, active or not. Used to hydrate
// favorite lists that may reference deactivated games.
func (s *GameCatalogService) GamesByIDs(ctx context.Context, ids []int64) ([]models.Game, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + gameColumns + ` FROM games WHERE id = ANY($1) ORDER BY id`

	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query games by ids: %w", err)
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.ID, &g.Title, &g.Category, &g.Difficulty, &g.EstimatedTime,
			&g.XPReward, &g.Rating, &g.Likes, &g.Active, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan game row: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game rows: %w", err)
	}

	return games, nil
}

// UpsertGame inserts or refreshes a catalog entry. The title, category and
// difficulty are normalized before storage; an existing row is matched by
// title within the category.
func (s *GameCatalogService) UpsertGame(ctx context.Context, req models.GameUpsertRequest) (*models.Game, error) {
	title := s.normalizer.CleanText(req.Title)
	if title == "" {
		return nil, fmt.Errorf("upsert game: %w: empty title after normalization", ErrInvalidInput)
	}
	category := s.normalizer.NormalizeCategory(req.Category)
	difficulty := s.normalizer.NormalizeDifficulty(req.Difficulty)

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	query := `
		INSERT INTO games (title, category, difficulty, estimated_time, xp_reward, rating, likes, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (category, title) DO UPDATE SET
			difficulty = EXCLUDED.difficulty,
			estimated_time = EXCLUDED.estimated_time,
			xp_reward = EXCLUDED.xp_reward,
			rating = EXCLUDED.rating,
			likes = EXCLUDED.likes,
			active = EXCLUDED.active,
			updated_at = NOW()
		RETURNING ` + gameColumns

	var g models.Game
	err := s.db.QueryRow(ctx, query, title, category, difficulty, req.EstimatedTime,
		req.XPReward, req.Rating, req.Likes, active).Scan(&g.ID, &g.Title, &g.Category,
		&g.Difficulty, &g.EstimatedTime, &g.XPReward, &g.Rating, &g.Likes, &g.Active,
		&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert game: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"game_id":  g.ID,
		"category": g.Category,
	}).Info("Game catalog entry upserted")

	return &g, nil
}
