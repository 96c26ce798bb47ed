package services

import (
	"github.com/sirupsen/logrus"

	"github.com/mentiva/studyloop/internal/config"
	"github.com/mentiva/studyloop/internal/database"
	"github.com/mentiva/studyloop/internal/messaging"
)

type Services struct {
	Auth       *AuthService
	Health     *HealthService
	RateLimit  *RateLimitService
	MessageBus *messaging.MessageBus

	Catalog        *GameCatalogService
	History        *PlayHistoryService
	Flashcards     *FlashcardService
	Recommendation *RecommendationOrchestrator
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database) (*Services, error) {
	authService := NewAuthService(cfg, logger, db.Redis.Hot)
	healthService := NewHealthService(cfg, logger, db)
	rateLimitService := NewRateLimitService(cfg, logger, db.Redis.Hot)

	messageBus, err := messaging.NewMessageBus(cfg, logger)
	if err != nil {
		return nil, err
	}

	normalizer := NewContentNormalizer()
	catalogService := NewGameCatalogService(db.PG, normalizer, logger)
	historyService := NewPlayHistoryService(db.PG, logger)

	scheduler := NewSpacedRepetitionScheduler(logger)
	flashcardService := NewFlashcardService(db.PG, scheduler, messageBus, logger)

	recommendationOrchestrator := NewRecommendationOrchestrator(
		catalogService, historyService, db.Redis.Warm, &cfg.Recommendation, logger,
	)

	return &Services{
		Auth:           authService,
		Health:         healthService,
		RateLimit:      rateLimitService,
		MessageBus:     messageBus,
		Catalog:        catalogService,
		History:        historyService,
		Flashcards:     flashcardService,
		Recommendation: recommendationOrchestrator,
	}, nil
}
