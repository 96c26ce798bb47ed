package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/mentiva/studyloop/internal/services"
	"github.com/mentiva/studyloop/internal/validation"
)

type Handlers struct {
	Health         *HealthHandler
	Auth           *AuthHandler
	Game           *GameHandler
	Flashcard      *FlashcardHandler
	Recommendation *RecommendationHandler
}

func New(logger *logrus.Logger, services *services.Services, validator *validation.SchemaValidator) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(logger, services.Health),
		Auth:           NewAuthHandler(services.Auth, validator, logger),
		Game:           NewGameHandler(services.Catalog, validator, logger),
		Flashcard:      NewFlashcardHandler(services.Flashcards, validator, logger),
		Recommendation: NewRecommendationHandler(services.Recommendation, logger),
	}
}
