package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/mentiva/studyloop/internal/config"
	"github.com/mentiva/studyloop/internal/database"
	"github.com/mentiva/studyloop/internal/handlers"
	"github.com/mentiva/studyloop/internal/middleware"
	"github.com/mentiva/studyloop/internal/services"
	"github.com/mentiva/studyloop/internal/validation"
	"github.com/mentiva/studyloop/pkg/models"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine

	consumerCancel context.CancelFunc
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	svcs, err := services.New(cfg, app.logger, db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = svcs

	validator, err := validation.NewSchemaValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize validator: %w", err)
	}

	app.handlers = handlers.New(app.logger, svcs, validator)

	app.setupRouter()
	app.startSessionConsumer()

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// startSessionConsumer folds completed game sessions into play history in
// the background for as long as the app runs.
func (a *App) startSessionConsumer() {
	ctx, cancel := context.WithCancel(context.Background())
	a.consumerCancel = cancel

	go func() {
		err := a.services.MessageBus.ConsumeSessionEvents(ctx, func(event models.SessionCompletedEvent) error {
			return a.services.History.RecordCompletion(ctx, event)
		})
		if err != nil && ctx.Err() == nil {
			a.logger.WithError(err).Error("Session consumer stopped unexpectedly")
		}
	}()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if a.consumerCancel != nil {
		a.consumerCancel()
	}

	if err := a.services.MessageBus.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing message bus")
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))

	// Health and metrics endpoints skip auth.
	router.GET("/health", a.handlers.Health.Check)
	if a.config.Monitoring.Enabled {
		router.GET(a.config.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	router.POST("/api/v1/auth/token", a.handlers.Auth.Token)

	api := router.Group("/api/v1")
	{
		api.Use(middleware.Auth(a.services.Auth, a.logger))
		api.Use(middleware.RateLimit(a.services.RateLimit, a.logger))

		games := api.Group("/games")
		{
			games.POST("", a.handlers.Game.Upsert)
			games.GET("", a.handlers.Game.List)
			games.GET("/:id", a.handlers.Game.Get)
		}

		recommendations := api.Group("/recommendations")
		{
			recommendations.GET("/:userId", a.handlers.Recommendation.Get)
			recommendations.GET("/:userId/favorites", a.handlers.Recommendation.GetFavorites)
		}

		flashcards := api.Group("/flashcards")
		{
			flashcards.POST("/:id/review", a.handlers.Flashcard.SubmitReview)
		}

		topics := api.Group("/topics")
		{
			topics.GET("/:topicId/flashcards/due", a.handlers.Flashcard.DueFlashcards)
		}
	}

	a.router = router
}
