package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elearnhq/progression-service/internal/auth"
	"github.com/elearnhq/progression-service/internal/cache"
	"github.com/elearnhq/progression-service/internal/config"
	"github.com/elearnhq/progression-service/internal/events"
	"github.com/elearnhq/progression-service/internal/handlers"
	"github.com/elearnhq/progression-service/internal/models"
	"github.com/elearnhq/progression-service/internal/repositories/postgres"
	"github.com/elearnhq/progression-service/internal/services"
	"github.com/elearnhq/progression-service/internal/utils"
	"github.com/elearnhq/progression-service/internal/validator"
	"github.com/elearnhq/progression-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Classroom{},
		&models.Quiz{},
		&models.Question{},
		&models.QuizAttempt{},
		&models.AttemptAnswer{},
		&models.ProgressLedger{},
		&models.AttendanceRecord{},
		&models.ClassProgress{},
	); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}

	repo := postgres.NewRepository(db)
	defer repo.Close()

	// Redis backs the leaderboard snapshot cache; the service degrades to
	// recomputing every query when it is unavailable.
	var leaderboardCache cache.Cache
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, leaderboard caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		leaderboardCache = cache.NewRedisCache(redisClient, utils.ToSlogLogger(logger))
	}

	var publisher events.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: cfg.KafkaBrokers,
			TopicName:    cfg.EventsTopic,
			Logger:       utils.ToSlogLogger(logger),
		})
		if err != nil {
			logger.Error("Failed to create event publisher", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		logger.Warn("No Kafka brokers configured, progression events disabled")
	}

	v := validator.New()
	policy := services.Policy{
		PassThreshold:       cfg.PassThreshold,
		PointsPerCorrect:    cfg.PointsPerCorrect,
		ParticipationPoints: cfg.ParticipationPoints,
	}

	progressService := services.NewProgressService(repo, publisher, logger, policy)
	attendanceService := services.NewAttendanceService(repo, progressService, publisher, v, logger)
	leaderboardService := services.NewLeaderboardService(repo, leaderboardCache, logger)
	exportService := services.NewExportService(leaderboardService, attendanceService, logger)

	handlerManager := handlers.NewHandlerManager(handlers.Services{
		Quiz:        services.NewQuizService(repo, v, logger),
		Attempt:     services.NewAttemptService(repo, progressService, publisher, logger, policy),
		Progress:    progressService,
		Leaderboard: leaderboardService,
		Attendance:  attendanceService,
		Classroom:   services.NewClassroomService(repo, v, logger),
		Export:      exportService,
	}, auth.NewMiddleware(cfg, logger), logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(gin.Recovery())
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	logger.Info("Server stopped")
}
