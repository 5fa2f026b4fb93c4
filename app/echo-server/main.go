package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aiVisibility/app/echo-server/router"
	"aiVisibility/business/detection"
	"aiVisibility/business/mode"
	"aiVisibility/business/pipeline"
	"aiVisibility/business/reccontext"
	"aiVisibility/business/recommendation"
	"aiVisibility/business/refresh"
	"aiVisibility/internal/middleware"
	"aiVisibility/internal/repository/notification"
	psqlRepo "aiVisibility/internal/repository/postgres"
	redisRepo "aiVisibility/internal/repository/redis"
	"aiVisibility/internal/rest"
	"aiVisibility/pkg/config"
	"aiVisibility/pkg/database"
	redisdb "aiVisibility/pkg/database/redis"
	"aiVisibility/pkg/logger"
	"aiVisibility/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting AI Visibility API", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}
	defer func() {
		_ = redisdb.CloseRedisClient(redisClient)
	}()

	// Init notification dispatcher
	webhook := notification.NewWebhookRepository(
		notification.WebhookConfig{
			BaseURL:           cfg.Webhook.BaseURL,
			BasicAuthUsername: cfg.Webhook.BasicAuthUsername,
			BasicAuthPassword: cfg.Webhook.BasicAuthPassword,
		},
	)

	// Init repo
	scanRepo := psqlRepo.NewScanRepository(db)
	snapshotRepo := psqlRepo.NewSnapshotRepository(db)
	recRepo := psqlRepo.NewRecommendationRepository(db)
	contextRepo := psqlRepo.NewContextRepository(db)
	refreshRepo := psqlRepo.NewRefreshRepository(db)
	modeRepo := psqlRepo.NewModeRepository(db)
	detectionRepo := psqlRepo.NewDetectionRepository(db)
	accountRepo := psqlRepo.NewAccountRepository(db)
	lockRepo := redisRepo.NewLockRepository(redisClient)

	// Init service
	gate := mode.NewGateWithThresholds(modeRepo, cfg.Pipeline.ModeEnterThreshold, cfg.Pipeline.ModeExitThreshold)
	detector := detection.NewDetector(scanRepo, recRepo, detectionRepo, detection.DefaultConfig())
	cycleManager := refresh.NewManagerWithWindow(refreshRepo, accountRepo, scanRepo, gate,
		time.Duration(cfg.Pipeline.RefreshWindowDays)*24*time.Hour)
	resolver := reccontext.NewResolver(contextRepo, cycleManager)
	recService := recommendation.NewService(recRepo)
	orchestrator := pipeline.NewOrchestrator(
		scanRepo,
		snapshotRepo,
		gate,
		detector,
		recRepo,
		cycleManager,
		accountRepo,
		webhook,
		webhook,
	)
	sweeper := pipeline.NewSweeperWithConcurrency(contextRepo, cycleManager, lockRepo, webhook, cfg.Pipeline.SweepConcurrency)

	// Init handler
	scanHandler := rest.NewScanHandler(scanRepo, accountRepo, resolver, orchestrator)
	recHandler := rest.NewRecommendationHandler(recService)
	modeHandler := rest.NewModeHandler(gate, modeRepo)
	adminHandler := rest.NewAdminHandler(sweeper, cycleManager)

	// Init metrics
	metrics.Init()

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetScanRoutes(api, scanHandler)
	router.SetRecommendationRoutes(api, recHandler)
	router.SetModeRoutes(api, modeHandler)
	router.SetAdminRoutes(api, adminHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
