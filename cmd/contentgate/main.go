package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/rutaviva/contentgate/pkg/app/analysis"
	"github.com/rutaviva/contentgate/pkg/config"
	"github.com/rutaviva/contentgate/pkg/domain/moderation"
	"github.com/rutaviva/contentgate/pkg/infra/classifier"
	"github.com/rutaviva/contentgate/pkg/infra/database"
	"github.com/rutaviva/contentgate/pkg/infra/httpx"
	"github.com/rutaviva/contentgate/pkg/infra/imagemod"
	infraLogger "github.com/rutaviva/contentgate/pkg/infra/logger"
	"github.com/rutaviva/contentgate/pkg/infra/repository"
	"github.com/rutaviva/contentgate/pkg/infra/textmod"
	"github.com/rutaviva/contentgate/pkg/infra/tracker"
	"github.com/rutaviva/contentgate/pkg/server"
	"github.com/sirupsen/logrus"

	handlers "github.com/rutaviva/contentgate/pkg/handlers/http"
)

func main() {
	ctx := context.Background()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	if err := config.Load("./config"); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	// audit storage is optional; verdicts are never blocked on it
	var auditRepo moderation.AuditRepository
	if cfg.Database.Enabled {
		db, err := database.NewDB(logger, &database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		auditRepo = repository.NewModerationAuditRepository(db.DB)
	}

	var uploaderTracker tracker.Tracker
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		uploaderTracker = tracker.NewUploaderTracker(redisClient)
	}

	policy, err := classifier.PolicyFromSettings(cfg.Moderation.Classifier.Policy)
	if err != nil {
		logger.Fatalf("Invalid classifier policy: %v", err)
	}

	// no in-process model runtime is wired yet; the engine handle stays
	// unloaded and the coordinator default-approves on the local path
	engine := classifier.NewEngine(logger, nil, policy)

	breaker := httpx.NewCircuitBreaker("imagemod", 30*time.Second, 5)
	imageClient := imagemod.NewHTTPClient(
		logger,
		cfg.Moderation.ImageService.BaseURL,
		imagemod.WithCircuitBreaker(breaker),
		imagemod.WithWorkRoot(cfg.Moderation.ImageService.WorkRoot),
		imagemod.WithTimeout(time.Duration(cfg.Moderation.ImageService.TimeoutSeconds)*time.Second),
	)

	textClient := textmod.NewHTTPClient(logger, cfg.Moderation.TextService.BaseURL, cfg.Moderation.TextService.Token)

	// readiness is advisory: a service that never comes up leaves the gate
	// running in its degraded fail-open mode
	go func() {
		ready := imageClient.WaitForServiceReady(
			ctx,
			cfg.Moderation.ImageService.ReadyMaxAttempts,
			time.Duration(cfg.Moderation.ImageService.ReadyIntervalSecs)*time.Second,
		)
		if !ready {
			logger.Warn("image moderation service not ready, uploads proceed degraded")
		}
	}()

	factory := newCoordinatorFactory(cfg, logger, engine, imageClient, auditRepo)

	handlerTransport := handlers.HandlerTransport{
		AnalyzeImagesHandler: handlers.NewAnalyzeImagesHandler(logger, factory, uploaderTracker, cfg.Moderation.ScratchDir),
		AnalyzeTextHandler:   handlers.NewAnalyzeTextHandler(logger, textClient),
		ListAuditHandler:     handlers.NewListAuditHandler(logger, auditRepo),
		HealthHandler:        handlers.NewHealthHandler(engine.Handle()),
	}

	srv := server.NewServer(server.ServerDI{
		Config:           cfg,
		Logger:           logger,
		HandlerTransport: handlerTransport,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}

func newCoordinatorFactory(
	cfg *config.Config,
	logger *logrus.Logger,
	engine *classifier.Engine,
	imageClient imagemod.Client,
	auditRepo moderation.AuditRepository,
) handlers.CoordinatorFactory {
	return func() *analysis.Coordinator {
		opts := []analysis.CoordinatorOption{}
		var analyzer analysis.Analyzer
		engineName := cfg.Moderation.Engine

		if engineName == "local" {
			analyzer = analysis.NewLocalAnalyzer(engine)
			opts = append(opts, analysis.WithHandle(engine.Handle()))
		} else {
			analyzer = analysis.NewRemoteAnalyzer(imageClient)
		}
		if auditRepo != nil {
			opts = append(opts, analysis.WithAudit(auditRepo, engineName))
		}

		return analysis.NewCoordinator(logger, analyzer, opts...)
	}
}
