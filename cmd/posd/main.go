package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tillworks/poscore/internal/api"
	"github.com/tillworks/poscore/internal/config"
	"github.com/tillworks/poscore/internal/platform"
	"github.com/tillworks/poscore/internal/repository"
	"github.com/tillworks/poscore/internal/service"
	"github.com/tillworks/poscore/internal/syncer"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	repo, err := repository.NewRepository(cfg.DBPath)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Database migrations completed", zap.String("db_path", cfg.DBPath))

	adapter := platform.NewHTTPAdapter(cfg.PlatformBaseURL, cfg.PlatformAPIKey, cfg.SubmitTimeout)

	basketService := service.NewBasketService(repo, service.StaticResolver{}, logger)
	orderService := service.NewOrderService(repo, logger)
	engine := syncer.NewEngine(repo, adapter, logger, syncer.Options{
		BaseDelay:     cfg.BackoffBase,
		MaxDelay:      cfg.BackoffMax,
		MaxAttempts:   cfg.MaxSyncAttempts,
		Workers:       cfg.SyncWorkers,
		SubmitTimeout: cfg.SubmitTimeout,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx, cfg.SyncInterval)

	router := api.NewRouter(basketService, orderService, engine, logger)
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		logger.Info("POS core listening", zap.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	logger.Info("POS core stopped")
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	return logger
}
