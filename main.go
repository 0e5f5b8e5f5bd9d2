package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"mydailymath-pipeline/internal/config"
	"mydailymath-pipeline/internal/handlers"
	"mydailymath-pipeline/internal/pkg/logger"
	"mydailymath-pipeline/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := logger.New(logger.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	corpus := services.DefaultFallbackCorpus(time.Now())

	tavilyService, err := services.NewTavilyService(cfg.Tavily, corpus, appLogger)
	if err != nil {
		appLogger.WithError(err).Error("Failed to initialize search service")
		os.Exit(1)
	}

	geminiService, err := services.NewGeminiService(cfg.Gemini, appLogger)
	if err != nil {
		appLogger.WithError(err).Error("Failed to initialize AI service")
		os.Exit(1)
	}

	healthCheckers := map[string]handlers.HealthChecker{
		"gemini": geminiService,
	}

	// The session store is optional; without Redis the service runs purely
	// on caller-held exclusion state.
	var sessionStore services.ExclusionStore
	if cfg.Redis.URL != "" {
		sessionService, err := services.NewSessionService(cfg.Redis, appLogger)
		if err != nil {
			appLogger.WithError(err).Error("Failed to initialize session service")
			os.Exit(1)
		}
		defer sessionService.Close()

		sessionStore = sessionService
		healthCheckers["redis"] = sessionService
	}

	queryBuilder := services.NewQueryBuilder(rand.New(rand.NewSource(time.Now().UnixNano())))
	discoveryService := services.NewDiscoveryService(queryBuilder, tavilyService, geminiService, sessionStore, appLogger)

	router := handlers.NewRouter(
		handlers.NewDiscoveryHandler(discoveryService, appLogger),
		handlers.NewChatbotHandler(geminiService, appLogger),
		handlers.NewHealthHandler(healthCheckers),
		appLogger,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		appLogger.Info("Server Starting", "port", cfg.HTTP.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Error("Server stopped unexpectedly")
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server shutdown failed")
	}

	appLogger.Info("Server Stopped")
}
