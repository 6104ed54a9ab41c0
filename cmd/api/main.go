package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"compara-mercado/internal/ai"
	"compara-mercado/internal/config"
	"compara-mercado/internal/logger"
	"compara-mercado/internal/server"
	"compara-mercado/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")
	done <- true
}

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting price comparison API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver),
	)

	ctx := context.Background()

	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		if redisClient, err = server.NewRedisClient(ctx, cfg.Redis); err != nil {
			log.Warn("Redis unavailable, rate limiting disabled", zap.Error(err))
		}
	}

	store, redisClient, err := server.OpenStore(ctx, cfg, redisClient, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}

	var generator service.TextGenerator = ai.Unavailable{}
	if client, err := ai.NewClient(ctx, cfg.GenAI.APIKey, cfg.GenAI.Model); err != nil {
		log.Warn("Savings advisor uses fallback tips", zap.Error(err))
	} else {
		generator = client
	}

	var transcriber ai.Transcriber = ai.NoTranscriber{}
	if live, err := ai.NewLiveTranscriber(ctx, cfg.GenAI.APIKey, cfg.GenAI.LiveModel); err != nil {
		log.Warn("Voice search disabled", zap.Error(err))
	} else {
		transcriber = live
	}

	srv, err := server.NewServer(ctx, cfg, log, server.Dependencies{
		Store:       store,
		Redis:       redisClient,
		Generator:   generator,
		Transcriber: transcriber,
	})
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
