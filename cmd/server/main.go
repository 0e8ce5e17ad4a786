package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"costa-assist/internal/cache"
	"costa-assist/internal/config"
	"costa-assist/internal/logger"
	"costa-assist/internal/repository"
	"costa-assist/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging, "costa-assist", nil)
	log.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("Costa Property Assistant")

	gin.SetMode(cfg.Server.GinMode)

	// Database is optional: without it chats, corrections and feedback are not stored
	var (
		repo        *repository.PostgresRepository
		db          pinger
		chats       service.ChatStore
		corrections service.CorrectionStore
	)
	if cfg.PostgreSQL.Enabled {
		repo, err = connectDatabase(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer repo.Close()
		db, chats, corrections = repo, repo, repo
		log.Info().Msg("✅ Connected to PostgreSQL database")
	} else {
		log.Warn().Msg("⚠️  PostgreSQL is disabled - chats and corrections will not be stored")
	}

	// Property API cache
	var propertyCache cache.Client
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		}
		propertyCache = redisClient
		log.Info().Str("addr", cfg.Redis.Addr).Msg("✅ Connected to Redis")
	} else {
		propertyCache = cache.NewMemoryClient(1000)
		log.Info().Msg("Using in-memory property cache")
	}
	defer propertyCache.Close()

	// LLM client
	ollama := service.NewOllamaClient(&cfg.Ollama)
	if ollama.IsEnabled() {
		log.Info().
			Str("base_url", cfg.Ollama.BaseURL).
			Str("chat_model", cfg.Ollama.ChatModel).
			Str("embedding_model", cfg.Ollama.EmbeddingModel).
			Float64("temperature", cfg.Ollama.Temperature).
			Msg("✅ Ollama client initialized")
	} else {
		log.Warn().Msg("⚠️  Ollama is disabled - chat replies fall back to composed answers")
	}

	// Initialize services
	properties := service.NewPropertyAPIClient(&cfg.PropertyAPI, propertyCache)
	ranker := service.NewRanker(0.5, 0.3, 0.2)
	chatService := service.NewChatService(properties, ollama, ranker, chats, corrections, cfg.Chat)
	correctionService := service.NewCorrectionService(ollama, corrections, cfg.Chat.DefaultLocale)

	log.Info().Msg("✅ Services initialized")

	router := setupRouter(cfg, chatService, correctionService, db)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("🚀 Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shut down")
	}

	log.Info().Msg("✅ Server stopped")
}

func connectDatabase(cfg *config.Config) (*repository.PostgresRepository, error) {
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := repo.Ping(ctx); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}
