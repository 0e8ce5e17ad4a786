package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"costa-assist/internal/config"
	"costa-assist/internal/handler"
	"costa-assist/internal/logger"
	"costa-assist/internal/metrics"
	"costa-assist/internal/service"
)

// pinger reports database health
type pinger interface {
	Ping(ctx context.Context) error
}

func setupRouter(
	cfg *config.Config,
	chatService *service.ChatService,
	correctionService *service.CorrectionService,
	db pinger,
) *gin.Engine {
	chatHandler := handler.NewChatHandler(chatService, cfg.Chat.MaxMessageLength)
	correctionHandler := handler.NewCorrectionHandler(correctionService)
	feedbackHandler := handler.NewFeedbackHandler(chatService)

	router := gin.New()
	router.Use(gin.Recovery(), logger.GinLogger(), metrics.Middleware())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowMethods = cfg.Server.AllowedMethods
	corsConfig.AllowHeaders = cfg.Server.AllowedHeaders
	if len(corsConfig.AllowOrigins) == 1 && corsConfig.AllowOrigins[0] == "*" {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status := gin.H{
			"status":  "healthy",
			"service": "costa-assist",
			"version": Version,
		}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				status["status"] = "degraded"
				status["database"] = err.Error()
				c.JSON(http.StatusServiceUnavailable, status)
				return
			}
			status["database"] = "ok"
		}
		c.JSON(http.StatusOK, status)
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		chat := apiV1.Group("/chat")
		if cfg.Chat.RateLimitPerMinute > 0 {
			chat.Use(handler.NewRateLimiter(cfg.Chat.RateLimitPerMinute, cfg.Chat.RateLimitBurst).Middleware())
		}
		chat.POST("", chatHandler.Chat)
		chat.POST("/stream", chatHandler.ChatStream)

		apiV1.POST("/parse", chatHandler.Parse)
		apiV1.POST("/answers/correct", correctionHandler.Correct)
		apiV1.GET("/answers/corrections", correctionHandler.List)
		apiV1.POST("/feedback", feedbackHandler.Submit)
	}

	return router
}
