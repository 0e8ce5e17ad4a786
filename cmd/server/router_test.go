package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"costa-assist/internal/config"
	"costa-assist/internal/service"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func testRouter(db pinger, perMinute float64) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		},
		Chat: config.ChatConfig{
			DefaultLocale:      "en",
			MaxMessageLength:   1000,
			MaxListings:        5,
			SearchLimit:        20,
			RateLimitPerMinute: perMinute,
			RateLimitBurst:     1,
		},
	}
	chatService := service.NewChatService(nil, nil, service.NewRanker(0.5, 0.3, 0.2), nil, nil, cfg.Chat)
	correctionService := service.NewCorrectionService(nil, nil, "en")
	return setupRouter(cfg, chatService, correctionService, db)
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter(nil, 0).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	w = httptest.NewRecorder()
	testRouter(stubPinger{err: errors.New("connection refused")}, 0).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}

func TestRoutes(t *testing.T) {
	r := testRouter(stubPinger{}, 0)

	for _, path := range []string{"/version", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/answers/correct",
		bytes.NewBufferString(`{"question":"villas in Ronda","badAnswer":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/en/properties?propertyType=villa")
}

func TestChatRateLimited(t *testing.T) {
	r := testRouter(nil, 1)

	send := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString(`{"message":"villas"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}
