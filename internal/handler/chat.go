package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"costa-assist/internal/model"
	"costa-assist/internal/service"
)

// ChatHandler handles chat widget HTTP requests
type ChatHandler struct {
	chatService *service.ChatService
	maxMessage  int
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService, maxMessage int) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		maxMessage:  maxMessage,
	}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	response, err := h.chatService.Chat(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Chat failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// ChatStream handles POST /api/v1/chat/stream - SSE streaming reply
func (h *ChatHandler) ChatStream(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	sendSSE(c, "start", map[string]any{"message": req.Message})
	flusher.Flush()

	response, err := h.chatService.ChatStream(c.Request.Context(), req, func(event string, data any) error {
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})
	if err != nil {
		sendSSE(c, "error", map[string]any{"error": err.Error()})
		flusher.Flush()
		return
	}

	sendSSE(c, "done", map[string]any{"chatId": response.ChatID})
	flusher.Flush()
}

// Parse handles POST /api/v1/parse
func (h *ChatHandler) Parse(c *gin.Context) {
	var req model.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.chatService.Parse(req.Question, req.Locale))
}

// bind decodes and checks a chat request, writing the 400 response itself
func (h *ChatHandler) bind(c *gin.Context) (*model.ChatRequest, bool) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return nil, false
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: message is empty"})
		return nil, false
	}
	if h.maxMessage > 0 && len([]rune(req.Message)) > h.maxMessage {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request: message longer than %d characters", h.maxMessage)})
		return nil, false
	}
	return &req, true
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data == nil {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
		return
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, jsonData)
}
