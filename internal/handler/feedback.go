package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"costa-assist/internal/model"
	"costa-assist/internal/service"
)

// FeedbackHandler handles feedback-related HTTP requests
type FeedbackHandler struct {
	chatService *service.ChatService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(chatService *service.ChatService) *FeedbackHandler {
	return &FeedbackHandler{
		chatService: chatService,
	}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	req.Rating = strings.ToLower(strings.TrimSpace(req.Rating))
	validRatings := map[string]bool{
		"up":   true,
		"down": true,
	}
	if !validRatings[req.Rating] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rating. Must be one of: up, down"})
		return
	}

	if err := h.chatService.LogFeedback(c.Request.Context(), &req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log feedback: " + err.Error()})
		return
	}

	response := model.FeedbackResponse{
		Success: true,
		Message: "Feedback logged successfully",
	}

	c.JSON(http.StatusOK, response)
}
