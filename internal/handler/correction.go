package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"costa-assist/internal/model"
	"costa-assist/internal/service"
)

// CorrectionHandler handles the answer correction tool
type CorrectionHandler struct {
	correctionService *service.CorrectionService
}

// NewCorrectionHandler creates a new correction handler
func NewCorrectionHandler(correctionService *service.CorrectionService) *CorrectionHandler {
	return &CorrectionHandler{
		correctionService: correctionService,
	}
}

// Correct handles POST /api/v1/answers/correct
func (h *CorrectionHandler) Correct(c *gin.Context) {
	var req model.CorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.BadAnswer) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: question and badAnswer are required"})
		return
	}

	response, err := h.correctionService.Correct(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFilters) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Correction failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// List handles GET /api/v1/answers/corrections
func (h *CorrectionHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: limit must be a number"})
		return
	}

	corrections, err := h.correctionService.Recent(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, service.ErrNoStore) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Corrections are not stored"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list corrections: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"corrections": corrections,
		"count":       len(corrections),
	})
}
