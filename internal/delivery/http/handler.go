package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/labelscan/labelscan/internal/domain"
)

// IngredientProcessor is the usecase behind POST /process_ingredients
type IngredientProcessor interface {
	ProcessIngredients(ctx context.Context, request domain.ProcessRequest) ([]domain.EnrichmentRecord, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	processor IngredientProcessor
}

// NewHandler creates a new HTTP handler
func NewHandler(processor IngredientProcessor) *Handler {
	return &Handler{processor: processor}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "labelscan-enrichment",
		"version": "1.0.0",
	})
}

// ProcessIngredients annotates the posted ingredient list
func (h *Handler) ProcessIngredients(c *gin.Context) {
	if h.processor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Enrichment service not configured",
		})
		return
	}

	var request domain.ProcessRequest
	if err := c.ShouldBindJSON(&request); err != nil || len(request.Ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No ingredients provided"})
		return
	}

	records, err := h.processor.ProcessIngredients(c.Request.Context(), request)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No ingredients provided"})
			return
		}
		log.Printf("[HTTP] process_ingredients failed (request_id=%s): %v", c.GetHeader(RequestIDHeader), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process ingredients"})
		return
	}

	c.JSON(http.StatusOK, domain.ProcessResponse{Results: records})
}
