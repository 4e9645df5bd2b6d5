package handlers

import (
	"net/http"

	"pulp-league/internal/auth"
	"pulp-league/internal/models"
	"pulp-league/internal/services"

	"github.com/gin-gonic/gin"
)

type PredictionHandler struct {
	predictionService *services.PredictionService
}

func NewPredictionHandler(predictionService *services.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictionService: predictionService}
}

// PlacePrediction places a top-3 prediction in the current window
// POST /api/predictions
func (h *PredictionHandler) PlacePrediction(c *gin.Context) {
	playerID, exists := auth.GetPlayerID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.PlacePredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prediction, err := h.predictionService.Place(c.Request.Context(), playerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, prediction)
}

// GetMyPredictions returns the caller's predictions
// GET /api/predictions
func (h *PredictionHandler) GetMyPredictions(c *gin.Context) {
	playerID, exists := auth.GetPlayerID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := parsePagination(c)

	predictions, err := h.predictionService.GetPlayerPredictions(c.Request.Context(), playerID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch predictions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"predictions": predictions})
}
