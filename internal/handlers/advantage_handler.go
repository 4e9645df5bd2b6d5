package handlers

import (
	"net/http"

	"pulp-league/internal/auth"
	"pulp-league/internal/models"
	"pulp-league/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdvantageHandler struct {
	advantageService *services.AdvantageService
}

func NewAdvantageHandler(advantageService *services.AdvantageService) *AdvantageHandler {
	return &AdvantageHandler{advantageService: advantageService}
}

// GetCatalog returns the advantage catalog
// GET /api/advantages/catalog
func (h *AdvantageHandler) GetCatalog(c *gin.Context) {
	catalog, err := h.advantageService.Catalog(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch catalog"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"advantages": catalog})
}

// PurchaseAdvantage buys an advantage during an open window
// POST /api/advantages/purchase
func (h *AdvantageHandler) PurchaseAdvantage(c *gin.Context) {
	playerID, exists := auth.GetPlayerID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.PurchaseAdvantageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	instance, err := h.advantageService.Purchase(c.Request.Context(), playerID, req.Key)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, instance)
}

// GetMyAdvantages returns the caller's active advantages
// GET /api/advantages
func (h *AdvantageHandler) GetMyAdvantages(c *gin.Context) {
	playerID, exists := auth.GetPlayerID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	advantages, err := h.advantageService.ListActive(c.Request.Context(), playerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch advantages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"advantages": advantages})
}

// UseAdvantage marks an owned advantage as used
// POST /api/advantages/:id/use
func (h *AdvantageHandler) UseAdvantage(c *gin.Context) {
	playerID, exists := auth.GetPlayerID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	instanceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid advantage id"})
		return
	}

	instance, err := h.advantageService.Use(c.Request.Context(), playerID, instanceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, instance)
}
