package handlers

import (
	"net/http"
	"strconv"

	"pulp-league/internal/services"

	"github.com/gin-gonic/gin"
)

type WindowHandler struct {
	windowService *services.WindowService
}

func NewWindowHandler(windowService *services.WindowService) *WindowHandler {
	return &WindowHandler{windowService: windowService}
}

// GetCurrentWindow returns the open betting window
// GET /api/windows/current
func (h *WindowHandler) GetCurrentWindow(c *gin.Context) {
	window, err := h.windowService.Current(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, window)
}

// OpenWindow opens a new betting window
// POST /api/admin/windows/open
func (h *WindowHandler) OpenWindow(c *gin.Context) {
	window, err := h.windowService.Open(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, window)
}

// LockWindow locks an open betting window
// POST /api/admin/windows/:id/lock
func (h *WindowHandler) LockWindow(c *gin.Context) {
	windowID, err := parseWindowID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window id"})
		return
	}

	window, svcErr := h.windowService.Lock(c.Request.Context(), windowID)
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, window)
}

// CloseWindow closes a locked betting window
// POST /api/admin/windows/:id/close
func (h *WindowHandler) CloseWindow(c *gin.Context) {
	windowID, err := parseWindowID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window id"})
		return
	}

	window, svcErr := h.windowService.Close(c.Request.Context(), windowID)
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, window)
}

func parseWindowID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
