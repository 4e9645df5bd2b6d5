package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"pulp-league/internal/services"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps wager taxonomy errors to HTTP statuses and returns
// the message verbatim for the UI to surface
func respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, services.ErrWindowClosed),
		errors.Is(err, services.ErrDuplicatePrediction),
		errors.Is(err, services.ErrAlreadyOwned),
		errors.Is(err, services.ErrAlreadySettled),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrRoundFinalized):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidWager),
		errors.Is(err, services.ErrInvalidPicks),
		errors.Is(err, services.ErrInvalidOpponent),
		errors.Is(err, services.ErrRoundNotFinalized):
		status = http.StatusBadRequest
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// parsePagination reads limit/offset query params with sane bounds
func parsePagination(c *gin.Context) (int, int) {
	limit := 20
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}
