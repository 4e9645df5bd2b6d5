package handlers

import (
	"net/http"

	"pulp-league/internal/auth"
	"pulp-league/internal/repository"
	"pulp-league/internal/services"

	"github.com/gin-gonic/gin"
)

type PlayerHandler struct {
	repo      *repository.Repository
	ledger    *services.LedgerService
	standings *services.StandingsService
}

func NewPlayerHandler(
	repo *repository.Repository,
	ledger *services.LedgerService,
	standings *services.StandingsService,
) *PlayerHandler {
	return &PlayerHandler{
		repo:      repo,
		ledger:    ledger,
		standings: standings,
	}
}

// ListPlayers returns all league players
// GET /api/players
func (h *PlayerHandler) ListPlayers(c *gin.Context) {
	players, err := h.repo.ListPlayers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list players"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"players": players})
}

// GetBalance returns the caller's PULP balance
// GET /api/players/balance
func (h *PlayerHandler) GetBalance(c *gin.Context) {
	playerID, exists := auth.GetPlayerID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	balance, err := h.ledger.GetBalance(playerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// GetLedger returns the caller's ledger history
// GET /api/players/ledger
func (h *PlayerHandler) GetLedger(c *gin.Context) {
	playerID, exists := auth.GetPlayerID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := parsePagination(c)

	entries, err := h.repo.GetLedgerEntries(c.Request.Context(), playerID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch ledger"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// GetStats returns the caller's wager statistics
// GET /api/players/stats
func (h *PlayerHandler) GetStats(c *gin.Context) {
	playerID, exists := auth.GetPlayerID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.repo.GetWagerStatistics(c.Request.Context(), playerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch statistics"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetLeaderboard returns the season standings
// GET /api/standings
func (h *PlayerHandler) GetLeaderboard(c *gin.Context) {
	rows, err := h.standings.Leaderboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute standings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"standings": rows})
}
