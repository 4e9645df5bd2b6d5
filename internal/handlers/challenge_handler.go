package handlers

import (
	"net/http"

	"pulp-league/internal/auth"
	"pulp-league/internal/models"
	"pulp-league/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
}

func NewChallengeHandler(challengeService *services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challengeService: challengeService}
}

// IssueChallenge issues a head-to-head challenge
// POST /api/challenges
func (h *ChallengeHandler) IssueChallenge(c *gin.Context) {
	playerID, exists := auth.GetPlayerID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.IssueChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	challenge, err := h.challengeService.Issue(c.Request.Context(), playerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, challenge)
}

// RespondToChallenge accepts or rejects a challenge
// POST /api/challenges/:id/respond
func (h *ChallengeHandler) RespondToChallenge(c *gin.Context) {
	playerID, exists := auth.GetPlayerID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	challengeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid challenge id"})
		return
	}

	var req models.RespondChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	challenge, err := h.challengeService.Respond(c.Request.Context(), playerID, challengeID, *req.Accept)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, challenge)
}

// GetMyChallenges returns challenges the caller issued or received
// GET /api/challenges
func (h *ChallengeHandler) GetMyChallenges(c *gin.Context) {
	playerID, exists := auth.GetPlayerID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := parsePagination(c)

	challenges, err := h.challengeService.GetPlayerChallenges(c.Request.Context(), playerID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch challenges"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"challenges": challenges})
}
