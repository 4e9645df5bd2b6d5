package handlers

import (
	"net/http"
	"strconv"
	"time"

	"pulp-league/internal/models"
	"pulp-league/internal/repository"
	"pulp-league/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoundHandler struct {
	db         *gorm.DB
	repo       *repository.Repository
	settlement *services.SettlementService
}

func NewRoundHandler(db *gorm.DB, repo *repository.Repository, settlement *services.SettlementService) *RoundHandler {
	return &RoundHandler{
		db:         db,
		repo:       repo,
		settlement: settlement,
	}
}

// CreateRound creates a new round
// POST /api/admin/rounds
func (h *RoundHandler) CreateRound(c *gin.Context) {
	var req models.CreateRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	playedAt := time.Now()
	if req.PlayedAt != nil {
		playedAt = *req.PlayedAt
	}

	round := &models.Round{
		Name:       req.Name,
		CourseName: req.CourseName,
		PlayedAt:   playedAt,
		Status:     models.RoundStatusScheduled,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(round).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create round"})
		return
	}

	c.JSON(http.StatusCreated, round)
}

// RecordScore records or replaces one scorecard line for a round
// POST /api/admin/rounds/:id/scores
func (h *RoundHandler) RecordScore(c *gin.Context) {
	roundID, err := parseRoundID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid round id"})
		return
	}

	round, err := h.repo.GetRoundByID(c.Request.Context(), roundID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "round not found"})
		return
	}

	if round.FinalizedAt != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "round is finalized, scores are read-only"})
		return
	}

	var req models.RecordScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.repo.GetPlayerByID(c.Request.Context(), req.PlayerID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown player"})
		return
	}

	score := &models.RoundScore{
		RoundID:      roundID,
		PlayerID:     req.PlayerID,
		Strokes:      req.Strokes,
		Points:       decimal.NewFromFloat(req.Points),
		AdvantageKey: req.AdvantageKey,
	}

	err = h.db.WithContext(c.Request.Context()).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "round_id"}, {Name: "player_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"strokes", "points", "advantage_key",
		}),
	}).Create(score).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record score"})
		return
	}

	c.JSON(http.StatusCreated, score)
}

// FinalizeRound finalizes a round's scores and settles all wagers bound to it
// POST /api/admin/rounds/:id/finalize
func (h *RoundHandler) FinalizeRound(c *gin.Context) {
	roundID, err := parseRoundID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid round id"})
		return
	}

	report, svcErr := h.settlement.FinalizeRound(c.Request.Context(), roundID)
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetUnsettledRounds lists finalized rounds still awaiting a clean settlement
// GET /api/admin/rounds/unsettled
func (h *RoundHandler) GetUnsettledRounds(c *gin.Context) {
	rounds, err := h.repo.GetUnsettledFinalizedRounds(c.Request.Context(), 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch rounds"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rounds": rounds})
}

// GetRound returns a round with its scores
// GET /api/rounds/:id
func (h *RoundHandler) GetRound(c *gin.Context) {
	roundID, err := parseRoundID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid round id"})
		return
	}

	round, err := h.repo.GetRoundByID(c.Request.Context(), roundID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "round not found"})
		return
	}

	scores, err := h.repo.GetRoundScores(c.Request.Context(), roundID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch scores"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"round":  round,
		"scores": scores,
	})
}

func parseRoundID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
