package services

import (
	"fmt"
	"testing"
	"time"

	"pulp-league/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh named in-memory database per test. cache=shared
// keeps the database alive across the connection pool.
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Player{},
		&models.LedgerEntry{},
		&models.BettingWindow{},
		&models.Round{},
		&models.RoundScore{},
		&models.Prediction{},
		&models.Challenge{},
		&models.Advantage{},
		&models.ActiveAdvantage{},
		&models.WagerStatistics{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func createTestPlayer(t *testing.T, db *gorm.DB, name string, balance int64) *models.Player {
	player := &models.Player{Name: name, Balance: balance}
	if err := db.Create(player).Error; err != nil {
		t.Fatalf("failed to create player %s: %v", name, err)
	}
	return player
}

func openTestWindow(t *testing.T, db *gorm.DB) *models.BettingWindow {
	now := time.Now()
	window := &models.BettingWindow{
		Status:  models.WindowStatusOpen,
		OpensAt: &now,
	}
	if err := db.Create(window).Error; err != nil {
		t.Fatalf("failed to open window: %v", err)
	}
	return window
}

type testScore struct {
	playerID uint
	strokes  int
	points   float64
}

// createFinalizedRound writes an already-settled finalized round with the
// given scorecard, for standings setup.
func createFinalizedRound(t *testing.T, db *gorm.DB, name string, scores []testScore) *models.Round {
	now := time.Now()
	round := &models.Round{
		Name:        name,
		PlayedAt:    now,
		Status:      models.RoundStatusFinalized,
		FinalizedAt: &now,
		SettledAt:   &now,
	}
	if err := db.Create(round).Error; err != nil {
		t.Fatalf("failed to create round %s: %v", name, err)
	}

	for _, s := range scores {
		score := &models.RoundScore{
			RoundID:  round.ID,
			PlayerID: s.playerID,
			Strokes:  s.strokes,
			Points:   decimal.NewFromFloat(s.points),
		}
		if err := db.Create(score).Error; err != nil {
			t.Fatalf("failed to create score for player %d: %v", s.playerID, err)
		}
	}

	return round
}

func playerBalance(t *testing.T, db *gorm.DB, playerID uint) int64 {
	var player models.Player
	if err := db.First(&player, playerID).Error; err != nil {
		t.Fatalf("failed to load player %d: %v", playerID, err)
	}
	return player.Balance
}
