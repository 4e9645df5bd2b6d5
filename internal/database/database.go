package database

import (
	"fmt"
	"log"

	"pulp-league/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	// Core league models first
	coreModels := []interface{}{
		&models.Player{},
		&models.LedgerEntry{},
		&models.Round{},
		&models.RoundScore{},
	}

	for _, model := range coreModels {
		if err := DB.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	// Economy models
	economyModels := []interface{}{
		&models.BettingWindow{},
		&models.Prediction{},
		&models.Challenge{},
		&models.Advantage{},
		&models.ActiveAdvantage{},
		&models.WagerStatistics{},
	}

	for _, model := range economyModels {
		if err := DB.AutoMigrate(model); err != nil {
			log.Printf("Warning: migration issue for %T: %v", model, err)
		}
	}

	return nil
}

// DefaultAdvantages is the stock advantage catalog. Seeded once; existing
// rows are never overwritten so leagues can tune costs in place.
var DefaultAdvantages = []models.Advantage{
	{Key: "mulligan", Name: "Mulligan", Icon: "🔄", CostPulps: 50, DurationHours: 168},
	{Key: "gimme_putt", Name: "Gimme Putt", Icon: "🎯", CostPulps: 40, DurationHours: 168},
	{Key: "tree_pardon", Name: "Tree Pardon", Icon: "🌳", CostPulps: 30, DurationHours: 168},
	{Key: "wind_whisper", Name: "Wind Whisper", Icon: "🌬️", CostPulps: 25, DurationHours: 72},
}

// SeedAdvantageCatalog inserts the default advantage catalog entries
func SeedAdvantageCatalog(db *gorm.DB) error {
	for _, adv := range DefaultAdvantages {
		if err := db.Where(models.Advantage{Key: adv.Key}).FirstOrCreate(&adv).Error; err != nil {
			return fmt.Errorf("failed to seed advantage %s: %w", adv.Key, err)
		}
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
