package models

import (
	"time"

	"github.com/google/uuid"
)

// WagerStatistics aggregates a player's wager outcomes across predictions and
// challenges. Counters are maintained with an atomic upsert.
type WagerStatistics struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlayerID     uint      `gorm:"uniqueIndex;not null" json:"player_id"`
	TotalWagers  int64     `gorm:"default:0" json:"total_wagers"`
	Wins         int64     `gorm:"default:0" json:"wins"`
	Losses       int64     `gorm:"default:0" json:"losses"`
	TotalWagered int64     `gorm:"default:0" json:"total_wagered"`
	TotalWon     int64     `gorm:"default:0" json:"total_won"`
	TotalLost    int64     `gorm:"default:0" json:"total_lost"`
	WinRate      float64   `gorm:"type:decimal(5,2);default:0" json:"win_rate"`
	UpdatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for WagerStatistics model
func (WagerStatistics) TableName() string {
	return "wager_statistics"
}
