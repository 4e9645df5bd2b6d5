package models

import (
	"time"

	"github.com/google/uuid"
)

type PredictionStatus string

const (
	PredictionStatusPending        PredictionStatus = "PENDING"
	PredictionStatusSettledWin     PredictionStatus = "SETTLED_WIN"
	PredictionStatusSettledPartial PredictionStatus = "SETTLED_PARTIAL"
	PredictionStatusSettledLoss    PredictionStatus = "SETTLED_LOSS"
)

// Prediction is a top-3 finish forecast ("blessing") for an upcoming round.
// RoundID stays nil until settlement binds the prediction to the round that
// finalizes next; the wager is escrowed from placement until settlement.
type Prediction struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	PlayerID   uint             `gorm:"not null;index;uniqueIndex:idx_prediction_pending,where:status = 'PENDING'" json:"player_id"`
	WindowID   uint             `gorm:"not null;index;uniqueIndex:idx_prediction_pending,where:status = 'PENDING'" json:"window_id"`
	RoundID    *uint            `gorm:"index" json:"round_id"`
	FirstPick  string           `gorm:"size:255;not null" json:"first_pick"`
	SecondPick string           `gorm:"size:255;not null" json:"second_pick"`
	ThirdPick  string           `gorm:"size:255;not null" json:"third_pick"`
	Wager      int64            `gorm:"not null" json:"wager"`
	Status     PredictionStatus `gorm:"size:50;not null;default:PENDING;index" json:"status"`
	Payout     int64            `gorm:"default:0" json:"payout"`
	PlacedAt   time.Time        `json:"placed_at"`
	SettledAt  *time.Time       `json:"settled_at"`
}

// TableName specifies the table name for Prediction model
func (Prediction) TableName() string {
	return "predictions"
}

// PlacePredictionRequest represents a request to place a prediction
type PlacePredictionRequest struct {
	Picks []string `json:"picks" binding:"required,len=3"`
	Wager int64    `json:"wager" binding:"required,gt=0"`
}
