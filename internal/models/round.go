package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RoundStatus string

const (
	RoundStatusScheduled RoundStatus = "SCHEDULED"
	RoundStatusFinalized RoundStatus = "FINALIZED"
)

// Round is a played league round. Wager settlement treats it as a read-only
// trigger: FinalizedAt marks scores as authoritative, SettledAt marks a fully
// completed settlement pass.
type Round struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"size:255;not null" json:"name"`
	CourseName  string      `gorm:"size:255" json:"course_name"`
	PlayedAt    time.Time   `json:"played_at"`
	Status      RoundStatus `gorm:"size:20;not null;default:SCHEDULED;index" json:"status"`
	FinalizedAt *time.Time  `json:"finalized_at"`
	SettledAt   *time.Time  `json:"settled_at"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TableName specifies the table name for Round model
func (Round) TableName() string {
	return "rounds"
}

// RoundScore is one player's scorecard line for a round: raw strokes plus the
// season points the league awarded for the finish. AdvantageKey records a perk
// redeemed during the round so settlement can mark the instance used.
type RoundScore struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	RoundID      uint            `gorm:"not null;uniqueIndex:idx_round_player" json:"round_id"`
	PlayerID     uint            `gorm:"not null;uniqueIndex:idx_round_player;index" json:"player_id"`
	Strokes      int             `gorm:"not null" json:"strokes"`
	Points       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"points"`
	AdvantageKey *string         `gorm:"size:100" json:"advantage_key,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TableName specifies the table name for RoundScore model
func (RoundScore) TableName() string {
	return "round_scores"
}

// CreateRoundRequest represents a request to create a round
type CreateRoundRequest struct {
	Name       string     `json:"name" binding:"required"`
	CourseName string     `json:"course_name"`
	PlayedAt   *time.Time `json:"played_at"`
}

// RecordScoreRequest represents one scorecard line submitted for a round
type RecordScoreRequest struct {
	PlayerID     uint    `json:"player_id" binding:"required"`
	Strokes      int     `json:"strokes" binding:"required,gt=0"`
	Points       float64 `json:"points"`
	AdvantageKey *string `json:"advantage_key"`
}
