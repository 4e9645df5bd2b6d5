package models

import (
	"time"

	"github.com/google/uuid"
)

type ChallengeStatus string

const (
	ChallengeStatusPending  ChallengeStatus = "PENDING"
	ChallengeStatusAccepted ChallengeStatus = "ACCEPTED"
	ChallengeStatusRejected ChallengeStatus = "REJECTED"
	ChallengeStatusSettled  ChallengeStatus = "SETTLED"
	ChallengeStatusExpired  ChallengeStatus = "EXPIRED"
)

// Challenge is a head-to-head wager issued at a player ranked above the
// challenger. The challenger's stake is escrowed from issue time; the
// challenged player's matching stake only on acceptance. A nil RoundID binds
// at the first finalized round in which both players recorded scores.
type Challenge struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ChallengerID uint            `gorm:"not null;index" json:"challenger_id"`
	ChallengedID uint            `gorm:"not null;index" json:"challenged_id"`
	Wager        int64           `gorm:"not null" json:"wager"`
	RoundID      *uint           `gorm:"index" json:"round_id"`
	Status       ChallengeStatus `gorm:"size:50;not null;default:PENDING;index" json:"status"`
	WinnerID     *uint           `json:"winner_id"`
	IssuedAt     time.Time       `json:"issued_at"`
	RespondedAt  *time.Time      `json:"responded_at"`
	SettledAt    *time.Time      `json:"settled_at"`
}

// TableName specifies the table name for Challenge model
func (Challenge) TableName() string {
	return "challenges"
}

// IssueChallengeRequest represents a request to issue a challenge
type IssueChallengeRequest struct {
	ChallengedID uint  `json:"challenged_id" binding:"required"`
	Wager        int64 `json:"wager" binding:"required,gt=0"`
	RoundID      *uint `json:"round_id"`
}

// RespondChallengeRequest represents the challenged player's answer
type RespondChallengeRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}
