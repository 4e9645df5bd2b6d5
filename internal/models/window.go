package models

import (
	"time"
)

type WindowStatus string

const (
	WindowStatusClosed WindowStatus = "CLOSED"
	WindowStatusOpen   WindowStatus = "OPEN"
	WindowStatusLocked WindowStatus = "LOCKED"
)

// BettingWindow gates prediction and advantage-store writes. Only one window
// is OPEN at a time; locking a window never touches escrowed funds.
type BettingWindow struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Status    WindowStatus `gorm:"size:20;not null;default:CLOSED;index" json:"status"`
	OpensAt   *time.Time   `json:"opens_at"`
	LockedAt  *time.Time   `json:"locked_at"`
	ClosedAt  *time.Time   `json:"closed_at"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TableName specifies the table name for BettingWindow model
func (BettingWindow) TableName() string {
	return "betting_windows"
}
