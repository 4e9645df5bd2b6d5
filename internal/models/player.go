package models

import (
	"time"
)

// Player represents a league member holding a PULP balance
type Player struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	IsAdmin   bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Player model
func (Player) TableName() string {
	return "players"
}

// PlayerInfo is the compact player representation used in wager responses
type PlayerInfo struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
