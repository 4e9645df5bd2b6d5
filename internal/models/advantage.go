package models

import (
	"time"

	"github.com/google/uuid"
)

// Advantage is a catalog entry for a purchasable gameplay perk. Static
// reference data, seeded at migration time.
type Advantage struct {
	Key           string `gorm:"primaryKey;size:100" json:"key"`
	Name          string `gorm:"size:255;not null" json:"name"`
	Icon          string `gorm:"size:50" json:"icon"`
	CostPulps     int64  `gorm:"not null" json:"cost_pulps"`
	DurationHours int    `gorm:"not null" json:"duration_hours"`
}

// TableName specifies the table name for Advantage model
func (Advantage) TableName() string {
	return "advantages"
}

// ActiveAdvantage is an owned instance of a catalog advantage. A player holds
// at most one unexpired, unused instance per key; expiry is checked lazily on
// every read, so lapsed instances need no background cleanup.
type ActiveAdvantage struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AdvantageKey string     `gorm:"size:100;not null;index;uniqueIndex:idx_advantage_unused,where:used_at IS NULL" json:"advantage_key"`
	PlayerID     uint       `gorm:"not null;index;uniqueIndex:idx_advantage_unused,where:used_at IS NULL" json:"player_id"`
	PurchasedAt  time.Time  `json:"purchased_at"`
	ExpiresAt    time.Time  `gorm:"index" json:"expires_at"`
	UsedAt       *time.Time `json:"used_at"`
}

// TableName specifies the table name for ActiveAdvantage model
func (ActiveAdvantage) TableName() string {
	return "active_advantages"
}

// PurchaseAdvantageRequest represents a request to buy an advantage
type PurchaseAdvantageRequest struct {
	Key string `json:"key" binding:"required"`
}
