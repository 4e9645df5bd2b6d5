package models

import (
	"time"

	"github.com/google/uuid"
)

type LedgerEntryType string

const (
	LedgerEntrySeed     LedgerEntryType = "SEED"
	LedgerEntryEscrow   LedgerEntryType = "ESCROW"
	LedgerEntryRefund   LedgerEntryType = "REFUND"
	LedgerEntryPayout   LedgerEntryType = "PAYOUT"
	LedgerEntryPurchase LedgerEntryType = "PURCHASE"
)

// LedgerEntry records a single PULP balance mutation. Amount is signed:
// credits are positive, debits negative.
type LedgerEntry struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PlayerID    uint            `gorm:"not null;index" json:"player_id"`
	Type        LedgerEntryType `gorm:"size:50;not null;index" json:"type"`
	Amount      int64           `gorm:"not null" json:"amount"`
	Reference   *uuid.UUID      `gorm:"type:uuid;index" json:"reference,omitempty"`
	Description string          `gorm:"type:text" json:"description"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for LedgerEntry model
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
