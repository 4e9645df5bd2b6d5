package services

import (
	"errors"
	"fmt"
	"time"

	"pulp-league/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerService is the single gate for PULP balance mutations. Debits use a
// guarded atomic UPDATE so concurrent wagers against the same balance cannot
// double-spend; every mutation writes a ledger entry in the same transaction.
type LedgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// Credit adds PULPs to a player's balance in its own transaction
func (s *LedgerService) Credit(
	playerID uint,
	amount int64,
	entryType models.LedgerEntryType,
	reference *uuid.UUID,
	description string,
) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.CreditTx(tx, playerID, amount, entryType, reference, description)
	})
}

// Debit removes PULPs from a player's balance in its own transaction
func (s *LedgerService) Debit(
	playerID uint,
	amount int64,
	entryType models.LedgerEntryType,
	reference *uuid.UUID,
	description string,
) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.DebitTx(tx, playerID, amount, entryType, reference, description)
	})
}

// CreditTx adds PULPs inside an existing transaction
func (s *LedgerService) CreditTx(
	tx *gorm.DB,
	playerID uint,
	amount int64,
	entryType models.LedgerEntryType,
	reference *uuid.UUID,
	description string,
) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	result := tx.Model(&models.Player{}).
		Where("id = ?", playerID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return s.recordEntry(tx, playerID, amount, entryType, reference, description)
}

// DebitTx removes PULPs inside an existing transaction. The balance guard in
// the WHERE clause serializes concurrent debits per player; zero affected
// rows means either an unknown player or insufficient funds.
func (s *LedgerService) DebitTx(
	tx *gorm.DB,
	playerID uint,
	amount int64,
	entryType models.LedgerEntryType,
	reference *uuid.UUID,
	description string,
) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	result := tx.Model(&models.Player{}).
		Where("id = ? AND balance >= ?", playerID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var player models.Player
		if err := tx.Where("id = ?", playerID).First(&player).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return ErrInsufficientFunds
	}

	return s.recordEntry(tx, playerID, -amount, entryType, reference, description)
}

func (s *LedgerService) recordEntry(
	tx *gorm.DB,
	playerID uint,
	amount int64,
	entryType models.LedgerEntryType,
	reference *uuid.UUID,
	description string,
) error {
	entry := &models.LedgerEntry{
		ID:          uuid.New(),
		PlayerID:    playerID,
		Type:        entryType,
		Amount:      amount,
		Reference:   reference,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}
	return nil
}

// GetBalance returns a player's current PULP balance
func (s *LedgerService) GetBalance(playerID uint) (int64, error) {
	var player models.Player
	if err := s.db.First(&player, playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return player.Balance, nil
}
