package services

import (
	"errors"
	"testing"

	"pulp-league/internal/models"
)

func TestLedgerCreditDebit(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	player := createTestPlayer(t, db, "alice", 0)

	if err := ledger.Credit(player.ID, 100, models.LedgerEntrySeed, nil, "starting balance"); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if got := playerBalance(t, db, player.ID); got != 100 {
		t.Errorf("expected balance 100 after credit, got %d", got)
	}

	if err := ledger.Debit(player.ID, 30, models.LedgerEntryEscrow, nil, "wager escrow"); err != nil {
		t.Fatalf("Debit failed: %v", err)
	}
	if got := playerBalance(t, db, player.ID); got != 70 {
		t.Errorf("expected balance 70 after debit, got %d", got)
	}

	var entries []models.LedgerEntry
	if err := db.Where("player_id = ?", player.ID).Order("created_at ASC").Find(&entries).Error; err != nil {
		t.Fatalf("failed to load ledger entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(entries))
	}
	if entries[0].Amount != 100 || entries[0].Type != models.LedgerEntrySeed {
		t.Errorf("unexpected first entry: amount=%d type=%s", entries[0].Amount, entries[0].Type)
	}
	if entries[1].Amount != -30 || entries[1].Type != models.LedgerEntryEscrow {
		t.Errorf("unexpected second entry: amount=%d type=%s", entries[1].Amount, entries[1].Type)
	}

	balance, err := ledger.GetBalance(player.ID)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if balance != 70 {
		t.Errorf("GetBalance: expected 70, got %d", balance)
	}
}

func TestLedgerInsufficientFunds(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	player := createTestPlayer(t, db, "bob", 50)

	err := ledger.Debit(player.ID, 60, models.LedgerEntryEscrow, nil, "wager escrow")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// Failed debit must leave no trace
	if got := playerBalance(t, db, player.ID); got != 50 {
		t.Errorf("expected balance untouched at 50, got %d", got)
	}
	var count int64
	db.Model(&models.LedgerEntry{}).Where("player_id = ?", player.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected no ledger entries after failed debit, got %d", count)
	}
}

func TestLedgerUnknownPlayer(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)

	if err := ledger.Credit(999, 10, models.LedgerEntrySeed, nil, "seed"); !errors.Is(err, ErrNotFound) {
		t.Errorf("credit unknown player: expected ErrNotFound, got %v", err)
	}
	if err := ledger.Debit(999, 10, models.LedgerEntryEscrow, nil, "escrow"); !errors.Is(err, ErrNotFound) {
		t.Errorf("debit unknown player: expected ErrNotFound, got %v", err)
	}
}

func TestLedgerRejectsNonPositiveAmounts(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(db)
	player := createTestPlayer(t, db, "carol", 100)

	if err := ledger.Credit(player.ID, 0, models.LedgerEntrySeed, nil, "zero"); err == nil {
		t.Error("expected error for zero credit")
	}
	if err := ledger.Debit(player.ID, -5, models.LedgerEntryEscrow, nil, "negative"); err == nil {
		t.Error("expected error for negative debit")
	}
	if got := playerBalance(t, db, player.ID); got != 100 {
		t.Errorf("expected balance untouched at 100, got %d", got)
	}
}
