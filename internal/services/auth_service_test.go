package services

import (
	"context"
	"testing"

	"pulp-league/internal/models"

	"gorm.io/gorm"
)

func newTestAuthService(db *gorm.DB) *AuthService {
	return NewAuthService(db, NewLedgerService(db), 100, []string{"boss"})
}

func TestLoginCreatesAndSeeds(t *testing.T) {
	db := setupTestDB(t)
	service := newTestAuthService(db)
	ctx := context.Background()

	player, err := service.Login(ctx, "alice")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if player.Balance != 100 {
		t.Errorf("expected seeded balance 100, got %d", player.Balance)
	}
	if player.IsAdmin {
		t.Error("expected regular player")
	}

	var seedCount int64
	db.Model(&models.LedgerEntry{}).
		Where("player_id = ? AND type = ?", player.ID, models.LedgerEntrySeed).
		Count(&seedCount)
	if seedCount != 1 {
		t.Errorf("expected 1 seed entry, got %d", seedCount)
	}

	// Second login returns the same player without re-seeding
	again, err := service.Login(ctx, "alice")
	if err != nil {
		t.Fatalf("second Login failed: %v", err)
	}
	if again.ID != player.ID {
		t.Errorf("expected same player, got %d and %d", player.ID, again.ID)
	}
	db.Model(&models.LedgerEntry{}).
		Where("player_id = ? AND type = ?", player.ID, models.LedgerEntrySeed).
		Count(&seedCount)
	if seedCount != 1 {
		t.Errorf("expected seed balance granted once, got %d entries", seedCount)
	}
	if got := playerBalance(t, db, player.ID); got != 100 {
		t.Errorf("expected balance still 100, got %d", got)
	}
}

func TestLoginTrimsName(t *testing.T) {
	db := setupTestDB(t)
	service := newTestAuthService(db)
	ctx := context.Background()

	first, err := service.Login(ctx, "alice")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	second, err := service.Login(ctx, "  alice  ")
	if err != nil {
		t.Fatalf("Login with padding failed: %v", err)
	}
	if first.ID != second.ID {
		t.Error("expected padded name to resolve to the same player")
	}

	if _, err := service.Login(ctx, "   "); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestLoginAdminFlag(t *testing.T) {
	db := setupTestDB(t)
	service := newTestAuthService(db)
	ctx := context.Background()

	boss, err := service.Login(ctx, "boss")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !boss.IsAdmin {
		t.Error("expected boss flagged as admin")
	}
}
