package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"pulp-league/internal/models"

	"gorm.io/gorm"
)

// AuthService handles player registration and login. League members log in
// with their display name; first login creates the player and seeds the
// starting PULP balance exactly once.
type AuthService struct {
	db              *gorm.DB
	ledger          *LedgerService
	startingBalance int64
	adminNames      map[string]bool
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB, ledger *LedgerService, startingBalance int64, adminPlayers []string) *AuthService {
	admins := make(map[string]bool, len(adminPlayers))
	for _, name := range adminPlayers {
		admins[name] = true
	}
	return &AuthService{
		db:              db,
		ledger:          ledger,
		startingBalance: startingBalance,
		adminNames:      admins,
	}
}

// Login finds or creates a player by display name
func (s *AuthService) Login(ctx context.Context, name string) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("player name is required")
	}

	var player models.Player
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&player).Error
	if err == nil {
		return &player, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	player = models.Player{
		Name:    name,
		IsAdmin: s.adminNames[name],
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&player).Error; err != nil {
			return err
		}
		if s.startingBalance > 0 {
			return s.ledger.CreditTx(tx, player.ID, s.startingBalance,
				models.LedgerEntrySeed, nil, "starting balance")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register player: %w", err)
	}

	log.Printf("Registered new player %q (id=%d)", player.Name, player.ID)

	// Re-read so the response carries the seeded balance
	if err := s.db.WithContext(ctx).First(&player, player.ID).Error; err != nil {
		return nil, err
	}

	return &player, nil
}

// GetPlayerByID retrieves a player by ID
func (s *AuthService) GetPlayerByID(ctx context.Context, playerID uint) (*models.Player, error) {
	var player models.Player
	if err := s.db.WithContext(ctx).First(&player, playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &player, nil
}
