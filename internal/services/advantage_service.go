package services

import (
	"context"
	"errors"
	"time"

	"pulp-league/internal/models"
	"pulp-league/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdvantageService sells catalog perks for PULPs. Purchases are gated by the
// betting window; a player holds at most one unexpired, unused instance per
// key. Unused instances lapse silently at expiry — expiry is evaluated on
// every read, so no cleanup job exists.
type AdvantageService struct {
	db        *gorm.DB
	repo      *repository.Repository
	ledger    *LedgerService
	eodExpiry bool
}

// NewAdvantageService creates a new AdvantageService
func NewAdvantageService(
	db *gorm.DB,
	repo *repository.Repository,
	ledger *LedgerService,
	eodExpiry bool,
) *AdvantageService {
	return &AdvantageService{
		db:        db,
		repo:      repo,
		ledger:    ledger,
		eodExpiry: eodExpiry,
	}
}

// Catalog returns all purchasable advantages
func (s *AdvantageService) Catalog(ctx context.Context) ([]*models.Advantage, error) {
	return s.repo.ListAdvantages(ctx)
}

// Purchase buys an advantage for the player during an open window
func (s *AdvantageService) Purchase(
	ctx context.Context,
	playerID uint,
	key string,
) (*models.ActiveAdvantage, error) {
	if _, err := s.repo.GetOpenWindow(ctx); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWindowClosed
		}
		return nil, err
	}

	advantage, err := s.repo.GetAdvantage(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now()

	owned, err := s.repo.HasUnusedAdvantage(ctx, playerID, key, now)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, ErrAlreadyOwned
	}

	instance := &models.ActiveAdvantage{
		ID:           uuid.New(),
		AdvantageKey: advantage.Key,
		PlayerID:     playerID,
		PurchasedAt:  now,
		ExpiresAt:    s.expiry(now, advantage),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lapsed unused instances stay used_at NULL; stamp them retired so
		// the partial unique index only guards live ownership
		if err := tx.Model(&models.ActiveAdvantage{}).
			Where("player_id = ? AND advantage_key = ? AND used_at IS NULL AND expires_at <= ?",
				playerID, key, now).
			Update("used_at", gorm.Expr("expires_at")).Error; err != nil {
			return err
		}
		if err := s.ledger.DebitTx(tx, playerID, advantage.CostPulps,
			models.LedgerEntryPurchase, &instance.ID, "advantage purchase: "+advantage.Name); err != nil {
			return err
		}
		// The index backs the one-live-instance check against concurrent buys
		if err := tx.Create(instance).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyOwned
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return instance, nil
}

// expiry computes when a fresh instance lapses: end of the purchase day in
// the windowed variant, otherwise the catalog duration after purchase
func (s *AdvantageService) expiry(now time.Time, advantage *models.Advantage) time.Time {
	if s.eodExpiry {
		return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	}
	return now.Add(time.Duration(advantage.DurationHours) * time.Hour)
}

// ListActive returns the player's unexpired, unused advantages
func (s *AdvantageService) ListActive(ctx context.Context, playerID uint) ([]*models.ActiveAdvantage, error) {
	return s.repo.GetActiveAdvantages(ctx, playerID, time.Now())
}

// Use marks an owned advantage instance as used
func (s *AdvantageService) Use(ctx context.Context, playerID uint, instanceID uuid.UUID) (*models.ActiveAdvantage, error) {
	instance, err := s.repo.GetActiveAdvantageByID(ctx, instanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now()
	if instance.PlayerID != playerID || instance.UsedAt != nil || !instance.ExpiresAt.After(now) {
		return nil, ErrNotFound
	}

	instance.UsedAt = &now
	if err := s.db.WithContext(ctx).Save(instance).Error; err != nil {
		return nil, err
	}

	return instance, nil
}

// MarkUsedTx marks the player's earliest unused instance of a key as used,
// inside an existing transaction. A no-op when none is held — settlement
// calls this from scorecard data that may reference lapsed perks.
func (s *AdvantageService) MarkUsedTx(tx *gorm.DB, playerID uint, key string, usedAt time.Time) error {
	var instance models.ActiveAdvantage
	err := tx.
		Where("player_id = ? AND advantage_key = ? AND used_at IS NULL AND expires_at > ?",
			playerID, key, usedAt).
		Order("purchased_at ASC").
		First(&instance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	instance.UsedAt = &usedAt
	return tx.Save(&instance).Error
}
