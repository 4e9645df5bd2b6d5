package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pulp-league/internal/models"
	"pulp-league/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PredictionService handles top-3 finish predictions ("blessings"). The wager
// is escrowed at placement and resolved when the bound round settles: exact
// order pays double, the right trio in the wrong order returns the stake,
// anything else forfeits it.
type PredictionService struct {
	db       *gorm.DB
	repo     *repository.Repository
	ledger   *LedgerService
	minWager int64
}

// NewPredictionService creates a new PredictionService
func NewPredictionService(
	db *gorm.DB,
	repo *repository.Repository,
	ledger *LedgerService,
	minWager int64,
) *PredictionService {
	return &PredictionService{
		db:       db,
		repo:     repo,
		ledger:   ledger,
		minWager: minWager,
	}
}

// Place validates and places a prediction for the current open window,
// escrowing the wager. All validation runs before any balance mutation.
func (s *PredictionService) Place(
	ctx context.Context,
	playerID uint,
	req *models.PlacePredictionRequest,
) (*models.Prediction, error) {
	window, err := s.repo.GetOpenWindow(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWindowClosed
		}
		return nil, err
	}

	if req.Wager < s.minWager {
		return nil, ErrInvalidWager
	}

	if err := s.validatePicks(ctx, req.Picks); err != nil {
		return nil, err
	}

	pending, err := s.repo.HasPendingPrediction(ctx, playerID, window.ID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrDuplicatePrediction
	}

	prediction := &models.Prediction{
		ID:         uuid.New(),
		PlayerID:   playerID,
		WindowID:   window.ID,
		FirstPick:  req.Picks[0],
		SecondPick: req.Picks[1],
		ThirdPick:  req.Picks[2],
		Wager:      req.Wager,
		Status:     models.PredictionStatusPending,
		PlacedAt:   time.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.DebitTx(tx, playerID, req.Wager,
			models.LedgerEntryEscrow, &prediction.ID, "prediction wager escrow"); err != nil {
			return err
		}
		// The partial unique index on pending rows backs the one-per-window
		// check against concurrent placements
		if err := tx.Create(prediction).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicatePrediction
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return prediction, nil
}

// validatePicks checks for three distinct, known player names
func (s *PredictionService) validatePicks(ctx context.Context, picks []string) error {
	if len(picks) != 3 {
		return ErrInvalidPicks
	}

	seen := make(map[string]bool, 3)
	for _, pick := range picks {
		if pick == "" || seen[pick] {
			return ErrInvalidPicks
		}
		seen[pick] = true
	}

	players, err := s.repo.GetPlayersByNames(ctx, picks)
	if err != nil {
		return err
	}
	if len(players) != 3 {
		return ErrInvalidPicks
	}

	return nil
}

// SettleTx resolves a pending prediction against the round's top-3 finishers
// inside an existing transaction. Settling a non-pending prediction returns
// ErrAlreadySettled, which callers treat as a no-op.
func (s *PredictionService) SettleTx(tx *gorm.DB, prediction *models.Prediction, roundID uint, top3 [3]string) error {
	if prediction.Status != models.PredictionStatusPending {
		return ErrAlreadySettled
	}

	picks := [3]string{prediction.FirstPick, prediction.SecondPick, prediction.ThirdPick}

	var status models.PredictionStatus
	var payout int64

	switch {
	case picks == top3:
		status = models.PredictionStatusSettledWin
		payout = prediction.Wager * 2
	case sameTrio(picks, top3):
		status = models.PredictionStatusSettledPartial
		payout = prediction.Wager
	default:
		status = models.PredictionStatusSettledLoss
	}

	// Claim the row before paying out. The caller's copy may be stale when
	// two settlement passes overlap (synchronous finalize vs the sweeper),
	// so the guard re-checks status against the stored row, same idiom as
	// the balance guard in the ledger.
	now := time.Now()
	result := tx.Model(&models.Prediction{}).
		Where("id = ? AND status = ?", prediction.ID, models.PredictionStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"payout":     payout,
			"round_id":   roundID,
			"settled_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadySettled
	}

	if payout > 0 {
		entryType := models.LedgerEntryPayout
		description := "prediction payout"
		if status == models.PredictionStatusSettledPartial {
			entryType = models.LedgerEntryRefund
			description = "prediction stake returned"
		}
		if err := s.ledger.CreditTx(tx, prediction.PlayerID, payout,
			entryType, &prediction.ID, description); err != nil {
			return fmt.Errorf("failed to credit prediction payout: %w", err)
		}
	}

	prediction.Status = status
	prediction.Payout = payout
	prediction.RoundID = &roundID
	prediction.SettledAt = &now

	wonIncr := int64(0)
	lostIncr := int64(0)
	winsIncr := int64(0)
	lossesIncr := int64(0)
	switch status {
	case models.PredictionStatusSettledWin:
		winsIncr = 1
		wonIncr = payout - prediction.Wager
	case models.PredictionStatusSettledLoss:
		lossesIncr = 1
		lostIncr = prediction.Wager
	}

	return s.repo.IncrementWagerStatsTx(tx,
		prediction.PlayerID, 1, winsIncr, lossesIncr, prediction.Wager, wonIncr, lostIncr)
}

// sameTrio reports whether the two pick sets contain the same three names in
// any order
func sameTrio(a, b [3]string) bool {
	for _, name := range a {
		if name != b[0] && name != b[1] && name != b[2] {
			return false
		}
	}
	return true
}

// GetPlayerPredictions returns a player's predictions, newest first
func (s *PredictionService) GetPlayerPredictions(
	ctx context.Context,
	playerID uint,
	limit int,
	offset int,
) ([]*models.Prediction, error) {
	return s.repo.GetPlayerPredictions(ctx, playerID, limit, offset)
}
