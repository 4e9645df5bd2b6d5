package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pulp-league/internal/models"
	"pulp-league/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeService handles head-to-head stroke-play wagers. A challenge may
// only target a player ranked strictly above the challenger; the challenger's
// stake is escrowed at issue time, the challenged player's only on
// acceptance. Rejection returns half the stake, the other half is the
// cowardice tax and goes to neither party.
type ChallengeService struct {
	db        *gorm.DB
	repo      *repository.Repository
	ledger    *LedgerService
	standings *StandingsService
	minWager  int64
}

// NewChallengeService creates a new ChallengeService
func NewChallengeService(
	db *gorm.DB,
	repo *repository.Repository,
	ledger *LedgerService,
	standings *StandingsService,
	minWager int64,
) *ChallengeService {
	return &ChallengeService{
		db:        db,
		repo:      repo,
		ledger:    ledger,
		standings: standings,
		minWager:  minWager,
	}
}

// Issue validates and issues a challenge, escrowing the challenger's wager
func (s *ChallengeService) Issue(
	ctx context.Context,
	challengerID uint,
	req *models.IssueChallengeRequest,
) (*models.Challenge, error) {
	if req.ChallengedID == challengerID {
		return nil, ErrInvalidOpponent
	}

	if _, err := s.repo.GetPlayerByID(ctx, req.ChallengedID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Wager < s.minWager {
		return nil, ErrInvalidWager
	}

	challengerRank, err := s.standings.SeasonRank(ctx, challengerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidOpponent
		}
		return nil, err
	}
	challengedRank, err := s.standings.SeasonRank(ctx, req.ChallengedID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidOpponent
		}
		return nil, err
	}

	// Rank 1 is best; the challenged player must sit strictly above
	if challengedRank >= challengerRank {
		return nil, ErrInvalidOpponent
	}

	// A bound round must exist and still take scores, otherwise the escrow
	// could never be released by settlement
	if req.RoundID != nil {
		round, err := s.repo.GetRoundByID(ctx, *req.RoundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if round.FinalizedAt != nil {
			return nil, ErrRoundFinalized
		}
	}

	challenge := &models.Challenge{
		ID:           uuid.New(),
		ChallengerID: challengerID,
		ChallengedID: req.ChallengedID,
		Wager:        req.Wager,
		RoundID:      req.RoundID,
		Status:       models.ChallengeStatusPending,
		IssuedAt:     time.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.DebitTx(tx, challengerID, req.Wager,
			models.LedgerEntryEscrow, &challenge.ID, "challenge wager escrow"); err != nil {
			return err
		}
		return tx.Create(challenge).Error
	})
	if err != nil {
		return nil, err
	}

	return challenge, nil
}

// Respond records the challenged player's answer. Accepting escrows their
// matching stake; rejecting refunds the challenger half the wager and
// forfeits the rest.
func (s *ChallengeService) Respond(
	ctx context.Context,
	challengedID uint,
	challengeID uuid.UUID,
	accept bool,
) (*models.Challenge, error) {
	challenge, err := s.repo.GetChallengeByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if challenge.ChallengedID != challengedID {
		return nil, ErrNotFound
	}

	// Accepting binds the challenged player's stake to a future settlement;
	// a round that already finalized will never release it
	if accept && challenge.RoundID != nil {
		round, err := s.repo.GetRoundByID(ctx, *challenge.RoundID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if round.FinalizedAt != nil {
			return nil, ErrRoundFinalized
		}
	}

	now := time.Now()
	newStatus := models.ChallengeStatusRejected
	if accept {
		newStatus = models.ChallengeStatusAccepted
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Claim the pending row before touching any balance. Two concurrent
		// responses both pass the reads above; only one wins this guard, so
		// the stake is escrowed at most once.
		result := tx.Model(&models.Challenge{}).
			Where("id = ? AND status = ?", challenge.ID, models.ChallengeStatusPending).
			Updates(map[string]interface{}{
				"status":       newStatus,
				"responded_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadySettled
		}

		if accept {
			return s.ledger.DebitTx(tx, challengedID, challenge.Wager,
				models.LedgerEntryEscrow, &challenge.ID, "challenge wager escrow (accepted)")
		}

		// Half the escrow back; the cowardice tax half returns to no one
		refund := challenge.Wager / 2
		if refund > 0 {
			return s.ledger.CreditTx(tx, challenge.ChallengerID, refund,
				models.LedgerEntryRefund, &challenge.ID,
				"challenge rejected: half wager returned, half forfeited")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	challenge.Status = newStatus
	challenge.RespondedAt = &now

	return challenge, nil
}

// SettleTx resolves an accepted challenge against round stroke counts inside
// an existing transaction. Lower strokes takes both stakes; a tie refunds
// each player their own wager.
func (s *ChallengeService) SettleTx(
	tx *gorm.DB,
	challenge *models.Challenge,
	roundID uint,
	strokes map[uint]int,
) error {
	if challenge.Status != models.ChallengeStatusAccepted {
		return ErrAlreadySettled
	}

	challengerStrokes, ok1 := strokes[challenge.ChallengerID]
	challengedStrokes, ok2 := strokes[challenge.ChallengedID]
	if !ok1 || !ok2 {
		return fmt.Errorf("round %d is missing scores for challenge %s", roundID, challenge.ID)
	}

	now := time.Now()
	pot := challenge.Wager * 2

	var winnerID *uint
	switch {
	case challengerStrokes < challengedStrokes:
		winnerID = &challenge.ChallengerID
	case challengedStrokes < challengerStrokes:
		winnerID = &challenge.ChallengedID
	}

	// Claim the row before paying out; the caller's copy may be stale when
	// two settlement passes overlap, and only the claiming pass credits
	result := tx.Model(&models.Challenge{}).
		Where("id = ? AND status = ?", challenge.ID, models.ChallengeStatusAccepted).
		Updates(map[string]interface{}{
			"status":     models.ChallengeStatusSettled,
			"winner_id":  winnerID,
			"round_id":   roundID,
			"settled_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadySettled
	}

	if winnerID != nil {
		if err := s.ledger.CreditTx(tx, *winnerID, pot,
			models.LedgerEntryPayout, &challenge.ID, "challenge won"); err != nil {
			return err
		}
	} else {
		// Tie: both stakes returned
		if err := s.ledger.CreditTx(tx, challenge.ChallengerID, challenge.Wager,
			models.LedgerEntryRefund, &challenge.ID, "challenge tied: stake returned"); err != nil {
			return err
		}
		if err := s.ledger.CreditTx(tx, challenge.ChallengedID, challenge.Wager,
			models.LedgerEntryRefund, &challenge.ID, "challenge tied: stake returned"); err != nil {
			return err
		}
	}

	challenge.Status = models.ChallengeStatusSettled
	challenge.WinnerID = winnerID
	challenge.RoundID = &roundID
	challenge.SettledAt = &now

	return s.incrementStats(tx, challenge)
}

// ExpirePending refunds and closes pending challenges the opponent never
// answered within maxAge. The full stake comes back: a timeout is not a
// rejection, so no cowardice tax applies. Called by the sweeper job.
func (s *ChallengeService) ExpirePending(ctx context.Context, maxAge time.Duration, limit int) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	challenges, err := s.repo.GetStalePendingChallenges(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, challenge := range challenges {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&models.Challenge{}).
				Where("id = ? AND status = ?", challenge.ID, models.ChallengeStatusPending).
				Update("status", models.ChallengeStatusExpired)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrAlreadySettled
			}
			return s.ledger.CreditTx(tx, challenge.ChallengerID, challenge.Wager,
				models.LedgerEntryRefund, &challenge.ID, "challenge expired unanswered: stake returned")
		})
		if errors.Is(err, ErrAlreadySettled) {
			continue
		}
		if err != nil {
			log.Printf("[Challenges] Error expiring challenge %s: %v", challenge.ID, err)
			continue
		}
		expired++
	}

	return expired, nil
}

func (s *ChallengeService) incrementStats(tx *gorm.DB, challenge *models.Challenge) error {
	for _, playerID := range []uint{challenge.ChallengerID, challenge.ChallengedID} {
		var wins, losses, won, lost int64
		if challenge.WinnerID != nil {
			if *challenge.WinnerID == playerID {
				wins = 1
				won = challenge.Wager
			} else {
				losses = 1
				lost = challenge.Wager
			}
		}
		if err := s.repo.IncrementWagerStatsTx(tx,
			playerID, 1, wins, losses, challenge.Wager, won, lost); err != nil {
			return err
		}
	}
	return nil
}

// GetPlayerChallenges returns challenges the player issued or received
func (s *ChallengeService) GetPlayerChallenges(
	ctx context.Context,
	playerID uint,
	limit int,
	offset int,
) ([]*models.Challenge, error) {
	return s.repo.GetPlayerChallenges(ctx, playerID, limit, offset)
}
