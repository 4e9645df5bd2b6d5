package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pulp-league/internal/models"
	"pulp-league/internal/repository"

	"gorm.io/gorm"
)

// SettlementService resolves every wager referencing a finalized round:
// pending predictions (unbound ones bind earliest-placed-first), accepted
// challenges where both parties recorded scores, and advantage usage marks.
// Each entity settles in its own transaction so one failure never blocks the
// rest; the round is stamped settled only after a clean pass.
type SettlementService struct {
	db          *gorm.DB
	repo        *repository.Repository
	predictions *PredictionService
	challenges  *ChallengeService
	advantages  *AdvantageService
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	db *gorm.DB,
	repo *repository.Repository,
	predictions *PredictionService,
	challenges *ChallengeService,
	advantages *AdvantageService,
) *SettlementService {
	return &SettlementService{
		db:          db,
		repo:        repo,
		predictions: predictions,
		challenges:  challenges,
		advantages:  advantages,
	}
}

// SettlementReport summarizes one settlement pass over a round
type SettlementReport struct {
	RoundID            uint `json:"round_id"`
	PredictionsSettled int  `json:"predictions_settled"`
	ChallengesSettled  int  `json:"challenges_settled"`
	AdvantagesMarked   int  `json:"advantages_marked"`
	Failures           int  `json:"failures"`
	AlreadySettled     bool `json:"already_settled"`
}

// SettleRound runs a settlement pass for a finalized round. Replays are
// no-ops: a settled round short-circuits, and entity-level status checks
// catch anything settled by a previous partial pass.
func (s *SettlementService) SettleRound(ctx context.Context, roundID uint) (*SettlementReport, error) {
	round, err := s.repo.GetRoundByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if round.FinalizedAt == nil {
		return nil, ErrRoundNotFinalized
	}

	report := &SettlementReport{RoundID: roundID}

	if round.SettledAt != nil {
		report.AlreadySettled = true
		return report, nil
	}

	scores, err := s.repo.GetRoundScores(ctx, roundID)
	if err != nil {
		return nil, err
	}

	strokes := make(map[uint]int, len(scores))
	for _, score := range scores {
		strokes[score.PlayerID] = score.Strokes
	}

	s.settlePredictions(ctx, roundID, scores, report)
	s.settleChallenges(ctx, roundID, strokes, report)
	s.markAdvantages(ctx, scores, report)

	if report.Failures == 0 {
		now := time.Now()
		round.SettledAt = &now
		if err := s.db.WithContext(ctx).Save(round).Error; err != nil {
			return report, err
		}
		log.Printf("[Settlement] Round %d settled: %d predictions, %d challenges, %d advantages",
			roundID, report.PredictionsSettled, report.ChallengesSettled, report.AdvantagesMarked)
	} else {
		log.Printf("[Settlement] Round %d pass incomplete: %d failures, will retry",
			roundID, report.Failures)
	}

	return report, nil
}

// settlePredictions resolves pending predictions against the round's top-3.
// With fewer than three recorded scores there is no top-3, so predictions
// stay pending for a later round.
func (s *SettlementService) settlePredictions(
	ctx context.Context,
	roundID uint,
	scores []*models.RoundScore,
	report *SettlementReport,
) {
	top3, ok := s.topThree(ctx, scores)
	if !ok {
		log.Printf("[Settlement] Round %d has fewer than 3 scores, predictions stay pending", roundID)
		return
	}

	predictions, err := s.repo.GetSettleablePredictions(ctx, roundID)
	if err != nil {
		log.Printf("[Settlement] Error fetching predictions for round %d: %v", roundID, err)
		report.Failures++
		return
	}

	for _, prediction := range predictions {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.predictions.SettleTx(tx, prediction, roundID, top3)
		})
		if errors.Is(err, ErrAlreadySettled) {
			continue
		}
		if err != nil {
			log.Printf("[Settlement] Error settling prediction %s: %v", prediction.ID, err)
			report.Failures++
			continue
		}
		report.PredictionsSettled++
	}
}

// settleChallenges resolves accepted challenges. Unbound challenges only
// settle when both parties have scores in this round; otherwise they wait
// for the next shared round.
func (s *SettlementService) settleChallenges(
	ctx context.Context,
	roundID uint,
	strokes map[uint]int,
	report *SettlementReport,
) {
	challenges, err := s.repo.GetSettleableChallenges(ctx, roundID)
	if err != nil {
		log.Printf("[Settlement] Error fetching challenges for round %d: %v", roundID, err)
		report.Failures++
		return
	}

	for _, challenge := range challenges {
		_, hasChallenger := strokes[challenge.ChallengerID]
		_, hasChallenged := strokes[challenge.ChallengedID]
		if !hasChallenger || !hasChallenged {
			if challenge.RoundID == nil {
				continue // Not this round's challenge
			}
			log.Printf("[Settlement] Challenge %s bound to round %d is missing scores",
				challenge.ID, roundID)
			report.Failures++
			continue
		}

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.challenges.SettleTx(tx, challenge, roundID, strokes)
		})
		if errors.Is(err, ErrAlreadySettled) {
			continue
		}
		if err != nil {
			log.Printf("[Settlement] Error settling challenge %s: %v", challenge.ID, err)
			report.Failures++
			continue
		}
		report.ChallengesSettled++
	}
}

// markAdvantages marks advantages the scorecards reference as used
func (s *SettlementService) markAdvantages(
	ctx context.Context,
	scores []*models.RoundScore,
	report *SettlementReport,
) {
	for _, score := range scores {
		if score.AdvantageKey == nil {
			continue
		}
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.advantages.MarkUsedTx(tx, score.PlayerID, *score.AdvantageKey, time.Now())
		})
		if err != nil {
			log.Printf("[Settlement] Error marking advantage %s for player %d: %v",
				*score.AdvantageKey, score.PlayerID, err)
			report.Failures++
			continue
		}
		report.AdvantagesMarked++
	}
}

// topThree maps the three lowest stroke counts to player names. Scores arrive
// ordered by strokes then player ID, so ties already break deterministically.
func (s *SettlementService) topThree(ctx context.Context, scores []*models.RoundScore) ([3]string, bool) {
	var top3 [3]string
	if len(scores) < 3 {
		return top3, false
	}

	for i := 0; i < 3; i++ {
		player, err := s.repo.GetPlayerByID(ctx, scores[i].PlayerID)
		if err != nil {
			return top3, false
		}
		top3[i] = player.Name
	}

	return top3, true
}

// FinalizeRound marks a round's scores authoritative and runs settlement
func (s *SettlementService) FinalizeRound(ctx context.Context, roundID uint) (*SettlementReport, error) {
	round, err := s.repo.GetRoundByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if round.FinalizedAt == nil {
		now := time.Now()
		round.Status = models.RoundStatusFinalized
		round.FinalizedAt = &now
		if err := s.db.WithContext(ctx).Save(round).Error; err != nil {
			return nil, fmt.Errorf("failed to finalize round: %w", err)
		}
	}

	return s.SettleRound(ctx, roundID)
}

// SweepUnsettled retries settlement for finalized rounds whose pass never
// completed. Called by the sweeper job.
func (s *SettlementService) SweepUnsettled(ctx context.Context, limit int) {
	rounds, err := s.repo.GetUnsettledFinalizedRounds(ctx, limit)
	if err != nil {
		log.Printf("[Settlement] Error fetching unsettled rounds: %v", err)
		return
	}

	for _, round := range rounds {
		if _, err := s.SettleRound(ctx, round.ID); err != nil {
			log.Printf("[Settlement] Error sweeping round %d: %v", round.ID, err)
		}
	}
}
