package repository

import (
	"context"
	"time"

	"pulp-league/internal/models"

	"github.com/google/uuid"
)

// GetOpenWindow retrieves the currently open betting window
func (r *Repository) GetOpenWindow(ctx context.Context) (*models.BettingWindow, error) {
	var window models.BettingWindow
	err := r.db.WithContext(ctx).
		Where("status = ?", models.WindowStatusOpen).
		Order("created_at DESC").
		First(&window).Error
	if err != nil {
		return nil, err
	}
	return &window, nil
}

// GetWindowByID retrieves a betting window by ID
func (r *Repository) GetWindowByID(ctx context.Context, windowID uint) (*models.BettingWindow, error) {
	var window models.BettingWindow
	err := r.db.WithContext(ctx).Where("id = ?", windowID).First(&window).Error
	if err != nil {
		return nil, err
	}
	return &window, nil
}

// HasPendingPrediction reports whether a player already holds a pending
// prediction for the given window
func (r *Repository) HasPendingPrediction(ctx context.Context, playerID, windowID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Prediction{}).
		Where("player_id = ? AND window_id = ? AND status = ?",
			playerID, windowID, models.PredictionStatusPending).
		Count(&count).Error
	return count > 0, err
}

// GetPredictionByID retrieves a prediction by ID
func (r *Repository) GetPredictionByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	var prediction models.Prediction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&prediction).Error
	if err != nil {
		return nil, err
	}
	return &prediction, nil
}

// GetPlayerPredictions retrieves all predictions placed by a player
func (r *Repository) GetPlayerPredictions(
	ctx context.Context,
	playerID uint,
	limit int,
	offset int,
) ([]*models.Prediction, error) {
	var predictions []*models.Prediction
	err := r.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("placed_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

// GetSettleablePredictions retrieves pending predictions bound to the round
// plus unbound ones, earliest placed first so "next round" wagers bind in
// placement order
func (r *Repository) GetSettleablePredictions(ctx context.Context, roundID uint) ([]*models.Prediction, error) {
	var predictions []*models.Prediction
	err := r.db.WithContext(ctx).
		Where("status = ? AND (round_id = ? OR round_id IS NULL)",
			models.PredictionStatusPending, roundID).
		Order("placed_at ASC").
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

// GetChallengeByID retrieves a challenge by ID
func (r *Repository) GetChallengeByID(ctx context.Context, id uuid.UUID) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// GetPlayerChallenges retrieves challenges the player issued or received
func (r *Repository) GetPlayerChallenges(
	ctx context.Context,
	playerID uint,
	limit int,
	offset int,
) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	err := r.db.WithContext(ctx).
		Where("challenger_id = ? OR challenged_id = ?", playerID, playerID).
		Order("issued_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&challenges).Error
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

// GetSettleableChallenges retrieves accepted challenges bound to the round
// plus unbound ones, earliest issued first
func (r *Repository) GetSettleableChallenges(ctx context.Context, roundID uint) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	err := r.db.WithContext(ctx).
		Where("status = ? AND (round_id = ? OR round_id IS NULL)",
			models.ChallengeStatusAccepted, roundID).
		Order("issued_at ASC").
		Find(&challenges).Error
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

// GetStalePendingChallenges retrieves pending challenges issued before the
// cutoff, oldest first, for the expiry sweep
func (r *Repository) GetStalePendingChallenges(ctx context.Context, cutoff time.Time, limit int) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	err := r.db.WithContext(ctx).
		Where("status = ? AND issued_at < ?", models.ChallengeStatusPending, cutoff).
		Order("issued_at ASC").
		Limit(limit).
		Find(&challenges).Error
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

// GetAdvantage retrieves a catalog advantage by key
func (r *Repository) GetAdvantage(ctx context.Context, key string) (*models.Advantage, error) {
	var advantage models.Advantage
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&advantage).Error
	if err != nil {
		return nil, err
	}
	return &advantage, nil
}

// ListAdvantages retrieves the full advantage catalog
func (r *Repository) ListAdvantages(ctx context.Context) ([]*models.Advantage, error) {
	var advantages []*models.Advantage
	err := r.db.WithContext(ctx).Order("cost_pulps ASC").Find(&advantages).Error
	if err != nil {
		return nil, err
	}
	return advantages, nil
}

// HasUnusedAdvantage reports whether a player holds an unexpired, unused
// instance of the given advantage key. Expiry is evaluated lazily here rather
// than by a cleanup job.
func (r *Repository) HasUnusedAdvantage(ctx context.Context, playerID uint, key string, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ActiveAdvantage{}).
		Where("player_id = ? AND advantage_key = ? AND used_at IS NULL AND expires_at > ?",
			playerID, key, now).
		Count(&count).Error
	return count > 0, err
}

// GetActiveAdvantages retrieves a player's unexpired, unused advantages
func (r *Repository) GetActiveAdvantages(ctx context.Context, playerID uint, now time.Time) ([]*models.ActiveAdvantage, error) {
	var advantages []*models.ActiveAdvantage
	err := r.db.WithContext(ctx).
		Where("player_id = ? AND used_at IS NULL AND expires_at > ?", playerID, now).
		Order("purchased_at ASC").
		Find(&advantages).Error
	if err != nil {
		return nil, err
	}
	return advantages, nil
}

// GetActiveAdvantageByID retrieves an owned advantage instance by ID
func (r *Repository) GetActiveAdvantageByID(ctx context.Context, id uuid.UUID) (*models.ActiveAdvantage, error) {
	var advantage models.ActiveAdvantage
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&advantage).Error
	if err != nil {
		return nil, err
	}
	return &advantage, nil
}

// GetRoundByID retrieves a round by ID
func (r *Repository) GetRoundByID(ctx context.Context, roundID uint) (*models.Round, error) {
	var round models.Round
	err := r.db.WithContext(ctx).Where("id = ?", roundID).First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// GetRoundScores retrieves all scorecard lines for a round
func (r *Repository) GetRoundScores(ctx context.Context, roundID uint) ([]*models.RoundScore, error) {
	var scores []*models.RoundScore
	err := r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Order("strokes ASC, player_id ASC").
		Find(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// GetUnsettledFinalizedRounds retrieves finalized rounds whose settlement
// pass has not completed
func (r *Repository) GetUnsettledFinalizedRounds(ctx context.Context, limit int) ([]*models.Round, error) {
	var rounds []*models.Round
	err := r.db.WithContext(ctx).
		Where("status = ? AND settled_at IS NULL", models.RoundStatusFinalized).
		Order("finalized_at ASC").
		Limit(limit).
		Find(&rounds).Error
	if err != nil {
		return nil, err
	}
	return rounds, nil
}

// GetFinalizedScores retrieves every scorecard line belonging to a finalized
// round, for standings computation
func (r *Repository) GetFinalizedScores(ctx context.Context) ([]*models.RoundScore, error) {
	var scores []*models.RoundScore
	err := r.db.WithContext(ctx).
		Joins("JOIN rounds ON rounds.id = round_scores.round_id").
		Where("rounds.status = ?", models.RoundStatusFinalized).
		Find(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}
