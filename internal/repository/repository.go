package repository

import (
	"context"

	"pulp-league/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying handle for services that compose transactions
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// CreatePlayer creates a new player
func (r *Repository) CreatePlayer(ctx context.Context, player *models.Player) error {
	return r.db.WithContext(ctx).Create(player).Error
}

// GetPlayerByID retrieves a player by ID
func (r *Repository) GetPlayerByID(ctx context.Context, playerID uint) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).Where("id = ?", playerID).First(&player).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// GetPlayerByName retrieves a player by display name
func (r *Repository) GetPlayerByName(ctx context.Context, name string) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&player).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// GetPlayersByNames retrieves all players matching the given display names
func (r *Repository) GetPlayersByNames(ctx context.Context, names []string) ([]*models.Player, error) {
	var players []*models.Player
	err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

// ListPlayers retrieves all players ordered by name
func (r *Repository) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	var players []*models.Player
	err := r.db.WithContext(ctx).Order("name ASC").Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

// GetLedgerEntries retrieves a player's ledger history, newest first
func (r *Repository) GetLedgerEntries(
	ctx context.Context,
	playerID uint,
	limit int,
	offset int,
) ([]*models.LedgerEntry, error) {
	var entries []*models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetWagerStatistics retrieves wager statistics for a player, creating an
// empty row if none exists yet
func (r *Repository) GetWagerStatistics(ctx context.Context, playerID uint) (*models.WagerStatistics, error) {
	var stats models.WagerStatistics
	err := r.db.WithContext(ctx).Where("player_id = ?", playerID).First(&stats).Error

	if err == gorm.ErrRecordNotFound {
		stats = models.WagerStatistics{
			ID:       uuid.New(),
			PlayerID: playerID,
		}

		if err := r.db.WithContext(ctx).Create(&stats).Error; err != nil {
			return nil, err
		}

		return &stats, nil
	}

	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// IncrementWagerStats updates wager statistics for a player atomically
func (r *Repository) IncrementWagerStats(
	ctx context.Context,
	playerID uint,
	wagersIncr int64,
	winsIncr int64,
	lossesIncr int64,
	wageredIncr int64,
	wonIncr int64,
	lostIncr int64,
) error {
	return r.IncrementWagerStatsTx(r.db.WithContext(ctx),
		playerID, wagersIncr, winsIncr, lossesIncr, wageredIncr, wonIncr, lostIncr)
}

// IncrementWagerStatsTx is IncrementWagerStats inside an existing transaction
func (r *Repository) IncrementWagerStatsTx(
	tx *gorm.DB,
	playerID uint,
	wagersIncr int64,
	winsIncr int64,
	lossesIncr int64,
	wageredIncr int64,
	wonIncr int64,
	lostIncr int64,
) error {
	// Prepare the upsert struct with initial values (for the INSERT case)
	initialStats := models.WagerStatistics{
		ID:           uuid.New(),
		PlayerID:     playerID,
		TotalWagers:  wagersIncr,
		Wins:         winsIncr,
		Losses:       lossesIncr,
		TotalWagered: wageredIncr,
		TotalWon:     wonIncr,
		TotalLost:    lostIncr,
	}

	if initialStats.TotalWagers > 0 {
		initialStats.WinRate = float64(initialStats.Wins) / float64(initialStats.TotalWagers) * 100
	}

	// Upsert with atomic counter updates. The qualified column names refer to
	// the OLD row values inside ON CONFLICT DO UPDATE, so the increment is
	// repeated in the derived win_rate expression.
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_wagers":  gorm.Expr("wager_statistics.total_wagers + ?", wagersIncr),
			"wins":          gorm.Expr("wager_statistics.wins + ?", winsIncr),
			"losses":        gorm.Expr("wager_statistics.losses + ?", lossesIncr),
			"total_wagered": gorm.Expr("wager_statistics.total_wagered + ?", wageredIncr),
			"total_won":     gorm.Expr("wager_statistics.total_won + ?", wonIncr),
			"total_lost":    gorm.Expr("wager_statistics.total_lost + ?", lostIncr),
			"win_rate":      gorm.Expr("CASE WHEN (wager_statistics.total_wagers + ?) > 0 THEN (CAST((wager_statistics.wins + ?) AS NUMERIC) / (wager_statistics.total_wagers + ?) * 100) ELSE 0 END", wagersIncr, winsIncr, wagersIncr),
			"updated_at":    gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&initialStats).Error
}
