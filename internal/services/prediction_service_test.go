package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"pulp-league/internal/models"
	"pulp-league/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTestPredictionService(db *gorm.DB) *PredictionService {
	repo := repository.NewRepository(db)
	return NewPredictionService(db, repo, NewLedgerService(db), 20)
}

func TestPlacePrediction(t *testing.T) {
	db := setupTestDB(t)
	service := newTestPredictionService(db)
	ctx := context.Background()

	alice := createTestPlayer(t, db, "alice", 100)
	createTestPlayer(t, db, "bob", 100)
	createTestPlayer(t, db, "carol", 100)
	createTestPlayer(t, db, "dan", 100)
	window := openTestWindow(t, db)

	prediction, err := service.Place(ctx, alice.ID, &models.PlacePredictionRequest{
		Picks: []string{"bob", "carol", "dan"},
		Wager: 20,
	})
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	if prediction.Status != models.PredictionStatusPending {
		t.Errorf("expected PENDING, got %s", prediction.Status)
	}
	if prediction.WindowID != window.ID {
		t.Errorf("expected window %d, got %d", window.ID, prediction.WindowID)
	}
	if prediction.RoundID != nil {
		t.Error("expected prediction unbound to a round at placement")
	}
	if got := playerBalance(t, db, alice.ID); got != 80 {
		t.Errorf("expected balance 80 after escrow, got %d", got)
	}

	var entry models.LedgerEntry
	if err := db.Where("player_id = ? AND type = ?", alice.ID, models.LedgerEntryEscrow).First(&entry).Error; err != nil {
		t.Fatalf("expected escrow ledger entry: %v", err)
	}
	if entry.Amount != -20 {
		t.Errorf("expected escrow amount -20, got %d", entry.Amount)
	}
}

func TestPlacePredictionValidation(t *testing.T) {
	db := setupTestDB(t)
	service := newTestPredictionService(db)
	ctx := context.Background()

	alice := createTestPlayer(t, db, "alice", 100)
	createTestPlayer(t, db, "bob", 100)
	createTestPlayer(t, db, "carol", 100)
	createTestPlayer(t, db, "dan", 100)

	validReq := &models.PlacePredictionRequest{
		Picks: []string{"bob", "carol", "dan"},
		Wager: 20,
	}

	// No open window yet
	if _, err := service.Place(ctx, alice.ID, validReq); !errors.Is(err, ErrWindowClosed) {
		t.Errorf("expected ErrWindowClosed, got %v", err)
	}

	openTestWindow(t, db)

	// Below minimum wager
	_, err := service.Place(ctx, alice.ID, &models.PlacePredictionRequest{
		Picks: []string{"bob", "carol", "dan"},
		Wager: 10,
	})
	if !errors.Is(err, ErrInvalidWager) {
		t.Errorf("expected ErrInvalidWager, got %v", err)
	}

	// Duplicate name in picks
	_, err = service.Place(ctx, alice.ID, &models.PlacePredictionRequest{
		Picks: []string{"bob", "bob", "dan"},
		Wager: 20,
	})
	if !errors.Is(err, ErrInvalidPicks) {
		t.Errorf("expected ErrInvalidPicks for duplicate pick, got %v", err)
	}

	// Unknown player in picks
	_, err = service.Place(ctx, alice.ID, &models.PlacePredictionRequest{
		Picks: []string{"bob", "carol", "nobody"},
		Wager: 20,
	})
	if !errors.Is(err, ErrInvalidPicks) {
		t.Errorf("expected ErrInvalidPicks for unknown pick, got %v", err)
	}

	// One pending prediction per window
	if _, err := service.Place(ctx, alice.ID, validReq); err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	if _, err := service.Place(ctx, alice.ID, validReq); !errors.Is(err, ErrDuplicatePrediction) {
		t.Errorf("expected ErrDuplicatePrediction, got %v", err)
	}

	// Rejections never touched the balance beyond the one escrow
	if got := playerBalance(t, db, alice.ID); got != 80 {
		t.Errorf("expected balance 80, got %d", got)
	}
}

func TestSettlePredictionOutcomes(t *testing.T) {
	db := setupTestDB(t)
	service := newTestPredictionService(db)
	ctx := context.Background()

	exact := createTestPlayer(t, db, "exact", 100)
	partial := createTestPlayer(t, db, "partial", 100)
	loser := createTestPlayer(t, db, "loser", 100)
	createTestPlayer(t, db, "bob", 100)
	createTestPlayer(t, db, "carol", 100)
	createTestPlayer(t, db, "dan", 100)
	createTestPlayer(t, db, "eve", 100)
	openTestWindow(t, db)

	place := func(playerID uint, picks []string) *models.Prediction {
		p, err := service.Place(ctx, playerID, &models.PlacePredictionRequest{Picks: picks, Wager: 20})
		if err != nil {
			t.Fatalf("Place failed for player %d: %v", playerID, err)
		}
		return p
	}

	exactPred := place(exact.ID, []string{"bob", "carol", "dan"})
	partialPred := place(partial.ID, []string{"carol", "bob", "dan"})
	loserPred := place(loser.ID, []string{"bob", "carol", "eve"})

	round := createFinalizedRound(t, db, "Round 1", nil)
	top3 := [3]string{"bob", "carol", "dan"}

	for _, p := range []*models.Prediction{exactPred, partialPred, loserPred} {
		err := db.Transaction(func(tx *gorm.DB) error {
			return service.SettleTx(tx, p, round.ID, top3)
		})
		if err != nil {
			t.Fatalf("SettleTx failed for prediction %s: %v", p.ID, err)
		}
	}

	// Exact order doubles the stake: 100 - 20 + 40
	if got := playerBalance(t, db, exact.ID); got != 120 {
		t.Errorf("exact: expected 120, got %d", got)
	}
	if exactPred.Status != models.PredictionStatusSettledWin || exactPred.Payout != 40 {
		t.Errorf("exact: unexpected status %s payout %d", exactPred.Status, exactPred.Payout)
	}

	// Right trio, wrong order returns the stake: 100 - 20 + 20
	if got := playerBalance(t, db, partial.ID); got != 100 {
		t.Errorf("partial: expected 100, got %d", got)
	}
	if partialPred.Status != models.PredictionStatusSettledPartial || partialPred.Payout != 20 {
		t.Errorf("partial: unexpected status %s payout %d", partialPred.Status, partialPred.Payout)
	}

	// Anything else forfeits the stake: 100 - 20
	if got := playerBalance(t, db, loser.ID); got != 80 {
		t.Errorf("loser: expected 80, got %d", got)
	}
	if loserPred.Status != models.PredictionStatusSettledLoss || loserPred.Payout != 0 {
		t.Errorf("loser: unexpected status %s payout %d", loserPred.Status, loserPred.Payout)
	}

	// Settlement binds the prediction to the round
	if exactPred.RoundID == nil || *exactPred.RoundID != round.ID {
		t.Error("expected prediction bound to the settling round")
	}

	// Statistics reflect the outcomes
	var stats models.WagerStatistics
	if err := db.Where("player_id = ?", exact.ID).First(&stats).Error; err != nil {
		t.Fatalf("failed to load stats: %v", err)
	}
	if stats.TotalWagers != 1 || stats.Wins != 1 || stats.TotalWon != 20 {
		t.Errorf("exact stats: wagers=%d wins=%d won=%d", stats.TotalWagers, stats.Wins, stats.TotalWon)
	}
}

func TestSettlePredictionIdempotent(t *testing.T) {
	db := setupTestDB(t)
	service := newTestPredictionService(db)
	ctx := context.Background()

	alice := createTestPlayer(t, db, "alice", 100)
	createTestPlayer(t, db, "bob", 100)
	createTestPlayer(t, db, "carol", 100)
	createTestPlayer(t, db, "dan", 100)
	openTestWindow(t, db)

	prediction, err := service.Place(ctx, alice.ID, &models.PlacePredictionRequest{
		Picks: []string{"bob", "carol", "dan"},
		Wager: 20,
	})
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	round := createFinalizedRound(t, db, "Round 1", nil)
	top3 := [3]string{"bob", "carol", "dan"}

	settle := func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			return service.SettleTx(tx, prediction, round.ID, top3)
		})
	}

	if err := settle(); err != nil {
		t.Fatalf("first settle failed: %v", err)
	}
	if got := playerBalance(t, db, alice.ID); got != 120 {
		t.Fatalf("expected 120 after win, got %d", got)
	}

	if err := settle(); !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled on replay, got %v", err)
	}
	if got := playerBalance(t, db, alice.ID); got != 120 {
		t.Errorf("replay must not change the balance: got %d", got)
	}
}

func TestSettlePredictionOverlappingPasses(t *testing.T) {
	db := setupTestDB(t)
	service := newTestPredictionService(db)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	alice := createTestPlayer(t, db, "alice", 100)
	createTestPlayer(t, db, "bob", 100)
	createTestPlayer(t, db, "carol", 100)
	createTestPlayer(t, db, "dan", 100)
	openTestWindow(t, db)

	if _, err := service.Place(ctx, alice.ID, &models.PlacePredictionRequest{
		Picks: []string{"bob", "carol", "dan"},
		Wager: 20,
	}); err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	round := createFinalizedRound(t, db, "Round 1", nil)
	top3 := [3]string{"bob", "carol", "dan"}

	// Two settlement passes load the same pending row before either settles,
	// as happens when synchronous finalization and the sweeper overlap. Both
	// copies still read PENDING; only one may pay out.
	firstPass, err := repo.GetSettleablePredictions(ctx, round.ID)
	if err != nil || len(firstPass) != 1 {
		t.Fatalf("first pass load: %v (%d predictions)", err, len(firstPass))
	}
	secondPass, err := repo.GetSettleablePredictions(ctx, round.ID)
	if err != nil || len(secondPass) != 1 {
		t.Fatalf("second pass load: %v (%d predictions)", err, len(secondPass))
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return service.SettleTx(tx, firstPass[0], round.ID, top3)
	})
	if err != nil {
		t.Fatalf("first pass settle failed: %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return service.SettleTx(tx, secondPass[0], round.ID, top3)
	})
	if !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled for the losing pass, got %v", err)
	}

	// Exactly one payout: 100 - 20 + 40
	if got := playerBalance(t, db, alice.ID); got != 120 {
		t.Errorf("expected balance 120 after a single payout, got %d", got)
	}
	var payouts int64
	db.Model(&models.LedgerEntry{}).
		Where("player_id = ? AND type = ?", alice.ID, models.LedgerEntryPayout).
		Count(&payouts)
	if payouts != 1 {
		t.Errorf("expected exactly one payout entry, got %d", payouts)
	}

	var stats models.WagerStatistics
	if err := db.Where("player_id = ?", alice.ID).First(&stats).Error; err != nil {
		t.Fatalf("failed to load stats: %v", err)
	}
	if stats.TotalWagers != 1 || stats.Wins != 1 {
		t.Errorf("expected stats counted once: wagers=%d wins=%d", stats.TotalWagers, stats.Wins)
	}
}

func TestPredictionPendingUniqueIndex(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestPlayer(t, db, "alice", 100)
	window := openTestWindow(t, db)

	mkPrediction := func(status models.PredictionStatus) *models.Prediction {
		return &models.Prediction{
			ID:         uuid.New(),
			PlayerID:   alice.ID,
			WindowID:   window.ID,
			FirstPick:  "bob",
			SecondPick: "carol",
			ThirdPick:  "dan",
			Wager:      20,
			Status:     status,
			PlacedAt:   time.Now(),
		}
	}

	if err := db.Create(mkPrediction(models.PredictionStatusPending)).Error; err != nil {
		t.Fatalf("first pending insert failed: %v", err)
	}

	// The index backstops the service-level check: a second pending row for
	// the same player and window is rejected by the database itself
	err := db.Create(mkPrediction(models.PredictionStatusPending)).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("expected ErrDuplicatedKey for second pending row, got %v", err)
	}

	// Settled rows are outside the index
	if err := db.Create(mkPrediction(models.PredictionStatusSettledLoss)).Error; err != nil {
		t.Errorf("settled row must not collide: %v", err)
	}
}
