package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pulp-league/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newTestStandingsService(db *gorm.DB) *StandingsService {
	return NewStandingsService(repository.NewRepository(db))
}

func TestLeaderboard(t *testing.T) {
	db := setupTestDB(t)
	service := newTestStandingsService(db)
	ctx := context.Background()

	alice := createTestPlayer(t, db, "alice", 100)
	bob := createTestPlayer(t, db, "bob", 100)
	carol := createTestPlayer(t, db, "carol", 100)

	createFinalizedRound(t, db, "Round 1", []testScore{
		{playerID: alice.ID, strokes: 50, points: 10},
		{playerID: bob.ID, strokes: 52, points: 8},
		{playerID: carol.ID, strokes: 55, points: 5},
	})
	createFinalizedRound(t, db, "Round 2", []testScore{
		{playerID: alice.ID, strokes: 54, points: 5},
		{playerID: bob.ID, strokes: 51, points: 9},
	})

	rows, err := service.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	// bob 17, alice 15, carol 5
	if rows[0].PlayerID != bob.ID || !rows[0].Points.Equal(decimal.NewFromInt(17)) {
		t.Errorf("rank 1: expected bob with 17, got %s with %s", rows[0].Name, rows[0].Points)
	}
	if rows[1].PlayerID != alice.ID || rows[1].Rounds != 2 {
		t.Errorf("rank 2: expected alice over 2 rounds, got %+v", rows[1])
	}
	if rows[2].PlayerID != carol.ID {
		t.Errorf("rank 3: expected carol, got %s", rows[2].Name)
	}

	rank, err := service.SeasonRank(ctx, alice.ID)
	if err != nil {
		t.Fatalf("SeasonRank failed: %v", err)
	}
	if rank != 2 {
		t.Errorf("expected alice at rank 2, got %d", rank)
	}
}

func TestLeaderboardTieBreaksByPlayerID(t *testing.T) {
	db := setupTestDB(t)
	service := newTestStandingsService(db)
	ctx := context.Background()

	alice := createTestPlayer(t, db, "alice", 100)
	bob := createTestPlayer(t, db, "bob", 100)

	createFinalizedRound(t, db, "Round 1", []testScore{
		{playerID: bob.ID, strokes: 50, points: 10},
		{playerID: alice.ID, strokes: 50, points: 10},
	})

	rows, err := service.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if rows[0].PlayerID != alice.ID || rows[1].PlayerID != bob.ID {
		t.Errorf("expected lower player ID first on ties, got %d then %d",
			rows[0].PlayerID, rows[1].PlayerID)
	}
}

func TestLeaderboardCountsBestTenRounds(t *testing.T) {
	db := setupTestDB(t)
	service := newTestStandingsService(db)
	ctx := context.Background()

	alice := createTestPlayer(t, db, "alice", 100)

	// Twelve finalized rounds; only the best ten count
	for i := 0; i < 10; i++ {
		createFinalizedRound(t, db, fmt.Sprintf("Round %d", i+1), []testScore{
			{playerID: alice.ID, strokes: 50, points: 10},
		})
	}
	for i := 10; i < 12; i++ {
		createFinalizedRound(t, db, fmt.Sprintf("Round %d", i+1), []testScore{
			{playerID: alice.ID, strokes: 60, points: 2},
		})
	}

	rows, err := service.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if !rows[0].Points.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected 100 points from the best ten rounds, got %s", rows[0].Points)
	}
	if rows[0].Rounds != 12 {
		t.Errorf("expected 12 rounds played, got %d", rows[0].Rounds)
	}
}

func TestSeasonRankUnranked(t *testing.T) {
	db := setupTestDB(t)
	service := newTestStandingsService(db)
	ctx := context.Background()

	carol := createTestPlayer(t, db, "carol", 100)

	if _, err := service.SeasonRank(ctx, carol.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unranked player, got %v", err)
	}
}
