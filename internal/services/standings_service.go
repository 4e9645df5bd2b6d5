package services

import (
	"context"
	"sort"

	"pulp-league/internal/repository"

	"github.com/shopspring/decimal"
)

// topRoundsCounted caps how many finalized rounds count toward a player's
// season total.
const topRoundsCounted = 10

// StandingsService computes season standings from finalized round scores:
// each player's total is the sum of their best ten round point hauls.
type StandingsService struct {
	repo *repository.Repository
}

// NewStandingsService creates a new StandingsService
func NewStandingsService(repo *repository.Repository) *StandingsService {
	return &StandingsService{repo: repo}
}

// StandingsRow is one leaderboard line
type StandingsRow struct {
	Rank     int             `json:"rank"`
	PlayerID uint            `json:"player_id"`
	Name     string          `json:"name"`
	Points   decimal.Decimal `json:"points"`
	Rounds   int             `json:"rounds"`
}

// Leaderboard returns the full season standings, best players first. Ties in
// points break by player ID so the ordering is total.
func (s *StandingsService) Leaderboard(ctx context.Context) ([]StandingsRow, error) {
	scores, err := s.repo.GetFinalizedScores(ctx)
	if err != nil {
		return nil, err
	}

	pointsByPlayer := make(map[uint][]decimal.Decimal)
	for _, score := range scores {
		pointsByPlayer[score.PlayerID] = append(pointsByPlayer[score.PlayerID], score.Points)
	}

	players, err := s.repo.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	namesByID := make(map[uint]string, len(players))
	for _, p := range players {
		namesByID[p.ID] = p.Name
	}

	rows := make([]StandingsRow, 0, len(pointsByPlayer))
	for playerID, points := range pointsByPlayer {
		sort.Slice(points, func(i, j int) bool {
			return points[i].GreaterThan(points[j])
		})

		counted := points
		if len(counted) > topRoundsCounted {
			counted = counted[:topRoundsCounted]
		}

		total := decimal.Zero
		for _, p := range counted {
			total = total.Add(p)
		}

		rows = append(rows, StandingsRow{
			PlayerID: playerID,
			Name:     namesByID[playerID],
			Points:   total,
			Rounds:   len(points),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Points.Equal(rows[j].Points) {
			return rows[i].Points.GreaterThan(rows[j].Points)
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})

	for i := range rows {
		rows[i].Rank = i + 1
	}

	return rows, nil
}

// SeasonRank returns a player's current rank (1 = best). Players with no
// finalized rounds are unranked and return ErrNotFound.
func (s *StandingsService) SeasonRank(ctx context.Context, playerID uint) (int, error) {
	rows, err := s.Leaderboard(ctx)
	if err != nil {
		return 0, err
	}

	for _, row := range rows {
		if row.PlayerID == playerID {
			return row.Rank, nil
		}
	}

	return 0, ErrNotFound
}
