package jobs

import (
	"context"
	"log"
	"time"

	"pulp-league/internal/services"
)

// SettlementSweeper retries settlement for finalized rounds whose pass never
// completed cleanly (crash mid-settlement, transient per-entity failures),
// and lapses pending challenges the opponent never answered.
type SettlementSweeper struct {
	settlementService *services.SettlementService
	challengeService  *services.ChallengeService
	interval          time.Duration
	expireAfter       time.Duration
	stopChan          chan struct{}
}

// NewSettlementSweeper creates a new settlement sweeper job
func NewSettlementSweeper(
	settlementService *services.SettlementService,
	challengeService *services.ChallengeService,
	interval time.Duration,
	expireAfter time.Duration,
) *SettlementSweeper {
	return &SettlementSweeper{
		settlementService: settlementService,
		challengeService:  challengeService,
		interval:          interval,
		expireAfter:       expireAfter,
		stopChan:          make(chan struct{}),
	}
}

// Start begins the sweep loop
func (s *SettlementSweeper) Start() {
	log.Printf("[SettlementSweeper] Starting settlement sweep job (interval: %v)", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			s.settlementService.SweepUnsettled(ctx, 50)
			if expired, err := s.challengeService.ExpirePending(ctx, s.expireAfter, 50); err != nil {
				log.Printf("[SettlementSweeper] Error expiring pending challenges: %v", err)
			} else if expired > 0 {
				log.Printf("[SettlementSweeper] Expired %d unanswered challenges", expired)
			}
			cancel()
		case <-s.stopChan:
			log.Println("[SettlementSweeper] Stopping settlement sweep job")
			return
		}
	}
}

// Stop stops the sweep loop
func (s *SettlementSweeper) Stop() {
	close(s.stopChan)
}
